// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	configcmd "github.com/sfckit/sfcc/internal/cmd/config"
	"github.com/sfckit/sfcc/internal/cmdtypes"
	"github.com/sfckit/sfcc/internal/config"
	"github.com/sfckit/sfcc/internal/output"
)

// dotEnvFile is loaded from the working directory before any command runs.
const dotEnvFile = ".env"

// NewRootCmd creates the root command for the sfcc CLI.
func NewRootCmd() *cobra.Command {
	g := &cmdtypes.GlobalConfig{}
	var timestamps bool

	rootCmd := &cobra.Command{
		Use:   "sfcc",
		Short: "Single-file component compiler",
		Long: `sfcc compiles single-file components into ES modules and stylesheets,
with one composed source map per output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(dotEnvFile); err != nil {
				return err
			}
			logCfg := output.LogConfig{Verbose: g.Verbose}
			if cmd.Flags().Changed("timestamps") {
				logCfg.Timestamps = output.BoolPtr(timestamps)
			}
			output.SetupLogging(logCfg)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.ConfigFlag, "config", "", "Path to config file (env: SFCC_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestamps, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(
		NewCompileCmd(g),
		NewDevCmd(g),
		NewTraceCmd(g),
		configcmd.NewConfigCmd(g),
		NewVersionCmd(g),
	)

	return rootCmd
}
