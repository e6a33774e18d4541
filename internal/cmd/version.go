package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sfckit/sfcc/internal/cmdtypes"
	"github.com/sfckit/sfcc/internal/cmdutil"
	"github.com/sfckit/sfcc/internal/output"
	"github.com/sfckit/sfcc/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show sfcc version information.

Displays:
  - sfcc version, commit and build date
  - embedded esbuild and CUE SDK versions
  - the sass and lessc binaries that preprocess styles`,
		RunE: func(c *cobra.Command, _ []string) error {
			if _, err := cmdutil.LoadConfig(c, g); err != nil {
				output.Debug("using default config", "error", err)
			}
			cfg := g.Config()

			w := c.OutOrStdout()
			fmt.Fprintln(w, version.Get().String())
			fmt.Fprintln(w, "Preprocessors:")
			fmt.Fprintln(w, version.DetectSass(cfg.Sass.Binary).String())
			fmt.Fprintln(w, version.DetectLess(cfg.Less.Binary).String())
			return nil
		},
	}
}
