package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sfckit/sfcc/internal/cmdtypes"
	"github.com/sfckit/sfcc/internal/config"
	oerrors "github.com/sfckit/sfcc/internal/errors"
)

const configHeader = "# sfcc configuration\n# Keys may be overridden by SFCC_* environment variables and flags.\n\n"

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Create a new configuration file",
		Long: `Create a new sfcc configuration file with default values.

The configuration file is created at ~/.sfcc/config.yaml by default.
Use --config or SFCC_CONFIG to choose a different location.`,
		RunE: func(c *cobra.Command, _ []string) error {
			return runInit(c, g, force)
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config file")

	return c
}

func runInit(c *cobra.Command, g *cmdtypes.GlobalConfig, force bool) error {
	resolved, err := config.ResolveConfigPath(g.ConfigFlag)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	path := resolved.ConfigPath

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if exists && !force {
		return &oerrors.ExitError{
			Err:  fmt.Errorf("config file already exists at %s (use --force to overwrite)", path),
			Code: oerrors.ExitGeneralError,
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append([]byte(configHeader), data...)

	// The file may hold object-store credentials.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintf(c.OutOrStdout(), "Config file created: %s\n", path)
	return nil
}
