package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sfckit/sfcc/internal/cmdtypes"
	"github.com/sfckit/sfcc/internal/config"
	oerrors "github.com/sfckit/sfcc/internal/errors"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate the configuration file",
		Long: `Validate the sfcc configuration file against the embedded schema.

Unknown keys and out-of-range values are reported with their path.`,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVet(c, g)
		},
	}
}

func runVet(c *cobra.Command, g *cmdtypes.GlobalConfig) error {
	resolved, err := config.ResolveConfigPath(g.ConfigFlag)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	path := resolved.ConfigPath

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if !exists {
		return oerrors.NewNotFoundError("config file not found", path, "Run 'sfcc config init' to create one.")
	}

	validator, err := config.NewValidator()
	if err != nil {
		return fmt.Errorf("creating validator: %w", err)
	}

	if err := validator.ValidateFile(path); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			w := c.ErrOrStderr()
			fmt.Fprintln(w, "Error: config validation failed")
			fmt.Fprintf(w, "  File: %s\n\n", path)
			for _, e := range verrs {
				fmt.Fprintf(w, "  %s\n", e.Error())
			}
			return &oerrors.ExitError{Err: oerrors.Wrap(oerrors.ErrValidation, err.Error()), Code: oerrors.ExitCompileError, Printed: true}
		}
		return fmt.Errorf("validating config: %w", err)
	}

	fmt.Fprintf(c.OutOrStdout(), "Config file is valid: %s\n", path)
	return nil
}
