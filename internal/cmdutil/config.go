package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/sfckit/sfcc/internal/cmdtypes"
	"github.com/sfckit/sfcc/internal/config"
	oerrors "github.com/sfckit/sfcc/internal/errors"
	"github.com/sfckit/sfcc/internal/output"
)

// ChangedFlags maps config keys to the values of flags the user set on
// cmd. Flags a command does not define are skipped.
func ChangedFlags(cmd *cobra.Command) map[string]string {
	flags := make(map[string]string)
	for _, s := range config.Settings {
		if s.Flag == "" {
			continue
		}
		f := cmd.Flags().Lookup(s.Flag)
		if f == nil || !cmd.Flags().Changed(s.Flag) {
			continue
		}
		flags[s.Key] = f.Value.String()
	}
	return flags
}

// LoadConfig resolves configuration for cmd, validates it and applies
// the logging settings. The result is stored on g.
func LoadConfig(cmd *cobra.Command, g *cmdtypes.GlobalConfig) (*config.Config, error) {
	loaded, err := config.NewLoader().Load(config.LoadOptions{
		ConfigFile: g.ConfigFlag,
		Flags:      ChangedFlags(cmd),
	})
	if err != nil {
		return nil, &oerrors.ExitError{Err: err, Code: oerrors.ExitGeneralError}
	}

	output.SetupLogging(output.LogConfig{
		Verbose:    g.Verbose,
		Timestamps: loaded.Config.Log.Timestamps,
	})
	output.Debug("config file", "path", loaded.Path, "source", loaded.PathSource, "found", loaded.FileFound)
	config.LogResolvedValues(loaded.Values)

	validator, err := config.NewValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(loaded.Config); err != nil {
		return nil, oerrors.NewValidationError(err.Error(), loaded.Path, "",
			"Fix the value in the config file, environment or flag it came from.")
	}

	g.Loaded = loaded
	return loaded.Config, nil
}
