// Package cmdtypes provides shared types for the cmd package and its
// sub-packages. It is separate from internal/cmd to avoid import cycles
// between internal/cmd and internal/cmd/config.
package cmdtypes

import (
	"github.com/sfckit/sfcc/internal/config"
	oerrors "github.com/sfckit/sfcc/internal/errors"
)

// GlobalConfig holds CLI-wide state. The root command fills the flag
// fields; sub-commands load configuration through cmdutil.LoadConfig.
type GlobalConfig struct {
	// ConfigFlag is the raw --config value.
	ConfigFlag string
	Verbose    bool
	// Loaded is set once a command has resolved its configuration.
	Loaded *config.Loaded
}

// Config returns the resolved configuration, or the defaults before
// loading.
func (g *GlobalConfig) Config() *config.Config {
	if g == nil || g.Loaded == nil {
		return config.DefaultConfig()
	}
	return g.Loaded.Config
}

// Exit codes, re-exported for command packages.
const (
	ExitSuccess      = oerrors.ExitSuccess
	ExitGeneralError = oerrors.ExitGeneralError
	ExitCompileError = oerrors.ExitCompileError
	ExitNotFound     = oerrors.ExitNotFound
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError
