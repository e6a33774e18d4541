// Package cmdutil provides shared command utilities: flag groups, config
// loading and compile option assembly.
package cmdutil

import (
	"github.com/spf13/cobra"
)

// CompileFlags holds flags common to commands that compile components
// (compile, dev).
type CompileFlags struct {
	Root               string
	AutoImportCSS      bool
	AutoResolveImports bool
	Prod               bool
}

// AddTo registers the compile flags on the given cobra command.
func (f *CompileFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Root, "root", "",
		"Base directory for components and stylesheet imports (default: from config)")
	cmd.Flags().BoolVar(&f.AutoImportCSS, "auto-import-css", false,
		"Emit import statements for generated and external stylesheets")
	cmd.Flags().BoolVar(&f.AutoResolveImports, "auto-resolve-imports", false,
		"Rewrite import paths to compiled output names")
	cmd.Flags().BoolVar(&f.Prod, "prod", false,
		"Production mode: minify stylesheets")
}

// ResolveDir returns the directory from command args, defaulting to fallback.
func ResolveDir(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	if fallback == "" {
		return "."
	}
	return fallback
}
