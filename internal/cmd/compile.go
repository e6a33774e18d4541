package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sfckit/sfcc/internal/cmdtypes"
	"github.com/sfckit/sfcc/internal/cmdutil"
	oerrors "github.com/sfckit/sfcc/internal/errors"
	"github.com/sfckit/sfcc/internal/output"
	"github.com/sfckit/sfcc/internal/pipeline"
	"github.com/sfckit/sfcc/internal/sink"
)

type compileFlags struct {
	cmdutil.CompileFlags
	outDir  string
	report  string
	publish bool
	jobs    int
}

// NewCompileCmd creates the compile command.
func NewCompileCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var f compileFlags

	c := &cobra.Command{
		Use:   "compile [files...]",
		Short: "Compile components",
		Long: `Compile single-file components into ES modules and stylesheets.

Without arguments every .vue file below the root is compiled. Each
component produces <file>.js plus, when it has styles, <file>.css and one
<file>.<n>.module.css per CSS-module section. Every output with a source
map gets a sibling .map file.

Examples:
  # Compile everything below ./src into ./dist
  sfcc compile --root src --out-dir dist

  # Compile two components and print a JSON report
  sfcc compile src/App.vue src/Nav.vue --report json

  # Upload outputs to the configured bucket
  sfcc compile --prod --publish`,
		RunE: func(c *cobra.Command, args []string) error {
			return runCompile(c, args, g, &f)
		},
	}

	f.AddTo(c)
	c.Flags().StringVarP(&f.outDir, "out-dir", "o", "", "Output directory (default: from config)")
	c.Flags().StringVar(&f.report, "report", "text", "Report format: "+strings.Join(output.ValidReportFormats(), ", "))
	c.Flags().BoolVar(&f.publish, "publish", false, "Upload outputs to the configured S3 bucket instead of --out-dir")
	c.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "Concurrent compiles (default: number of CPUs)")

	return c
}

func runCompile(c *cobra.Command, args []string, g *cmdtypes.GlobalConfig, f *compileFlags) error {
	format := output.ParseReportFormat(f.report)
	if !format.IsValid() {
		return &oerrors.ExitError{
			Err:  fmt.Errorf("invalid --report %q (valid: %s)", f.report, strings.Join(output.ValidReportFormats(), ", ")),
			Code: oerrors.ExitGeneralError,
		}
	}

	cfg, err := cmdutil.LoadConfig(c, g)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	files, err := componentFiles(fs, cfg.Root, args)
	if err != nil {
		return err
	}

	opts, compilers := cmdutil.CompilerOptions(fs, cfg)
	defer compilers.Close()

	var out sink.Sink = &sink.FS{Fs: fs, Dir: cfg.OutDir}
	if f.publish {
		s3, err := sink.NewS3(cmdutil.S3Config(cfg))
		if err != nil {
			return oerrors.NewValidationError(err.Error(), g.Loaded.Path, "publish",
				"Set publish.endpoint, publish.bucket and credentials in config or SFCC_PUBLISH_* variables.")
		}
		out = s3
	}

	var report *pipeline.Report
	title := fmt.Sprintf("Compiling %d components", len(files))
	err = output.RunWithSpinner(c.Context(), title, func(ctx context.Context) error {
		var runErr error
		report, runErr = pipeline.Run(ctx, files, pipeline.Options{
			Fs:      fs,
			Root:    cfg.Root,
			Jobs:    f.jobs,
			Compile: opts,
			Sink:    out,
		})
		return runErr
	})
	if err != nil {
		return err
	}

	if err := output.WriteReport(c.OutOrStdout(), format, cmdutil.BuildReport(report)); err != nil {
		return err
	}

	if failed := report.Failed(); len(failed) > 0 {
		return &oerrors.ExitError{
			Err:     oerrors.Wrap(oerrors.ErrCompile, fmt.Sprintf("%d of %d components failed", len(failed), len(files))),
			Code:    oerrors.ExitCompileError,
			Printed: true,
		}
	}
	return nil
}

// componentFiles returns the components to compile as paths relative to
// root. Explicit arguments must exist and lie below root.
func componentFiles(fs afero.Fs, root string, args []string) ([]string, error) {
	if len(args) == 0 {
		files, err := pipeline.Discover(fs, root)
		if err != nil {
			return nil, oerrors.NewNotFoundError(err.Error(), root, "Check --root or the root config key.")
		}
		if len(files) == 0 {
			return nil, oerrors.NewNotFoundError("no components found", root, "")
		}
		return files, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(args))
	for _, arg := range args {
		ok, err := afero.Exists(fs, arg)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, oerrors.NewNotFoundError("component not found", arg, "")
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(absRoot, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, &oerrors.ExitError{
				Err:  fmt.Errorf("%s is outside the root %s", arg, root),
				Code: oerrors.ExitGeneralError,
			}
		}
		files = append(files, filepath.ToSlash(rel))
	}
	return files, nil
}
