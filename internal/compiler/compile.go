// Package compiler turns a single-file component into an ES module and
// stylesheets. It parses the document, detects the features it uses,
// dispatches each section to a section compiler and bundles the results
// with one composed source map per output.
package compiler

import (
	"fmt"
	"strings"

	"github.com/sfckit/sfcc/internal/jsscan"
	"github.com/sfckit/sfcc/internal/output"
	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

// Result is the output of Compile. When Errors is non-empty every other
// field except ID and JS.Filename is empty.
type Result struct {
	ID          string
	JS          File
	CSS         []File
	ExternalJS  []ExternalFile
	ExternalCSS []ExternalFile
	Errors      []error
}

// OK reports whether the compile succeeded.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Compile compiles source. It never panics on bad input; failures are
// reported in Result.Errors.
func Compile(source string, opts Options) *Result {
	c := opts.Compilers.withDefaults(opts.Root)
	filename := opts.filename()

	var (
		d    *sfc.Descriptor
		errs []error
	)
	if err := guard("document", func() error {
		d, errs = c.Parser.Parse(source, filename)
		return nil
	}); err != nil {
		errs = []error{err}
	}
	if len(errs) > 0 {
		return errorResult(StableID(filename, source), DestPath(filename), parseErrors(errs))
	}

	ctx, setup := resolveContext(d, source, opts)
	output.Debug("resolved features", "file", ctx.Filename, "id", ctx.ID,
		"style", ctx.Features.HasStyle, "scoped", ctx.Features.HasScoped,
		"modules", ctx.Features.HasCSSModules, "ts", ctx.Features.HasTypedScript)

	scriptOut := resolveScript(d, ctx, c)
	templateOut := resolveTemplate(d, ctx, scriptOut.bindings, c)
	styleOut := resolveStyles(d, ctx, c)

	if scriptOut.err != nil {
		errs = append(errs, scriptOut.err)
	}
	errs = append(errs, templateOut.errs...)
	if styleOut.err != nil {
		errs = append(errs, styleOut.err)
	}
	if len(errs) > 0 {
		return errorResult(ctx.ID, ctx.DestFilename, errs)
	}

	scriptFragment := scriptOut.fragment
	if opts.AutoResolveImports {
		code, err := resolveImports(scriptFragment.Code, opts)
		if err != nil {
			return errorResult(ctx.ID, ctx.DestFilename, []error{subCompilerError("script", "resolving imports", err)})
		}
		scriptFragment.Code = code
	}

	js, err := assemble(scriptFragment, templateOut.fragment, setup, styleOut)
	if err != nil {
		return errorResult(ctx.ID, ctx.DestFilename, []error{subCompilerError("", "bundling module", err)})
	}
	output.Debug("compiled component", "file", ctx.Filename, "out", ctx.DestFilename, "css", len(styleOut.files))

	return &Result{
		ID: ctx.ID,
		JS: File{
			Filename:  ctx.DestFilename,
			Code:      js.Code,
			SourceMap: js.Map,
		},
		CSS:         styleOut.files,
		ExternalJS:  scriptOut.externalJS,
		ExternalCSS: styleOut.externalCSS,
	}
}

// assemble bundles the output module. Later fragments refer to the
// component object the script fragment defines.
func assemble(script, template sourcemap.Fragment, s setup, styles styleOutput) (sourcemap.Fragment, error) {
	statements := append(append([]string(nil), s.prelude...), styles.statements...)
	props := make([]string, 0, len(s.props))
	for _, p := range s.props {
		props = append(props, fmt.Sprintf("%s.%s = %s", componentID, p.Key, p.Value))
	}

	return sourcemap.Bundle([]sourcemap.Fragment{
		{Code: strings.Join(styles.imports, "\n")},
		script,
		template,
		{Code: strings.Join(statements, "\n")},
		{Code: strings.Join(props, "\n")},
		{Code: "export default " + componentID},
	})
}

// resolveImports rewrites import paths through the resolver and maps
// component and script paths to their output names.
func resolveImports(code string, opts Options) (string, error) {
	return jsscan.RewriteImports(code, func(path string) string {
		resolved := opts.resolve(path)
		if resolved == "" {
			return path
		}
		return DestPath(resolved)
	})
}

func parseErrors(errs []error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if _, ok := err.(*Error); ok {
			out = append(out, err)
			continue
		}
		out = append(out, &Error{Kind: ErrParse, Block: "document", Cause: err})
	}
	return out
}

func errorResult(id, dest string, errs []error) *Result {
	return &Result{
		ID:     id,
		JS:     File{Filename: dest},
		CSS:    []File{},
		Errors: errs,
	}
}
