package compiler

import (
	"errors"
	"io"
	"sync"

	"github.com/spf13/afero"

	"github.com/sfckit/sfcc/internal/script"
	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/style"
	"github.com/sfckit/sfcc/internal/template"
	"github.com/sfckit/sfcc/internal/transpile"
)

// DefaultFilename names components compiled without a filename.
const DefaultFilename = "anonymous.vue"

// Options controls one Compile call.
type Options struct {
	Filename string
	// Root is the base directory for stylesheet imports and packages.
	Root string
	// Resolver rewrites import paths when AutoResolveImports is set.
	Resolver func(path string) string
	// AutoImportCSS emits import statements for generated and external
	// stylesheets.
	AutoImportCSS      bool
	AutoResolveImports bool
	IsProd             bool
	// Compilers overrides section compilers; nil fields use the defaults.
	Compilers Compilers
}

func (o Options) filename() string {
	if o.Filename == "" {
		return DefaultFilename
	}
	return o.Filename
}

func (o Options) resolve(path string) string {
	if o.Resolver == nil {
		return path
	}
	return o.Resolver(path)
}

// Compilers are the collaborators a compile dispatches to.
type Compilers struct {
	Parser     sfc.Parser
	Script     sfc.ScriptCompiler
	Template   sfc.TemplateCompiler
	Style      sfc.StyleCompiler
	Transpiler sfc.Transpiler
}

// DefaultCompilers returns the built-in collaborators. Stylesheet imports
// are read from fs under root. Close releases the sass process.
func DefaultCompilers(fs afero.Fs, root string) Compilers {
	return Compilers{
		Parser:   sfc.DefaultParser,
		Script:   script.Compiler{},
		Template: template.Compiler{},
		Style: &style.Compiler{
			Sass: &style.SassPreprocessor{Fs: fs, Root: root},
			Less: &style.LessPreprocessor{Root: root},
		},
		Transpiler: transpile.TypeScript{},
	}
}

// Close closes every collaborator that holds resources.
func (c Compilers) Close() error {
	var errs []error
	closeIf := func(v any) {
		if cl, ok := v.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
	}
	closeIf(c.Parser)
	closeIf(c.Script)
	closeIf(c.Template)
	closeIf(c.Transpiler)
	closeIf(c.Style)
	if sc, ok := c.Style.(*style.Compiler); ok {
		closeIf(sc.Sass)
		closeIf(sc.Less)
	}
	return errors.Join(errs...)
}

// withDefaults fills nil fields.
func (c Compilers) withDefaults(root string) Compilers {
	if c.Parser != nil && c.Script != nil && c.Template != nil && c.Style != nil && c.Transpiler != nil {
		return c
	}
	d := sharedDefaults(root)
	if c.Parser == nil {
		c.Parser = d.Parser
	}
	if c.Script == nil {
		c.Script = d.Script
	}
	if c.Template == nil {
		c.Template = d.Template
	}
	if c.Style == nil {
		c.Style = d.Style
	}
	if c.Transpiler == nil {
		c.Transpiler = d.Transpiler
	}
	return c
}

var (
	defaultsMu sync.Mutex
	defaults   = map[string]Compilers{}
)

// sharedDefaults keeps one set of default collaborators per root so that
// repeated compiles reuse the sass process.
func sharedDefaults(root string) Compilers {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	c, ok := defaults[root]
	if !ok {
		c = DefaultCompilers(afero.NewOsFs(), root)
		defaults[root] = c
	}
	return c
}
