// Package style is the default stylesheet compiler: preprocessing,
// lowering with esbuild and selector scoping.
package style

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
	"github.com/sfckit/sfcc/internal/transpile"
)

// Preprocessor turns a preprocessor language into CSS. The returned map,
// when present, relates the CSS to src and names filename as its source.
type Preprocessor interface {
	Preprocess(lang, src, filename string) (code string, m *sourcemap.SourceMap, err error)
}

// Compiler implements sfc.StyleCompiler.
type Compiler struct {
	// Sass handles scss and sass. Less handles less. A nil preprocessor
	// makes its languages fail.
	Sass Preprocessor
	Less Preprocessor
	// Engines are the lowering targets; empty keeps modern syntax.
	Engines []api.Engine
}

var _ sfc.StyleCompiler = (*Compiler)(nil)

// CompileStyle preprocesses, lowers and optionally scopes one stylesheet.
func (c *Compiler) CompileStyle(opts sfc.StyleOptions) *sfc.StyleResult {
	code, m, mapped, err := c.preprocess(opts)
	if err != nil {
		return &sfc.StyleResult{Errors: []error{err}}
	}

	res := api.Transform(code, api.TransformOptions{
		Loader:           api.LoaderCSS,
		Sourcefile:       opts.Filename,
		Sourcemap:        api.SourceMapExternal,
		SourcesContent:   api.SourcesContentExclude,
		MinifyWhitespace: opts.IsProd,
		Engines:          c.Engines,
		LogLevel:         api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return &sfc.StyleResult{Errors: []error{transpile.MessagesError(res.Errors)}}
	}
	lowered, err := sourcemap.Parse(res.Map)
	if err != nil {
		return &sfc.StyleResult{Errors: []error{fmt.Errorf("reading css map: %w", err)}}
	}
	switch {
	case !mapped:
		m = nil
	case m == nil:
		m = lowered
	default:
		if m, err = chain(m, lowered); err != nil {
			return &sfc.StyleResult{Errors: []error{err}}
		}
	}

	out := string(res.Code)
	if opts.Scoped {
		if out, err = Scope(out, opts.ID); err != nil {
			return &sfc.StyleResult{Errors: []error{fmt.Errorf("scoping: %w", err)}}
		}
	}
	return &sfc.StyleResult{Code: out, Map: m}
}

// preprocess returns CSS for the block content and a map from that CSS to
// the original document. mapped is false when positions were lost.
func (c *Compiler) preprocess(opts sfc.StyleOptions) (code string, m *sourcemap.SourceMap, mapped bool, err error) {
	var p Preprocessor
	switch opts.PreprocessLang {
	case "":
		return opts.Source, opts.InMap, true, nil
	case "scss", "sass":
		p = c.Sass
	case "less":
		p = c.Less
	default:
		return "", nil, false, fmt.Errorf("unsupported preprocessor %q", opts.PreprocessLang)
	}
	if p == nil {
		return "", nil, false, fmt.Errorf("no %s preprocessor configured", opts.PreprocessLang)
	}
	code, m, err = p.Preprocess(opts.PreprocessLang, opts.Source, opts.Filename)
	switch {
	case err != nil:
		return "", nil, false, err
	case m == nil:
		return code, nil, false, nil
	case opts.InMap == nil:
		return code, m, true, nil
	}
	m, err = chain(opts.InMap, m)
	return code, m, err == nil, err
}

func chain(prev, next *sourcemap.SourceMap) (*sourcemap.SourceMap, error) {
	m, err := sourcemap.Chain(prev, next)
	if err != nil {
		return nil, fmt.Errorf("composing style maps: %w", err)
	}
	return m, nil
}
