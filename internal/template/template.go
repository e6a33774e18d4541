// Package template compiles component markup into a render function module
// built on the runtime's h() helper.
package template

import (
	"strings"

	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

// Compiler is the default sfc.TemplateCompiler.
//
// The generated module imports its helpers from "vue" and exports
//
//	function render(_ctx, _cache, $props, $setup, $data, $options)
//
// Identifiers resolve through the binding metadata: setup bindings through
// $setup, props through $props, data through $data, computed and methods
// through $options, anything else through _ctx. Each element and text node
// starts a new generated line mapped to its position in the markup.
type Compiler struct{}

var _ sfc.TemplateCompiler = Compiler{}

// CompileTemplate compiles opts.Source.
func (Compiler) CompileTemplate(opts sfc.TemplateOptions) *sfc.TemplateResult {
	p := &parser{src: opts.Source}
	roots := p.parse()

	g := newGenerator(opts, p)
	g.write("  return ")
	items := g.items(roots)
	switch len(items) {
	case 0:
		g.write("null")
	case 1:
		g.item(items[0], 1)
	default:
		g.write("[")
		for i, it := range items {
			if i > 0 {
				g.write(",")
			}
			g.newline(2)
			g.item(it, 2)
		}
		g.newline(1)
		g.write("]")
	}
	g.write("\n}")

	if len(p.errs) > 0 {
		anchorErrors(p.errs, opts.InMap)
		return &sfc.TemplateResult{Errors: p.errs}
	}

	header := g.header()
	code := strings.Join(header, "\n") + "\n" + g.body.String()
	m := g.sourceMap(len(header))
	if opts.InMap != nil {
		chained, err := sourcemap.Chain(opts.InMap, m)
		if err != nil {
			return &sfc.TemplateResult{Errors: []error{err}}
		}
		m = chained
	}
	return &sfc.TemplateResult{Code: code, Map: m}
}

// anchorErrors moves diagnostic positions from the template source to the
// document inMap points into.
func anchorErrors(errs []error, inMap *sourcemap.SourceMap) {
	if inMap == nil {
		return
	}
	c, err := sourcemap.NewConsumer(inMap)
	if err != nil {
		return
	}
	for _, err := range errs {
		e, ok := err.(*Error)
		if !ok {
			continue
		}
		m, ok := c.OriginalPositionFor(sourcemap.Position{Line: e.Line, Column: e.Column})
		if !ok {
			continue
		}
		e.Line = m.Original.Line
		e.Column = m.Original.Column + e.Column - m.Generated.Column
	}
}
