package compiler

import (
	"regexp"

	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

var renderExport = regexp.MustCompile(`(?m)^export (function|const) (render|ssrRender)\b`)

type templateOutput struct {
	fragment sourcemap.Fragment
	errs     []error
}

// checkTemplate rejects templates no compile mode accepts.
func checkTemplate(t *sfc.Block) error {
	if t == nil {
		return nil
	}
	if t.Lang != "" && t.Lang != "html" {
		return newError(ErrUnsupportedLanguage, "template", "unsupported template lang: %s", t.Lang)
	}
	if t.Src != "" {
		return newError(ErrUnsupportedExternalReference, "template", "unsupported external template: %s", t.Src)
	}
	return nil
}

// resolveTemplate compiles the template into a render function attached to
// the component object. Setup scripts embed their template, so only the
// checks run for them.
func resolveTemplate(d *sfc.Descriptor, ctx *Context, bindings sfc.BindingMetadata, c Compilers) templateOutput {
	t := d.Template
	if err := checkTemplate(t); err != nil {
		return templateOutput{errs: []error{err}}
	}
	if t == nil || d.ScriptSetup != nil {
		return templateOutput{}
	}

	var out templateOutput
	err := guard("template", func() error {
		res := c.Template.CompileTemplate(sfc.TemplateOptions{
			ID:       ctx.ScopeID(),
			Filename: ctx.Filename,
			Source:   t.Content,
			Scoped:   ctx.Features.HasScoped,
			Bindings: bindings,
			InMap:    t.Map,
			IsProd:   ctx.Options.IsProd,
		})
		if len(res.Errors) > 0 {
			out.errs = res.Errors
			return nil
		}
		code := renderExport.ReplaceAllString(res.Code, "$1 render") + "\n" + componentID + ".render = render"
		out.fragment = sourcemap.Fragment{Code: code, Map: res.Map}
		return nil
	})
	if err != nil {
		return templateOutput{errs: []error{err}}
	}
	return out
}
