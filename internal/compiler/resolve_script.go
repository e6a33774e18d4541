package compiler

import (
	"fmt"

	"github.com/sfckit/sfcc/internal/jsscan"
	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

type scriptOutput struct {
	fragment   sourcemap.Fragment
	bindings   sfc.BindingMetadata
	externalJS []ExternalFile
	err        error
}

// resolveScript produces the fragment that defines the component object.
func resolveScript(d *sfc.Descriptor, ctx *Context, c Compilers) scriptOutput {
	if !d.HasScript() {
		return scriptOutput{fragment: sourcemap.Fragment{Code: "const " + componentID + " = {}"}}
	}

	lang := d.ScriptLang()
	if lang != "js" && lang != "ts" {
		return scriptOutput{err: newError(ErrUnsupportedLanguage, "script", "unsupported script lang: %s", lang)}
	}
	if d.ScriptSetup != nil && d.ScriptSetup.Src != "" {
		return scriptOutput{err: newError(ErrUnsupportedExternalReference, "script setup",
			"unsupported external script setup: %s", d.ScriptSetup.Src)}
	}
	if d.Script != nil && d.Script.Src != "" {
		src := d.Script.Src
		if !hasExtension(src, lang) {
			return scriptOutput{err: newError(ErrExtensionMismatch, "script",
				"the extension name doesn't match the script language %q: %s", lang, src)}
		}
		return scriptOutput{
			fragment:   sourcemap.Fragment{Code: fmt.Sprintf("import %s from %s", componentID, jsString(src))},
			externalJS: []ExternalFile{{Filename: src}},
		}
	}

	// A rejected template is reported by resolveTemplate.
	inline := c.Template
	if checkTemplate(d.Template) != nil {
		inline = nil
	}

	var out scriptOutput
	err := guard("script", func() error {
		res, err := c.Script.CompileScript(d, sfc.ScriptOptions{
			ID:         ctx.ID,
			Filename:   ctx.Filename,
			IsProd:     ctx.Options.IsProd,
			TypeScript: ctx.Features.HasTypedScript,
			Template:   inline,
			ScopeID:    scopeIDIf(ctx),
		})
		if err != nil {
			return subCompilerError("script", "compiling script", err)
		}
		out.bindings = res.Bindings

		code, m := res.Code, res.Map
		if ctx.Features.HasTypedScript {
			tr, err := c.Transpiler.Transpile(code, ctx.Filename)
			if err != nil {
				return subCompilerError("script", "transpiling script", err)
			}
			if m, err = sourcemap.Chain(m, tr.Map); err != nil {
				return subCompilerError("script", "composing script maps", err)
			}
			code = tr.Code
		}

		if code, err = jsscan.RewriteDefault(code, componentID); err != nil {
			return subCompilerError("script", "rewriting default export", err)
		}
		out.fragment = sourcemap.Fragment{Code: code, Map: m}
		return nil
	})
	if err != nil {
		return scriptOutput{err: err}
	}
	return out
}

func scopeIDIf(ctx *Context) string {
	if ctx.Features.HasScoped {
		return ctx.ScopeID()
	}
	return ""
}
