package compiler

import (
	"errors"
	"fmt"
	"path"

	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

// File is a generated output file.
type File struct {
	Filename  string
	Code      string
	SourceMap *sourcemap.SourceMap
	// Module and Scoped tag stylesheets; Scoped is set when any of the
	// sections a stylesheet was built from is scoped.
	Module   bool
	Scoped   bool
	Sections []Section
}

// Section describes a style section a stylesheet was built from.
type Section struct {
	Index  int
	Lang   string
	Scoped bool
	Module string
}

type styleOutput struct {
	imports     []string
	files       []File
	externalCSS []ExternalFile
	statements  []string
	err         error
}

var styleExtensions = map[string][]string{
	"":     {"css"},
	"css":  {"css"},
	"scss": {"scss", "sass"},
	"sass": {"scss", "sass"},
	"less": {"less"},
}

// resolveStyles compiles style sections in order. Inline sections without
// module join the main stylesheet; module sections get their own file and a
// binding in cssModules; external sections are reported for the caller.
// The first error stops the stage.
func resolveStyles(d *sfc.Descriptor, ctx *Context, c Compilers) styleOutput {
	var (
		out  styleOutput
		main []sourcemap.Fragment
		file = File{Filename: CSSPath(ctx.Filename)}
	)
	for i, s := range d.Styles {
		block := fmt.Sprintf("style[%d]", i)

		exts, ok := styleExtensions[s.Lang]
		if !ok {
			return styleOutput{err: newError(ErrUnsupportedStyleLang, block, "unsupported style lang: %s", s.Lang)}
		}
		if s.Src != "" {
			if !hasExtension(s.Src, exts...) {
				return styleOutput{err: newError(ErrExtensionMismatch, block,
					"the extension name doesn't match the style language %q: %s", langOrCSS(s.Lang), s.Src)}
			}
			if s.Scoped && s.Module != "" {
				return styleOutput{err: newError(ErrConflictingStyleFlags, block,
					"scoped CSS cannot be used with CSS modules: %s", s.Src)}
			}
			q := Query{Module: s.Module != ""}
			if s.Scoped {
				q = Query{Scoped: true, ID: ctx.ID}
			}
			out.externalCSS = append(out.externalCSS, ExternalFile{Filename: s.Src, Query: q})
		}

		var compiled *sfc.StyleResult
		if s.Src == "" {
			var err error
			if compiled, err = compileStyle(s, block, ctx, c); err != nil {
				return styleOutput{err: err}
			}
		}
		section := Section{Index: i, Lang: langOrCSS(s.Lang), Scoped: s.Scoped, Module: s.Module}

		switch {
		case s.Module != "":
			binding := fmt.Sprintf("style%d", i)
			from := "./" + path.Base(ModuleCSSPath(ctx.Filename, i))
			if s.Src != "" {
				from = ExternalFile{Filename: s.Src, Query: Query{Module: true}}.Path()
			}
			if ctx.Options.AutoImportCSS {
				out.imports = append(out.imports, cssImport(from, binding))
			} else {
				out.statements = append(out.statements,
					fmt.Sprintf("const %s = new Proxy({}, { get: (_, key) => key })", binding))
			}
			out.statements = append(out.statements, fmt.Sprintf("cssModules[%s] = %s", jsString(s.Module), binding))
			if compiled != nil {
				out.files = append(out.files, File{
					Filename:  ModuleCSSPath(ctx.Filename, i),
					Code:      compiled.Code,
					SourceMap: compiled.Map,
					Module:    true,
					Scoped:    s.Scoped,
					Sections:  []Section{section},
				})
			}
		case s.Src != "":
			if ctx.Options.AutoImportCSS {
				out.imports = append(out.imports, cssImport(out.externalCSS[len(out.externalCSS)-1].Path(), ""))
			}
		default:
			main = append(main, sourcemap.Fragment{Code: compiled.Code, Map: compiled.Map})
			file.Scoped = file.Scoped || s.Scoped
			file.Sections = append(file.Sections, section)
		}
	}

	if len(main) > 0 {
		bundled, err := sourcemap.Bundle(main)
		if err != nil {
			return styleOutput{err: subCompilerError("style", "bundling stylesheets", err)}
		}
		file.Code, file.SourceMap = bundled.Code, bundled.Map
		out.files = append([]File{file}, out.files...)
		if ctx.Options.AutoImportCSS {
			out.imports = append([]string{cssImport("./"+path.Base(file.Filename), "")}, out.imports...)
		}
	}
	return out
}

func compileStyle(s *sfc.StyleBlock, block string, ctx *Context, c Compilers) (*sfc.StyleResult, error) {
	lang := s.Lang
	if lang == "css" {
		lang = ""
	}
	var res *sfc.StyleResult
	err := guard(block, func() error {
		res = c.Style.CompileStyle(sfc.StyleOptions{
			ID:             ctx.ScopeID(),
			Filename:       ctx.Filename,
			Source:         s.Content,
			Scoped:         s.Scoped,
			PreprocessLang: lang,
			InMap:          s.Map,
			IsProd:         ctx.Options.IsProd,
		})
		if len(res.Errors) > 0 {
			return subCompilerError(block, "compiling style", errors.Join(res.Errors...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func langOrCSS(lang string) string {
	if lang == "" {
		return "css"
	}
	return lang
}
