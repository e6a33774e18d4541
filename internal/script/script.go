// Package script normalizes a component's script sections into a module
// whose default export is the component options object.
package script

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sfckit/sfcc/internal/jsscan"
	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

// Compiler is the default sfc.ScriptCompiler.
//
// A plain <script> passes through unchanged with the bindings its options
// object exposes. A <script setup> is rewritten into an options object whose
// setup function runs the script body and returns its top-level bindings;
// its template, when present, is compiled into the same module as the
// render option.
type Compiler struct{}

var _ sfc.ScriptCompiler = Compiler{}

// CompileScript compiles the script sections of d.
func (c Compiler) CompileScript(d *sfc.Descriptor, opts sfc.ScriptOptions) (*sfc.ScriptResult, error) {
	if d.ScriptSetup != nil {
		return c.compileSetup(d, opts)
	}
	if d.Script == nil {
		return nil, errors.New("component has no script")
	}
	bindings, err := jsscan.AnalyzeOptions(d.Script.Content)
	if err != nil {
		return nil, fmt.Errorf("analyzing script: %w", err)
	}
	return &sfc.ScriptResult{Code: d.Script.Content, Map: d.Script.Map, Bindings: bindings}, nil
}

func (c Compiler) compileSetup(d *sfc.Descriptor, opts sfc.ScriptOptions) (*sfc.ScriptResult, error) {
	ss := d.ScriptSetup
	content := ss.Content
	setup, err := jsscan.AnalyzeSetup(content)
	if err != nil {
		return nil, fmt.Errorf("analyzing script setup: %w", err)
	}

	bindings := sfc.BindingMetadata{}
	propsOption, err := propsDeclaration(setup, opts.TypeScript, bindings)
	if err != nil {
		return nil, err
	}
	var returned []string
	for _, imp := range setup.Imports {
		for _, n := range imp.Names {
			bindings[n] = sfc.BindingSetupMaybeRef
			returned = append(returned, n)
		}
	}
	for _, b := range setup.Bindings {
		bindings[b.Name] = b.Type
		returned = append(returned, b.Name)
	}

	var fragments []sourcemap.Fragment

	if len(setup.Imports) > 0 {
		f, err := hoistImports(content, setup.Imports, d.Filename, ss.Map)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}

	companion := ""
	if d.Script != nil {
		code, err := jsscan.RewriteDefault(d.Script.Content, "__default__")
		if err != nil {
			return nil, fmt.Errorf("rewriting script default export: %w", err)
		}
		fragments = append(fragments, sourcemap.Fragment{Code: code, Map: d.Script.Map})
		companion = "__default__"
	}

	hasRender := false
	if d.Template != nil && d.Template.Src == "" && opts.Template != nil {
		res := opts.Template.CompileTemplate(sfc.TemplateOptions{
			ID:       opts.ScopeID,
			Filename: d.Filename,
			Source:   d.Template.Content,
			Scoped:   opts.ScopeID != "",
			Bindings: bindings,
			InMap:    d.Template.Map,
			IsProd:   opts.IsProd,
		})
		if len(res.Errors) > 0 {
			return nil, fmt.Errorf("compiling template: %w", errors.Join(res.Errors...))
		}
		code := strings.Replace(res.Code, "export function render(", "function render(", 1)
		fragments = append(fragments, sourcemap.Fragment{Code: code, Map: res.Map})
		hasRender = true
	}

	var head strings.Builder
	if companion != "" {
		head.WriteString("export default /*#__PURE__*/Object.assign(" + companion + ", {\n")
	} else {
		head.WriteString("export default {\n")
	}
	if propsOption != "" {
		head.WriteString("  props: " + propsOption + ",\n")
	}
	if setup.Emits != nil && setup.Emits.Args != "" {
		head.WriteString("  emits: " + setup.Emits.Args + ",\n")
	}
	head.WriteString("  setup(__props, { expose: __expose, emit: __emit }) {\n    __expose();")
	fragments = append(fragments, sourcemap.Fragment{Code: head.String()})

	fragments = append(fragments, sourcemap.Fragment{Code: setupBody(content, setup), Map: ss.Map})

	var tail strings.Builder
	tail.WriteString("    return { " + strings.Join(dedupe(returned), ", ") + " }\n  },")
	if hasRender {
		tail.WriteString("\n  render,")
	}
	tail.WriteString("\n}")
	if companion != "" {
		tail.WriteString(")")
	}
	fragments = append(fragments, sourcemap.Fragment{Code: tail.String()})

	out, err := sourcemap.Bundle(fragments)
	if err != nil {
		return nil, err
	}
	return &sfc.ScriptResult{Code: out.Code, Map: out.Map, Bindings: bindings}, nil
}

// propsDeclaration returns the runtime props option declared by defineProps
// and records the declared props in bindings.
func propsDeclaration(setup *jsscan.Setup, typescript bool, bindings sfc.BindingMetadata) (string, error) {
	call := setup.Props
	if call == nil {
		return "", nil
	}
	switch {
	case call.Args != "" && len(call.TypeKeys) > 0:
		return "", errors.New("defineProps() cannot accept both type and non-type arguments")
	case len(call.TypeKeys) > 0 && !typescript:
		return "", errors.New("defineProps() type arguments require lang=\"ts\"")
	case len(call.TypeKeys) > 0:
		fields := make([]string, len(call.TypeKeys))
		for i, k := range call.TypeKeys {
			bindings[k] = sfc.BindingProps
			fields[i] = k + ": null"
		}
		return "{ " + strings.Join(fields, ", ") + " }", nil
	case call.Args != "":
		keys, err := jsscan.DeclaredKeys(call.Args)
		if err != nil {
			return "", fmt.Errorf("reading defineProps() argument: %w", err)
		}
		for _, k := range keys {
			bindings[k] = sfc.BindingProps
		}
		return call.Args, nil
	}
	return "", nil
}

// setupBody blanks hoisted imports and replaces compiler macros, keeping every
// line of content in place.
func setupBody(content string, setup *jsscan.Setup) string {
	type span struct {
		start, end int
		text       string
	}
	var spans []span
	for _, imp := range setup.Imports {
		spans = append(spans, span{imp.Start, imp.End, ""})
	}
	if setup.Props != nil {
		spans = append(spans, span{setup.Props.Start, setup.Props.End, "__props"})
	}
	if setup.Emits != nil {
		spans = append(spans, span{setup.Emits.Start, setup.Emits.End, "__emit"})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var sb strings.Builder
	pos := 0
	for _, s := range spans {
		sb.WriteString(content[pos:s.start])
		sb.WriteString(padLines(s.text, content[s.start:s.end]))
		pos = s.end
	}
	sb.WriteString(content[pos:])
	return sb.String()
}

// padLines returns text followed by the line breaks of replaced.
func padLines(text, replaced string) string {
	return text + strings.Repeat("\n", strings.Count(replaced, "\n"))
}

// hoistImports collects import statements into their own fragment. Each
// statement keeps a line mapping to where it was written.
func hoistImports(content string, imports []jsscan.Import, filename string, blockMap *sourcemap.SourceMap) (sourcemap.Fragment, error) {
	g := sourcemap.NewGenerator("")
	g.AddSource(filename)

	var lines []string
	for _, imp := range imports {
		stmt := content[imp.Start:imp.End]
		origLine := 1 + strings.Count(content[:imp.Start], "\n")
		origCol := imp.Start - (strings.LastIndexByte(content[:imp.Start], '\n') + 1)
		for k, l := range strings.Split(stmt, "\n") {
			pos := sourcemap.Position{Line: origLine + k}
			if k == 0 {
				pos.Column = origCol
			}
			g.AddMapping(sourcemap.Mapping{
				Generated: sourcemap.Position{Line: len(lines) + 1},
				Original:  pos,
				Source:    filename,
			})
			lines = append(lines, l)
		}
	}

	m, err := sourcemap.Chain(blockMap, g.Map())
	if err != nil {
		return sourcemap.Fragment{}, err
	}
	return sourcemap.Fragment{Code: strings.Join(lines, "\n"), Map: m}, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
