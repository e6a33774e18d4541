package sfc

import "github.com/sfckit/sfcc/internal/sourcemap"

// Parser turns document text into a Descriptor.
type Parser interface {
	Parse(source, filename string) (*Descriptor, []error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(source, filename string) (*Descriptor, []error)

// Parse calls f.
func (f ParserFunc) Parse(source, filename string) (*Descriptor, []error) {
	return f(source, filename)
}

// ScriptOptions configures a script compile.
type ScriptOptions struct {
	ID       string
	Filename string
	IsProd   bool
	// TypeScript enables typed syntax in script and template expressions.
	TypeScript bool
	// Template compiles the template into the script for setup scripts.
	Template TemplateCompiler
	// ScopeID is the template scoping attribute when a scoped style exists.
	ScopeID string
}

// ScriptResult is the output of a script compile. Map relates Code to the
// original document.
type ScriptResult struct {
	Code     string
	Map      *sourcemap.SourceMap
	Bindings BindingMetadata
}

// ScriptCompiler normalizes a document's script sections into a module whose
// default export is the component options object.
type ScriptCompiler interface {
	CompileScript(d *Descriptor, opts ScriptOptions) (*ScriptResult, error)
}

// TemplateOptions configures a template compile.
type TemplateOptions struct {
	// ID is the scoping attribute, e.g. "data-v-1a2b3c4d".
	ID       string
	Filename string
	Source   string
	Scoped   bool
	Bindings BindingMetadata
	// InMap maps Source to the original document.
	InMap  *sourcemap.SourceMap
	IsProd bool
}

// TemplateResult is the output of a template compile. Code exports a
// function named render. Errors are compiler diagnostics.
type TemplateResult struct {
	Code   string
	Map    *sourcemap.SourceMap
	Errors []error
}

// TemplateCompiler turns markup into a render function module.
type TemplateCompiler interface {
	CompileTemplate(opts TemplateOptions) *TemplateResult
}

// StyleOptions configures a style compile.
type StyleOptions struct {
	ID       string
	Filename string
	Source   string
	Scoped   bool
	// PreprocessLang is "scss", "sass", "less" or empty for plain CSS.
	PreprocessLang string
	InMap          *sourcemap.SourceMap
	IsProd         bool
}

// StyleResult is the output of a style compile.
type StyleResult struct {
	Code   string
	Map    *sourcemap.SourceMap
	Errors []error
}

// StyleCompiler preprocesses, scopes and normalizes a stylesheet.
type StyleCompiler interface {
	CompileStyle(opts StyleOptions) *StyleResult
}

// TranspileResult is the output of a type-stripping pass. Map relates Code
// to the input code and may be nil.
type TranspileResult struct {
	Code string
	Map  *sourcemap.SourceMap
}

// Transpiler strips type syntax from script code.
type Transpiler interface {
	Transpile(code, filename string) (*TranspileResult, error)
}
