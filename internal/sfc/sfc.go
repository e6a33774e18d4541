// Package sfc holds the single-file-component document model, the contracts
// of the section compilers the compiler pipeline dispatches to, and the
// default document parser.
package sfc

import "github.com/sfckit/sfcc/internal/sourcemap"

// Location identifies where a block's content sits in the document.
type Location struct {
	// Start and End are byte offsets of the content (End exclusive).
	Start int
	End   int
	// Line is the 1-based line of the first content byte.
	Line int
}

// Block is one top-level section of a document.
type Block struct {
	Type    string
	Content string
	Attrs   map[string]string
	Lang    string
	Src     string
	Loc     Location
	// Map maps Content to the whole document; nil for empty or external blocks.
	Map *sourcemap.SourceMap
}

// Attr reports the value of an attribute and whether it is present.
func (b *Block) Attr(name string) (string, bool) {
	v, ok := b.Attrs[name]
	return v, ok
}

// ScriptBlock is a <script> section.
type ScriptBlock struct {
	Block
	Setup bool
}

// StyleBlock is a <style> section.
type StyleBlock struct {
	Block
	Scoped bool
	// Module is the CSS-modules binding name: "$style" for a bare module
	// attribute, the attribute value otherwise, empty when not a module.
	Module string
}

// Descriptor is a parsed document.
type Descriptor struct {
	Filename     string
	Source       string
	Template     *Block
	Script       *ScriptBlock
	ScriptSetup  *ScriptBlock
	Styles       []*StyleBlock
	CustomBlocks []*Block
}

// ScriptLang returns the declared script language, defaulting to "js".
func (d *Descriptor) ScriptLang() string {
	if d.Script != nil && d.Script.Lang != "" {
		return d.Script.Lang
	}
	if d.ScriptSetup != nil && d.ScriptSetup.Lang != "" {
		return d.ScriptSetup.Lang
	}
	return "js"
}

// HasScript reports whether the document has any script section.
func (d *Descriptor) HasScript() bool {
	return d.Script != nil || d.ScriptSetup != nil
}

// BindingType classifies an identifier visible to the template.
type BindingType string

const (
	BindingData          BindingType = "data"
	BindingProps         BindingType = "props"
	BindingOptions       BindingType = "options"
	BindingSetupConst    BindingType = "setup-const"
	BindingSetupRef      BindingType = "setup-ref"
	BindingSetupMaybeRef BindingType = "setup-maybe-ref"
	BindingSetupLet      BindingType = "setup-let"
)

// IsSetup reports whether the binding lives in the setup state.
func (t BindingType) IsSetup() bool {
	switch t {
	case BindingSetupConst, BindingSetupRef, BindingSetupMaybeRef, BindingSetupLet:
		return true
	default:
		return false
	}
}

// BindingMetadata maps identifiers exposed by the script to their kind.
type BindingMetadata map[string]BindingType
