package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/sfckit/sfcc/internal/sfc"
)

// componentID is the local name of the component object in output code.
const componentID = "__sfc__"

// Features records which optional traits any section of a document has.
type Features struct {
	HasStyle       bool
	HasScoped      bool
	HasCSSModules  bool
	HasTypedScript bool
}

// Prop is a property assigned to the component object after its definition.
type Prop struct {
	Key   string
	Value string
}

// Context is the read-only state every resolver receives.
type Context struct {
	Filename     string
	DestFilename string
	// ID is derived from the filename and the source text.
	ID       string
	Features Features
	Options  Options
}

// ScopeID is the attribute that scopes styles and template elements.
func (c *Context) ScopeID() string {
	return "data-v-" + c.ID
}

// setup is what the feature pass adds to the output before any resolver
// runs.
type setup struct {
	props   []Prop
	prelude []string
}

// StableID returns an eight digit hex id for a component.
func StableID(filename, source string) string {
	return fmt.Sprintf("%08x", uint32(xxhash.Sum64String(filename+source)))
}

// DetectFeatures ORs the traits of every section of d.
func DetectFeatures(d *sfc.Descriptor) Features {
	f := Features{HasTypedScript: d.HasScript() && d.ScriptLang() == "ts"}
	for _, s := range d.Styles {
		f.HasStyle = true
		f.HasScoped = f.HasScoped || s.Scoped
		f.HasCSSModules = f.HasCSSModules || s.Module != ""
	}
	return f
}

// resolveContext builds the context of one compile and the component
// properties and statements the features imply.
func resolveContext(d *sfc.Descriptor, source string, opts Options) (*Context, setup) {
	filename := opts.filename()
	ctx := &Context{
		Filename:     filename,
		DestFilename: DestPath(filename),
		ID:           StableID(filename, source),
		Features:     DetectFeatures(d),
		Options:      opts,
	}

	var s setup
	s.props = append(s.props, Prop{Key: "__file", Value: jsString(filename)})
	if ctx.Features.HasScoped {
		s.props = append(s.props, Prop{Key: "__scopeId", Value: jsString(ctx.ScopeID())})
	}
	if ctx.Features.HasCSSModules {
		s.props = append(s.props, Prop{Key: "__cssModules", Value: "cssModules"})
		s.prelude = append(s.prelude, "const cssModules = {}")
	}
	return ctx, s
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
