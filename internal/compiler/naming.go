package compiler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var scriptSuffix = regexp.MustCompile(`\.[jt]sx?$`)

// DestPath returns the output module name for a source file: foo.vue
// becomes foo.vue.js, foo.ts becomes foo.js and anything else is kept.
func DestPath(filename string) string {
	if strings.HasSuffix(filename, ".vue") {
		return filename + ".js"
	}
	return scriptSuffix.ReplaceAllString(filename, ".js")
}

// CSSPath returns the main stylesheet name for a component.
func CSSPath(filename string) string {
	return filename + ".css"
}

// ModuleCSSPath returns the stylesheet name for the CSS-modules section at
// index.
func ModuleCSSPath(filename string, index int) string {
	return fmt.Sprintf("%s.%d.module.css", filename, index)
}

// Query carries the flags an external stylesheet must be compiled with.
type Query struct {
	Module bool
	Scoped bool
	ID     string
}

// Encode renders the query as module=true, scoped=true&id=<id> or "".
func (q Query) Encode() string {
	switch {
	case q.Scoped:
		return "scoped=true&id=" + url.QueryEscape(q.ID)
	case q.Module:
		return "module=true"
	default:
		return ""
	}
}

// ExternalFile is a referenced file the caller must resolve itself.
type ExternalFile struct {
	Filename string
	Query    Query
}

// Path returns the filename with its encoded query.
func (f ExternalFile) Path() string {
	if q := f.Query.Encode(); q != "" {
		return f.Filename + "?" + q
	}
	return f.Filename
}

func hasExtension(filename string, exts ...string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(filename, "."+ext) {
			return true
		}
	}
	return false
}

func cssImport(path, binding string) string {
	if binding != "" {
		return fmt.Sprintf("import %s from '%s';", binding, path)
	}
	return fmt.Sprintf("import '%s';", path)
}
