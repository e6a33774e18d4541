// Package sink persists compile results: generated modules, stylesheets and
// their source maps.
package sink

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/sfckit/sfcc/internal/compiler"
)

// Object is one file produced from a compile result.
type Object struct {
	Name        string
	Data        []byte
	ContentType string
}

// Sink stores the objects of a compile result.
type Sink interface {
	Write(ctx context.Context, res *compiler.Result) error
}

// Objects expands a successful result into files. Every output with a map
// gets a sibling <name>.map and a sourceMappingURL comment pointing at it.
func Objects(res *compiler.Result) ([]Object, error) {
	if !res.OK() {
		return nil, fmt.Errorf("%s: result has %d errors", res.JS.Filename, len(res.Errors))
	}
	var objs []Object
	add := func(f compiler.File, contentType string, comment func(string) string) error {
		if f.SourceMap == nil {
			objs = append(objs, Object{Name: f.Filename, Data: []byte(f.Code), ContentType: contentType})
			return nil
		}
		data, err := f.SourceMap.JSON()
		if err != nil {
			return fmt.Errorf("encoding map for %s: %w", f.Filename, err)
		}
		mapName := f.Filename + ".map"
		code := strings.TrimRight(f.Code, "\n") + "\n" + comment(path.Base(mapName)) + "\n"
		objs = append(objs,
			Object{Name: f.Filename, Data: []byte(code), ContentType: contentType},
			Object{Name: mapName, Data: data, ContentType: "application/json"},
		)
		return nil
	}

	if err := add(res.JS, "text/javascript", func(m string) string {
		return "//# sourceMappingURL=" + m
	}); err != nil {
		return nil, err
	}
	for _, css := range res.CSS {
		if err := add(css, "text/css", func(m string) string {
			return "/*# sourceMappingURL=" + m + " */"
		}); err != nil {
			return nil, err
		}
	}
	return objs, nil
}
