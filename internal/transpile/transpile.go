// Package transpile strips type syntax from script code with esbuild.
package transpile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

// TypeScript is an sfc.Transpiler for lang="ts" scripts. The returned map's
// single source is named after the component file, so chaining it onto the
// script compiler's map keeps one source entry.
type TypeScript struct {
	// Target is the language level of the output; the zero value keeps
	// modern syntax.
	Target api.Target
}

var _ sfc.Transpiler = TypeScript{}

// Transpile removes type annotations from code.
func (ts TypeScript) Transpile(code, filename string) (*sfc.TranspileResult, error) {
	res := api.Transform(code, api.TransformOptions{
		Loader:         api.LoaderTS,
		Target:         ts.Target,
		Format:         api.FormatDefault,
		Sourcemap:      api.SourceMapExternal,
		SourcesContent: api.SourcesContentExclude,
		Sourcefile:     filename,
		LogLevel:       api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return nil, MessagesError(res.Errors)
	}

	out := &sfc.TranspileResult{Code: string(res.Code)}
	if len(res.Map) > 0 {
		m, err := sourcemap.Parse(res.Map)
		if err != nil {
			return nil, fmt.Errorf("reading transpiler source map: %w", err)
		}
		out.Map = m
	}
	return out, nil
}

// MessagesError joins esbuild diagnostics into one error.
func MessagesError(msgs []api.Message) error {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			lines = append(lines, fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		lines = append(lines, m.Text)
	}
	return errors.New(strings.Join(lines, "\n"))
}
