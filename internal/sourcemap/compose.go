package sourcemap

import "strings"

// Fragment is a piece of generated code with an optional map. Generated
// lines in Map are relative to Code alone.
type Fragment struct {
	Code string
	Map  *SourceMap
}

// Chain composes two sequential transforms of the same content. oldMap maps
// the original document to an intermediate text and newMap maps that
// intermediate text to the final code; the result maps the original document
// to the final code. A nil input is the identity element.
//
// Columns are carried over from newMap unchanged, which is exact for
// intermediate transforms that preserve columns line by line.
//
// Both inputs must be well formed: every mapping's source is declared.
func Chain(oldMap, newMap *SourceMap) (*SourceMap, error) {
	if oldMap == nil {
		return newMap, nil
	}
	if newMap == nil {
		return oldMap, nil
	}

	oldConsumer, err := NewConsumer(oldMap)
	if err != nil {
		return nil, err
	}
	newConsumer, err := NewConsumer(newMap)
	if err != nil {
		return nil, err
	}

	g := NewGenerator(oldMap.File)
	g.SetSourceRoot(oldMap.SourceRoot)
	mergeSources(g, oldMap)
	mergeSources(g, newMap)

	newConsumer.EachMapping(func(m Mapping) {
		if !m.HasOriginal() {
			return
		}
		orig, ok := oldConsumer.OriginalPositionFor(m.Original)
		if !ok {
			return
		}
		name := orig.Name
		if name == "" {
			name = m.Name
		}
		g.AddMapping(Mapping{
			Generated: m.Generated,
			Original:  Position{Line: orig.Original.Line, Column: m.Original.Column},
			Source:    orig.Source,
			Name:      name,
		})
	})

	return g.Map(), nil
}

// Bundle concatenates fragments into one file. Each fragment is written
// followed by a newline, and consecutive fragments are separated by one empty
// line, so a fragment of n lines advances the generated line offset by n+1.
// Mappings are re-emitted with generated lines shifted by that running offset;
// original positions are untouched. A single fragment is returned as is.
func Bundle(fragments []Fragment) (Fragment, error) {
	if len(fragments) == 1 {
		return fragments[0], nil
	}

	var (
		code   strings.Builder
		g      *Generator
		offset int
	)
	for i, f := range fragments {
		if i > 0 {
			code.WriteByte('\n')
		}
		code.WriteString(f.Code)
		code.WriteByte('\n')

		if f.Map != nil {
			if g == nil {
				g = NewGenerator(f.Map.File)
				g.SetSourceRoot(f.Map.SourceRoot)
			}
			mergeSources(g, f.Map)
			lineOffset := offset
			if err := f.Map.EachMapping(func(m Mapping) {
				m.Generated.Line += lineOffset
				g.AddMapping(m)
			}); err != nil {
				return Fragment{}, err
			}
		}
		offset += LineCount(f.Code) + 1
	}

	out := Fragment{Code: code.String()}
	if g != nil {
		out.Map = g.Map()
	}
	return out, nil
}

// Shift translates every mapping's original line by lineOffset and renames
// sources according to rename (nil keeps names). It is used when a block was
// compiled as if it started at line 1 of its own document. Source content
// follows its source through the rename.
func Shift(m *SourceMap, lineOffset int, rename map[string]string) (*SourceMap, error) {
	if m == nil {
		return nil, nil
	}
	renamed := func(s string) string {
		if r, ok := rename[s]; ok && r != "" {
			return r
		}
		return s
	}

	g := NewGenerator(m.File)
	g.SetSourceRoot(m.SourceRoot)
	for i, s := range m.Sources {
		name := renamed(s)
		if i < len(m.SourcesContent) && m.SourcesContent[i] != "" && !g.HasSourceContent(name) {
			g.SetSourceContent(name, m.SourcesContent[i])
		} else {
			g.AddSource(name)
		}
	}

	if err := m.EachMapping(func(mapping Mapping) {
		if mapping.HasOriginal() {
			mapping.Source = renamed(mapping.Source)
			mapping.Original.Line += lineOffset
		}
		g.AddMapping(mapping)
	}); err != nil {
		return nil, err
	}
	return g.Map(), nil
}

// LineCount returns the number of newline-delimited lines in code; an empty
// string is one (empty) line.
func LineCount(code string) int {
	return strings.Count(code, "\n") + 1
}

// mergeSources registers the sources of m on g, keeping content that is
// already present.
func mergeSources(g *Generator, m *SourceMap) {
	for i, s := range m.Sources {
		if i < len(m.SourcesContent) && m.SourcesContent[i] != "" && !g.HasSourceContent(s) {
			g.SetSourceContent(s, m.SourcesContent[i])
			continue
		}
		g.AddSource(s)
	}
}

// Restrict keeps only the mappings whose source satisfies keep and renames
// that source to as. It isolates the main file of a preprocessor map whose
// other sources are imported partials.
func Restrict(m *SourceMap, keep func(source string) bool, as string) (*SourceMap, error) {
	if m == nil {
		return nil, nil
	}
	g := NewGenerator(m.File)
	g.AddSource(as)
	if err := m.EachMapping(func(mapping Mapping) {
		if !mapping.HasOriginal() || !keep(mapping.Source) {
			return
		}
		mapping.Source = as
		g.AddMapping(mapping)
	}); err != nil {
		return nil, err
	}
	return g.Map(), nil
}
