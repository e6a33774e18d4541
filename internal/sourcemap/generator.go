package sourcemap

import (
	"sort"
	"strings"
)

// Generator builds a source map from individual mappings. It only exposes
// the operations needed to construct a map from scratch: registering
// sources, adding mappings, attaching source content and serializing.
type Generator struct {
	file       string
	sourceRoot string

	mappings []Mapping

	sources     []string
	sourceIndex map[string]int
	contents    map[string]string

	names     []string
	nameIndex map[string]int
}

// NewGenerator returns an empty generator for the given output file name.
func NewGenerator(file string) *Generator {
	return &Generator{
		file:        file,
		sourceIndex: make(map[string]int),
		contents:    make(map[string]string),
		nameIndex:   make(map[string]int),
	}
}

// SetSourceRoot sets the sourceRoot field of the serialized map.
func (g *Generator) SetSourceRoot(root string) {
	g.sourceRoot = root
}

// AddSource registers a source name even if no mapping references it.
func (g *Generator) AddSource(source string) {
	if source == "" {
		return
	}
	if _, ok := g.sourceIndex[source]; ok {
		return
	}
	g.sourceIndex[source] = len(g.sources)
	g.sources = append(g.sources, source)
}

// HasSourceContent reports whether content was attached to source.
func (g *Generator) HasSourceContent(source string) bool {
	_, ok := g.contents[source]
	return ok
}

// SetSourceContent attaches the full text of a source, registering the
// source if needed.
func (g *Generator) SetSourceContent(source, content string) {
	g.AddSource(source)
	g.contents[source] = content
}

// AddMapping records one mapping.
func (g *Generator) AddMapping(m Mapping) {
	if m.Source != "" {
		g.AddSource(m.Source)
		if m.Name != "" {
			if _, ok := g.nameIndex[m.Name]; !ok {
				g.nameIndex[m.Name] = len(g.names)
				g.names = append(g.names, m.Name)
			}
		}
	} else {
		m.Name = ""
		m.Original = Position{}
	}
	g.mappings = append(g.mappings, m)
}

// Map serializes the accumulated mappings.
func (g *Generator) Map() *SourceMap {
	mappings := make([]Mapping, len(g.mappings))
	copy(mappings, g.mappings)
	sort.SliceStable(mappings, func(i, j int) bool {
		a, b := mappings[i].Generated, mappings[j].Generated
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	var (
		sb          strings.Builder
		line        = 1
		prevGenCol  int
		prevSrc     int
		prevOrigLn  int
		prevOrigCol int
		prevName    int
		prev        *Mapping
	)
	for i := range mappings {
		m := &mappings[i]
		if m.Generated.Line < 1 {
			continue
		}
		if prev != nil && *prev == *m {
			continue
		}
		if m.Generated.Line > line {
			sb.WriteString(strings.Repeat(";", m.Generated.Line-line))
			line = m.Generated.Line
			prevGenCol = 0
		} else if prev != nil && prev.Generated.Line == line {
			sb.WriteByte(',')
		}

		encodeVLQ(&sb, m.Generated.Column-prevGenCol)
		prevGenCol = m.Generated.Column

		if m.Source != "" {
			src := g.sourceIndex[m.Source]
			encodeVLQ(&sb, src-prevSrc)
			prevSrc = src
			encodeVLQ(&sb, (m.Original.Line-1)-prevOrigLn)
			prevOrigLn = m.Original.Line - 1
			encodeVLQ(&sb, m.Original.Column-prevOrigCol)
			prevOrigCol = m.Original.Column
			if m.Name != "" {
				name := g.nameIndex[m.Name]
				encodeVLQ(&sb, name-prevName)
				prevName = name
			}
		}
		prev = m
	}

	out := &SourceMap{
		Version:    3,
		File:       g.file,
		SourceRoot: g.sourceRoot,
		Sources:    append([]string{}, g.sources...),
		Names:      append([]string{}, g.names...),
		Mappings:   sb.String(),
	}
	if len(g.contents) > 0 {
		out.SourcesContent = make([]string, len(g.sources))
		for i, s := range g.sources {
			out.SourcesContent[i] = g.contents[s]
		}
	}
	return out
}
