package sourcemap

import (
	"fmt"
	"strings"
)

// Describe renders a human-readable dump of a map for debugging.
func Describe(m *SourceMap) string {
	if m == nil {
		return "no map\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "file:       %s\n", m.File)
	fmt.Fprintf(&sb, "sourceRoot: %s\n", m.SourceRoot)
	fmt.Fprintf(&sb, "sources:    %s\n", strings.Join(m.Sources, ", "))
	mappings, err := m.Decode()
	if err != nil {
		fmt.Fprintf(&sb, "mappings:   invalid (%v)\n", err)
		return sb.String()
	}
	fmt.Fprintf(&sb, "mappings:   %d\n", len(mappings))
	for _, mapping := range mappings {
		if !mapping.HasOriginal() {
			fmt.Fprintf(&sb, "  %d:%d\n", mapping.Generated.Line, mapping.Generated.Column)
			continue
		}
		fmt.Fprintf(&sb, "  %d:%d -> %s %d:%d", mapping.Generated.Line, mapping.Generated.Column,
			mapping.Source, mapping.Original.Line, mapping.Original.Column)
		if mapping.Name != "" {
			fmt.Fprintf(&sb, " (%s)", mapping.Name)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
