// Package sourcemap implements the revision 3 source map format and the three
// composition primitives the compiler needs: Chain (vertical composition of two
// transforms of the same content), Bundle (horizontal concatenation of
// independently mapped fragments) and Shift (re-anchoring a block-relative map).
//
// Lines are 1-based and columns are 0-based throughout, matching the convention
// of the JavaScript source-map tooling the maps are consumed by.
package sourcemap

import (
	"encoding/json"
	"fmt"
)

// SourceMap is the serialized (JSON) form of a revision 3 source map.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Position is a location in a text document.
type Position struct {
	Line   int
	Column int
}

// Mapping links a generated position to an original one. A mapping with an
// empty Source carries no original position.
type Mapping struct {
	Generated Position
	Original  Position
	Source    string
	Name      string
}

// HasOriginal reports whether the mapping points back into a source.
func (m Mapping) HasOriginal() bool {
	return m.Source != ""
}

// Parse decodes a JSON source map and validates its mappings.
func Parse(data []byte) (*SourceMap, error) {
	var m SourceMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding source map: %w", err)
	}
	if m.Version != 3 {
		return nil, fmt.Errorf("unsupported source map version %d", m.Version)
	}
	if _, err := m.Decode(); err != nil {
		return nil, err
	}
	return &m, nil
}

// JSON serializes the map.
func (m *SourceMap) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// SourceContent returns the embedded content of the named source, if any.
func (m *SourceMap) SourceContent(source string) (string, bool) {
	for i, s := range m.Sources {
		if s != source {
			continue
		}
		if i < len(m.SourcesContent) && m.SourcesContent[i] != "" {
			return m.SourcesContent[i], true
		}
		return "", false
	}
	return "", false
}

// Decode expands the VLQ mappings string into absolute mappings, ordered by
// generated position as encoded.
func (m *SourceMap) Decode() ([]Mapping, error) {
	var (
		out        []Mapping
		line       = 1
		genCol     int
		srcIdx     int
		origLine   int
		origCol    int
		nameIdx    int
		i          int
		mappingStr = m.Mappings
	)

	for i < len(mappingStr) {
		switch mappingStr[i] {
		case ';':
			line++
			genCol = 0
			i++
			continue
		case ',':
			i++
			continue
		}

		var fields [5]int
		n := 0
		for i < len(mappingStr) && mappingStr[i] != ',' && mappingStr[i] != ';' {
			if n == len(fields) {
				return nil, fmt.Errorf("mapping segment at line %d has more than 5 fields", line)
			}
			v, next, err := decodeVLQ(mappingStr, i)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			fields[n] = v
			n++
			i = next
		}

		genCol += fields[0]
		mapping := Mapping{Generated: Position{Line: line, Column: genCol}}
		switch n {
		case 1:
		case 4, 5:
			srcIdx += fields[1]
			origLine += fields[2]
			origCol += fields[3]
			if srcIdx < 0 || srcIdx >= len(m.Sources) {
				return nil, fmt.Errorf("line %d: source index %d out of range", line, srcIdx)
			}
			mapping.Source = m.Sources[srcIdx]
			mapping.Original = Position{Line: origLine + 1, Column: origCol}
			if n == 5 {
				nameIdx += fields[4]
				if nameIdx < 0 || nameIdx >= len(m.Names) {
					return nil, fmt.Errorf("line %d: name index %d out of range", line, nameIdx)
				}
				mapping.Name = m.Names[nameIdx]
			}
		default:
			return nil, fmt.Errorf("line %d: invalid segment with %d fields", line, n)
		}
		out = append(out, mapping)
	}

	return out, nil
}

// EachMapping calls fn for every decoded mapping in generated order.
func (m *SourceMap) EachMapping(fn func(Mapping)) error {
	mappings, err := m.Decode()
	if err != nil {
		return err
	}
	for _, mapping := range mappings {
		fn(mapping)
	}
	return nil
}
