package sourcemap

import "sort"

// Consumer answers position queries against a decoded map.
type Consumer struct {
	m        *SourceMap
	mappings []Mapping
	lines    map[int][]Mapping
}

// NewConsumer decodes m for querying.
func NewConsumer(m *SourceMap) (*Consumer, error) {
	mappings, err := m.Decode()
	if err != nil {
		return nil, err
	}
	c := &Consumer{
		m:        m,
		mappings: mappings,
		lines:    make(map[int][]Mapping),
	}
	for _, mapping := range mappings {
		c.lines[mapping.Generated.Line] = append(c.lines[mapping.Generated.Line], mapping)
	}
	for line := range c.lines {
		segs := c.lines[line]
		sort.SliceStable(segs, func(i, j int) bool {
			return segs[i].Generated.Column < segs[j].Generated.Column
		})
	}
	return c, nil
}

// Sources returns the declared source names.
func (c *Consumer) Sources() []string {
	return c.m.Sources
}

// SourceContent returns the embedded content of a source.
func (c *Consumer) SourceContent(source string) (string, bool) {
	return c.m.SourceContent(source)
}

// EachMapping calls fn for every mapping in generated order.
func (c *Consumer) EachMapping(fn func(Mapping)) {
	for _, mapping := range c.mappings {
		fn(mapping)
	}
}

// OriginalPositionFor finds the mapping covering a generated position: the
// mapping with the greatest column not after pos.Column on the same
// generated line. The returned mapping's Original and Source describe the
// original location. ok is false when no mapping on that line covers the
// position or the covering mapping has no original.
func (c *Consumer) OriginalPositionFor(pos Position) (Mapping, bool) {
	segs := c.lines[pos.Line]
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].Generated.Column > pos.Column
	})
	if i == 0 {
		return Mapping{}, false
	}
	m := segs[i-1]
	if !m.HasOriginal() {
		return Mapping{}, false
	}
	return m, true
}
