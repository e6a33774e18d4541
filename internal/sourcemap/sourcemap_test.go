package sourcemap

import (
	"strings"
	"testing"

	gosourcemap "github.com/go-sourcemap/sourcemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVLQ_RoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, -1, 15, 16, -16, 1023, 123456, -987654} {
		var sb strings.Builder
		encodeVLQ(&sb, v)
		got, next, err := decodeVLQ(sb.String(), 0)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, sb.Len(), next)
	}
}

func TestDecode_RejectsUndeclaredSource(t *testing.T) {
	m := &SourceMap{Version: 3, Sources: []string{"a.vue"}, Mappings: "ACAA"}
	_, err := m.Decode()
	assert.Error(t, err)
}

func TestGenerator_SerializesAndDecodes(t *testing.T) {
	g := NewGenerator("out.js")
	g.SetSourceContent("a.vue", "line1\nline2\n")
	want := []Mapping{
		{Generated: Position{Line: 1, Column: 0}, Original: Position{Line: 2, Column: 0}, Source: "a.vue"},
		{Generated: Position{Line: 1, Column: 6}, Original: Position{Line: 2, Column: 4}, Source: "a.vue", Name: "msg"},
		{Generated: Position{Line: 3, Column: 2}},
		{Generated: Position{Line: 4, Column: 0}, Original: Position{Line: 1, Column: 0}, Source: "b.ts"},
	}
	for _, m := range want {
		g.AddMapping(m)
	}

	out := g.Map()
	assert.Equal(t, 3, out.Version)
	assert.Equal(t, []string{"a.vue", "b.ts"}, out.Sources)
	assert.Equal(t, []string{"line1\nline2\n", ""}, out.SourcesContent)

	data, err := out.JSON()
	require.NoError(t, err)
	parsed, err := Parse(data)
	require.NoError(t, err)

	got, err := parsed.Decode()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConsumer_OriginalPositionForStaysOnLine(t *testing.T) {
	g := NewGenerator("")
	g.AddMapping(Mapping{Generated: Position{Line: 1, Column: 4}, Original: Position{Line: 10, Column: 0}, Source: "a"})
	g.AddMapping(Mapping{Generated: Position{Line: 3, Column: 0}, Original: Position{Line: 20, Column: 2}, Source: "a"})
	c, err := NewConsumer(g.Map())
	require.NoError(t, err)

	m, ok := c.OriginalPositionFor(Position{Line: 1, Column: 9})
	require.True(t, ok)
	assert.Equal(t, Position{Line: 10, Column: 0}, m.Original)

	_, ok = c.OriginalPositionFor(Position{Line: 1, Column: 2})
	assert.False(t, ok, "column before the first segment has no mapping")

	_, ok = c.OriginalPositionFor(Position{Line: 2, Column: 0})
	assert.False(t, ok, "lookups must not fall back to a previous line")
}

func TestChain_IdentityLaws(t *testing.T) {
	m := LineIdentity("a.vue", "x\ny\n", "x\ny")

	got, err := Chain(nil, m)
	require.NoError(t, err)
	assert.Same(t, m, got)

	got, err = Chain(m, nil)
	require.NoError(t, err)
	assert.Same(t, m, got)

	got, err = Chain(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChain_ComposesThroughIntermediate(t *testing.T) {
	// intermediate line n comes from original line n+10
	oldGen := NewGenerator("intermediate.js")
	oldGen.SetSourceContent("comp.vue", "original text")
	for line := 1; line <= 5; line++ {
		oldGen.AddMapping(Mapping{
			Generated: Position{Line: line},
			Original:  Position{Line: line + 10},
			Source:    "comp.vue",
		})
	}

	newGen := NewGenerator("final.js")
	newGen.SetSourceContent("comp.vue", "intermediate text")
	newGen.AddMapping(Mapping{Generated: Position{Line: 1, Column: 2}, Original: Position{Line: 2, Column: 4}, Source: "comp.vue"})
	newGen.AddMapping(Mapping{Generated: Position{Line: 2, Column: 0}, Original: Position{Line: 9, Column: 0}, Source: "comp.vue"})
	newGen.AddMapping(Mapping{Generated: Position{Line: 3, Column: 0}})

	merged, err := Chain(oldGen.Map(), newGen.Map())
	require.NoError(t, err)

	got, err := merged.Decode()
	require.NoError(t, err)
	require.Len(t, got, 1, "only mappings resolvable through the old map survive")
	assert.Equal(t, Mapping{
		Generated: Position{Line: 1, Column: 2},
		Original:  Position{Line: 12, Column: 4},
		Source:    "comp.vue",
	}, got[0])

	assert.Equal(t, "intermediate.js", merged.File)
	assert.Equal(t, []string{"comp.vue"}, merged.Sources)
	content, ok := merged.SourceContent("comp.vue")
	require.True(t, ok)
	assert.Equal(t, "original text", content, "old map content wins")
}

func TestChain_MergesSourcesOfBothMaps(t *testing.T) {
	oldMap := LineIdentity("comp.vue", "a", "a")
	newMap := LineIdentity("<stdin>", "", "a")

	merged, err := Chain(oldMap, newMap)
	require.NoError(t, err)
	assert.Equal(t, []string{"comp.vue", "<stdin>"}, merged.Sources)
}

func TestBundle_SingleFragmentUnchanged(t *testing.T) {
	f := Fragment{Code: "const a = 1", Map: LineIdentity("a.vue", "", "const a = 1")}
	got, err := Bundle([]Fragment{f})
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestBundle_LineCountInvariant(t *testing.T) {
	fragments := []Fragment{
		{Code: "import './a.css'"},
		{Code: "const s = `multi\nline\n\nstring`\n\nconst b = 2", Map: LineIdentity("a.vue", "", "const s = `multi\nline\n\nstring`\n\nconst b = 2")},
		{Code: ""},
		{Code: "x\n", Map: LineIdentity("b.vue", "", "x\n")},
		{Code: "export default __sfc__"},
	}

	out, err := Bundle(fragments)
	require.NoError(t, err)

	want := 0
	for _, f := range fragments {
		want += len(strings.Split(f.Code, "\n"))
	}
	want += len(fragments) - 1

	require.True(t, strings.HasSuffix(out.Code, "\n"))
	lines := strings.Split(strings.TrimSuffix(out.Code, "\n"), "\n")
	assert.Len(t, lines, want)

	mappings, err := out.Map.Decode()
	require.NoError(t, err)
	for _, m := range mappings {
		assert.GreaterOrEqual(t, m.Generated.Line, 1)
		assert.LessOrEqual(t, m.Generated.Line, want)
	}
}

func TestBundle_ShiftsGeneratedLinesOnly(t *testing.T) {
	second := LineIdentity("comp.vue", "", "a\nb")
	out, err := Bundle([]Fragment{
		{Code: "one\ntwo"},
		{Code: "a\nb", Map: second},
	})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n\na\nb\n", out.Code)

	c, err := NewConsumer(out.Map)
	require.NoError(t, err)
	m, ok := c.OriginalPositionFor(Position{Line: 4, Column: 0})
	require.True(t, ok)
	assert.Equal(t, 1, m.Original.Line)
	m, ok = c.OriginalPositionFor(Position{Line: 5, Column: 0})
	require.True(t, ok)
	assert.Equal(t, 2, m.Original.Line)

	lines := strings.Split(out.Code, "\n")
	assert.Equal(t, "a", lines[3])
	assert.Equal(t, "b", lines[4])
}

func TestBundle_UnionOfSources(t *testing.T) {
	a := LineIdentity("a.vue", "A", "a")
	b := LineIdentity("b.vue", "B", "b")
	a2 := LineIdentity("a.vue", "other", "a")

	out, err := Bundle([]Fragment{{Code: "a", Map: a}, {Code: "b", Map: b}, {Code: "a", Map: a2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.vue", "b.vue"}, out.Map.Sources)
	assert.Equal(t, []string{"A", "B"}, out.Map.SourcesContent)
}

func TestShift_OffsetsOriginalLinesAndRenames(t *testing.T) {
	block := LineIdentity("block", "block text", "x\n  y")
	shifted, err := Shift(block, 7, map[string]string{"block": "comp.vue"})
	require.NoError(t, err)

	assert.Equal(t, []string{"comp.vue"}, shifted.Sources)
	content, ok := shifted.SourceContent("comp.vue")
	require.True(t, ok)
	assert.Equal(t, "block text", content)

	mappings, err := shifted.Decode()
	require.NoError(t, err)
	require.NotEmpty(t, mappings)
	for _, m := range mappings {
		assert.Equal(t, "comp.vue", m.Source)
		assert.Equal(t, m.Generated.Line+7, m.Original.Line)
		assert.Equal(t, m.Generated.Column, m.Original.Column)
	}
}

func TestShift_NilMap(t *testing.T) {
	got, err := Shift(nil, 3, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBundle_AgreesWithIndependentDecoder(t *testing.T) {
	out, err := Bundle([]Fragment{
		{Code: "import './x.css'"},
		{Code: "const a = 1\nconst b = 2\nconst c = 3", Map: mustShift(t, LineIdentity("comp.vue", "", "const a = 1\nconst b = 2\nconst c = 3"), 4)},
	})
	require.NoError(t, err)

	data, err := out.Map.JSON()
	require.NoError(t, err)
	smap, err := gosourcemap.Parse("", data)
	require.NoError(t, err)

	c, err := NewConsumer(out.Map)
	require.NoError(t, err)
	for _, line := range []int{3, 4} {
		mine, ok := c.OriginalPositionFor(Position{Line: line, Column: 0})
		require.True(t, ok)
		source, _, origLine, origCol, ok := smap.Source(line, 0)
		require.True(t, ok)
		assert.Equal(t, mine.Source, source)
		assert.Equal(t, mine.Original.Line, origLine)
		assert.Equal(t, mine.Original.Column, origCol)
	}
}

func mustShift(t *testing.T, m *SourceMap, offset int) *SourceMap {
	t.Helper()
	out, err := Shift(m, offset, nil)
	require.NoError(t, err)
	return out
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "no map\n", Describe(nil))
	out := Describe(LineIdentity("comp.vue", "", "a"))
	assert.Contains(t, out, "sources:    comp.vue")
	assert.Contains(t, out, "1:0 -> comp.vue 1:0")
}

func TestRestrict_KeepsMainSource(t *testing.T) {
	g := NewGenerator("")
	g.AddMapping(Mapping{Generated: Position{Line: 1}, Original: Position{Line: 4}, Source: "file:///src/_vars.scss"})
	g.AddMapping(Mapping{Generated: Position{Line: 2}, Original: Position{Line: 2, Column: 2}, Source: "file:///src/App.vue"})

	m, err := Restrict(g.Map(), func(s string) bool { return s == "file:///src/App.vue" }, "App.vue")
	require.NoError(t, err)
	assert.Equal(t, []string{"App.vue"}, m.Sources)

	mappings, err := m.Decode()
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, Position{Line: 2}, mappings[0].Generated)
	assert.Equal(t, Position{Line: 2, Column: 2}, mappings[0].Original)
}
