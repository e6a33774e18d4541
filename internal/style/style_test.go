package style

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/bep/godartsass/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

func TestScope(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"descendant", ".a .b { color: red }", ".a .b[data-v-1] { color: red }"},
		{"list", "h1, h2 > p { margin: 0 }", "h1[data-v-1], h2 > p[data-v-1] { margin: 0 }"},
		{"pseudo class", ".a:hover { color: red }", ".a[data-v-1]:hover { color: red }"},
		{"pseudo only", ":hover { color: red }", "[data-v-1]:hover { color: red }"},
		{"attribute", "input[type=text] { color: red }", "input[type=text][data-v-1] { color: red }"},
		{"deep", ".a :deep(.b) { color: red }", ".a[data-v-1] .b { color: red }"},
		{"deep attached", ".a:deep(.b) { color: red }", ".a[data-v-1] .b { color: red }"},
		{"deep leading", ":deep(.b) { color: red }", "[data-v-1] .b { color: red }"},
		{"global", ":global(.x) { color: red }", ".x { color: red }"},
		{"slotted", ":slotted(.x) { color: red }", ".x[data-v-1-s] { color: red }"},
		{"media", "@media (max-width: 10px) { .a { color: red } }", "@media (max-width: 10px) { .a[data-v-1] { color: red } }"},
		{"keyframes", "@keyframes spin { from { opacity: 0 } to { opacity: 1 } }", "@keyframes spin { from { opacity: 0 } to { opacity: 1 } }"},
		{"font face", "@font-face { font-family: x }", "@font-face { font-family: x }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scope(tt.in, "data-v-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScope_KeepsLines(t *testing.T) {
	in := "h1 {\n  color: red;\n}\n\n.a p {\n  margin: 0;\n}\n"
	got, err := Scope(in, "data-v-x")
	require.NoError(t, err)
	assert.Equal(t, strings.Count(in, "\n"), strings.Count(got, "\n"))
	assert.Contains(t, got, "h1[data-v-x] {")
	assert.Contains(t, got, ".a p[data-v-x] {")
}

// blockOptions returns options for a style block whose content starts on
// line `line` of App.vue.
func blockOptions(t *testing.T, content string, line int) sfc.StyleOptions {
	t.Helper()
	m, err := sourcemap.Shift(sourcemap.LineIdentity("App.vue", "", content), line-1, nil)
	require.NoError(t, err)
	return sfc.StyleOptions{ID: "data-v-7", Filename: "App.vue", Source: content, InMap: m}
}

func TestCompileStyle_Plain(t *testing.T) {
	c := &Compiler{}
	res := c.CompileStyle(blockOptions(t, "\nh1{color:red}\n", 10))
	require.Empty(t, res.Errors)

	assert.Contains(t, res.Code, "h1 {")
	assert.Contains(t, res.Code, "color: red;")
	require.NotNil(t, res.Map)
	assert.Equal(t, []string{"App.vue"}, res.Map.Sources)

	// "h1" sits on content line 2, document line 11.
	consumer, err := sourcemap.NewConsumer(res.Map)
	require.NoError(t, err)
	got, ok := consumer.OriginalPositionFor(sourcemap.Position{Line: 1, Column: 0})
	require.True(t, ok)
	assert.Equal(t, 11, got.Original.Line)
}

func TestCompileStyle_Scoped(t *testing.T) {
	c := &Compiler{}
	opts := blockOptions(t, ".title { color: red }", 1)
	opts.Scoped = true
	res := c.CompileStyle(opts)
	require.Empty(t, res.Errors)
	assert.Contains(t, res.Code, ".title[data-v-7] {")
}

func TestCompileStyle_ProdMinifies(t *testing.T) {
	c := &Compiler{}
	opts := blockOptions(t, "h1 {\n  color: red;\n}\n", 1)
	opts.IsProd = true
	res := c.CompileStyle(opts)
	require.Empty(t, res.Errors)
	assert.NotContains(t, strings.TrimSpace(res.Code), "\n")
}

type fakePreprocessor struct {
	code string
	m    *sourcemap.SourceMap
	err  error
	lang string
}

func (f *fakePreprocessor) Preprocess(lang, _, _ string) (string, *sourcemap.SourceMap, error) {
	f.lang = lang
	return f.code, f.m, f.err
}

func TestCompileStyle_Preprocessors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		opts := blockOptions(t, "$c: red; h1 { color: $c }", 1)
		opts.PreprocessLang = "scss"
		res := (&Compiler{}).CompileStyle(opts)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0].Error(), "no scss preprocessor")
	})

	t.Run("failure surfaces", func(t *testing.T) {
		opts := blockOptions(t, "h1 {", 1)
		opts.PreprocessLang = "less"
		res := (&Compiler{Less: &fakePreprocessor{err: errors.New("less: boom")}}).CompileStyle(opts)
		require.Len(t, res.Errors, 1)
		assert.EqualError(t, res.Errors[0], "less: boom")
	})

	t.Run("mapped output chains to document", func(t *testing.T) {
		// Preprocessed line 1 comes from content line 3.
		g := sourcemap.NewGenerator("")
		g.AddMapping(sourcemap.Mapping{
			Generated: sourcemap.Position{Line: 1},
			Original:  sourcemap.Position{Line: 3},
			Source:    "App.vue",
		})
		sass := &fakePreprocessor{code: "h1 {\n  color: red;\n}\n", m: g.Map()}
		opts := blockOptions(t, "\n$c: red;\nh1 { color: $c }\n", 20)
		opts.PreprocessLang = "sass"

		res := (&Compiler{Sass: sass}).CompileStyle(opts)
		require.Empty(t, res.Errors)
		assert.Equal(t, "sass", sass.lang)
		require.NotNil(t, res.Map)

		consumer, err := sourcemap.NewConsumer(res.Map)
		require.NoError(t, err)
		got, ok := consumer.OriginalPositionFor(sourcemap.Position{Line: 1, Column: 0})
		require.True(t, ok)
		assert.Equal(t, 22, got.Original.Line)
	})

	t.Run("unmapped output drops map", func(t *testing.T) {
		opts := blockOptions(t, "h1 { color: red }", 1)
		opts.PreprocessLang = "less"
		res := (&Compiler{Less: &fakePreprocessor{code: "h1 { color: red; }"}}).CompileStyle(opts)
		require.Empty(t, res.Errors)
		assert.Nil(t, res.Map)
		assert.Contains(t, res.Code, "h1 {")
	})
}

func TestSassImporter(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/styles/_vars.scss", []byte("$c: red;"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/node_modules/theme/base.sass", []byte("a\n  color: blue"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/node_modules/@acme/ui/reset.css", []byte("*{margin:0}"), 0o644))

	imp := &sassImporter{p: &SassPreprocessor{Fs: fs, Root: "/src"}}

	tests := []struct {
		url  string
		want string
	}{
		{"file:///src/styles/vars", "file:///src/styles/_vars.scss"},
		{"styles/vars", "file:///src/styles/_vars.scss"},
		{"theme/base", "file:///src/node_modules/theme/base.sass"},
		{"@acme/ui/reset", "file:///src/node_modules/@acme/ui/reset.css"},
		{"missing/thing", ""},
		{"sass:math", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := imp.CanonicalizeURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	loaded, err := imp.Load("file:///src/node_modules/theme/base.sass")
	require.NoError(t, err)
	assert.Equal(t, "a\n  color: blue", loaded.Content)
	assert.Equal(t, godartsass.SourceSyntaxSASS, loaded.SourceSyntax)

	_, err = imp.Load("file:///src/nope.scss")
	assert.Error(t, err)
}

func TestSassImporter_RelativeRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "proj/vars.scss", []byte("$c: red;"), 0o644))
	s := &SassPreprocessor{Fs: fs, Root: "proj"}

	got, err := (&sassImporter{p: s}).CanonicalizeURL("vars")
	require.NoError(t, err)
	assert.Equal(t, "file:///proj/vars.scss", got)
	assert.Equal(t, "proj/vars.scss", s.filePath(got))
}

func TestSplitInlineMap(t *testing.T) {
	g := sourcemap.NewGenerator("")
	g.AddMapping(sourcemap.Mapping{Generated: sourcemap.Position{Line: 1}, Original: sourcemap.Position{Line: 1}, Source: "/tmp/sfcc-less-1/mixins.less"})
	g.AddMapping(sourcemap.Mapping{Generated: sourcemap.Position{Line: 2}, Original: sourcemap.Position{Line: 4}, Source: "/tmp/sfcc-less-1/App.less"})
	raw, err := g.Map().JSON()
	require.NoError(t, err)

	css := ".m {}\nh1 {}\n/*# sourceMappingURL=data:application/json;base64," + base64.StdEncoding.EncodeToString(raw) + " */"
	code, m, err := splitInlineMap(css, "App.less", "App.vue")
	require.NoError(t, err)
	assert.Equal(t, ".m {}\nh1 {}\n", code)
	require.NotNil(t, m)
	assert.Equal(t, []string{"App.vue"}, m.Sources)

	mappings, err := m.Decode()
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, 4, mappings[0].Original.Line)

	code, m, err = splitInlineMap("h1 {}\n", "App.less", "App.vue")
	require.NoError(t, err)
	assert.Equal(t, "h1 {}\n", code)
	assert.Nil(t, m)
}
