package sfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfckit/sfcc/internal/sourcemap"
)

const basicDoc = `<script>
export default {
  data() { return { msg: 'hi' } }
}
</script>

<template>
  <div>
    <template v-if="ok"><span>{{ msg }}</span></template>
  </div>
</template>

<style scoped lang="scss">
h1 { color: red; }
</style>
<style module>
.a { color: blue; }
</style>
<i18n>{"en": {}}</i18n>
`

func TestParse_SplitsSections(t *testing.T) {
	d, errs := Parse(basicDoc, "App.vue")
	require.Empty(t, errs)

	require.NotNil(t, d.Script)
	assert.False(t, d.Script.Setup)
	assert.Equal(t, 1, d.Script.Loc.Line)
	assert.Contains(t, d.Script.Content, "export default")

	require.NotNil(t, d.Template)
	assert.Contains(t, d.Template.Content, `<template v-if="ok">`)
	assert.Contains(t, d.Template.Content, "</div>")
	assert.Equal(t, 7, d.Template.Loc.Line)

	require.Len(t, d.Styles, 2)
	assert.True(t, d.Styles[0].Scoped)
	assert.Equal(t, "scss", d.Styles[0].Lang)
	assert.Equal(t, "", d.Styles[0].Module)
	assert.Equal(t, "$style", d.Styles[1].Module)

	require.Len(t, d.CustomBlocks, 1)
	assert.Equal(t, "i18n", d.CustomBlocks[0].Type)
	assert.Equal(t, `{"en": {}}`, d.CustomBlocks[0].Content)
}

func TestParse_ContentOffsetsMatchSource(t *testing.T) {
	d, errs := Parse(basicDoc, "App.vue")
	require.Empty(t, errs)
	for _, b := range []*Block{&d.Script.Block, d.Template, &d.Styles[0].Block} {
		assert.Equal(t, b.Content, basicDoc[b.Loc.Start:b.Loc.End], b.Type)
	}
}

func TestParse_BlockMapPointsIntoDocument(t *testing.T) {
	d, errs := Parse(basicDoc, "App.vue")
	require.Empty(t, errs)

	c, err := sourcemap.NewConsumer(d.Template.Map)
	require.NoError(t, err)
	// Line 2 of the template content is "  <div>", line 8 of the document.
	m, ok := c.OriginalPositionFor(sourcemap.Position{Line: 2, Column: 2})
	require.True(t, ok)
	assert.Equal(t, "App.vue", m.Source)
	assert.Equal(t, 8, m.Original.Line)

	content, ok := d.Template.Map.SourceContent("App.vue")
	require.True(t, ok)
	assert.Equal(t, basicDoc, content)
}

func TestParse_BlockMapFirstLineColumns(t *testing.T) {
	source := "<template><h1>{{ msg }}</h1>\n  <p>x</p>\n</template>\n"
	d, errs := Parse(source, "App.vue")
	require.Empty(t, errs)

	c, err := sourcemap.NewConsumer(d.Template.Map)
	require.NoError(t, err)

	// "<h1>" starts the content but sits after "<template>" on line 1.
	m, ok := c.OriginalPositionFor(sourcemap.Position{Line: 1, Column: 0})
	require.True(t, ok)
	assert.Equal(t, sourcemap.Position{Line: 1, Column: len("<template>")}, m.Original)

	// Later lines keep their own columns.
	m, ok = c.OriginalPositionFor(sourcemap.Position{Line: 2, Column: 2})
	require.True(t, ok)
	assert.Equal(t, sourcemap.Position{Line: 2, Column: 2}, m.Original)
}

func TestParse_SetupScriptAndLang(t *testing.T) {
	src := "<script setup lang=\"ts\">\nconst a: number = 1\n</script>\n<template><p>{{ a }}</p></template>\n"
	d, errs := Parse(src, "Setup.vue")
	require.Empty(t, errs)
	require.NotNil(t, d.ScriptSetup)
	assert.Nil(t, d.Script)
	assert.True(t, d.ScriptSetup.Setup)
	assert.Equal(t, "ts", d.ScriptLang())
	assert.True(t, d.HasScript())
}

func TestParse_ExternalAndEmptyBlocks(t *testing.T) {
	src := `<script src="./comp.js"></script>
<style src="./a.css" scoped></style>
<style>   </style>
<template></template>`
	d, errs := Parse(src, "Ext.vue")
	require.Empty(t, errs)
	require.NotNil(t, d.Script)
	assert.Equal(t, "./comp.js", d.Script.Src)
	assert.Nil(t, d.Script.Map)
	require.Len(t, d.Styles, 1)
	assert.Equal(t, "./a.css", d.Styles[0].Src)
	require.NotNil(t, d.Template)
	assert.Empty(t, d.Template.Content)
}

func TestParse_CaseInsensitiveCloseTag(t *testing.T) {
	src := "<script>\nconst s = '</scrip'\n</SCRIPT >\n"
	d, errs := Parse(src, "Case.vue")
	require.Empty(t, errs)
	require.NotNil(t, d.Script)
	assert.Equal(t, "\nconst s = '</scrip'\n", d.Script.Content)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "duplicate template",
			src:  "<template><a/></template>\n<template><b/></template>",
			want: "only one <template>",
		},
		{
			name: "duplicate script",
			src:  "<script>a</script>\n<script>b</script>",
			want: "only one <script>",
		},
		{
			name: "duplicate setup script",
			src:  "<script setup>a</script>\n<script setup>b</script>",
			want: "only one <script setup>",
		},
		{
			name: "missing end tag",
			src:  "<template>\n<div></div>\n",
			want: "missing end tag",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, errs := Parse(tt.src, "Bad.vue")
			assert.Nil(t, d)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tt.want)
			var se *SyntaxError
			assert.ErrorAs(t, errs[0], &se)
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, errs := Parse("<script>a</script>\n  <script>b</script>", "Pos.vue")
	require.Len(t, errs, 1)
	se := errs[0].(*SyntaxError)
	assert.Equal(t, 2, se.Line)
}
