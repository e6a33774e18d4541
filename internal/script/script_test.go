package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
	"github.com/sfckit/sfcc/internal/template"
)

func parse(t *testing.T, src string) *sfc.Descriptor {
	t.Helper()
	d, errs := sfc.Parse(src, "Comp.vue")
	require.Empty(t, errs)
	return d
}

func lineOf(t *testing.T, code, substr string) int {
	t.Helper()
	for i, l := range strings.Split(code, "\n") {
		if strings.Contains(l, substr) {
			return i + 1
		}
	}
	t.Fatalf("%q not found in:\n%s", substr, code)
	return 0
}

func TestCompileScript_PlainPassesThrough(t *testing.T) {
	d := parse(t, `<script>
import { ref } from 'vue'
export default {
  setup() {
    return { msg: ref('Hello World!') }
  }
}
</script>`)
	res, err := Compiler{}.CompileScript(d, sfc.ScriptOptions{Filename: "Comp.vue"})
	require.NoError(t, err)
	assert.Equal(t, d.Script.Content, res.Code)
	assert.Same(t, d.Script.Map, res.Map)
	assert.Equal(t, sfc.BindingMetadata{"msg": sfc.BindingSetupMaybeRef}, res.Bindings)
}

func TestCompileScript_NoScript(t *testing.T) {
	d := parse(t, `<template><p/></template>`)
	_, err := Compiler{}.CompileScript(d, sfc.ScriptOptions{})
	assert.Error(t, err)
}

const setupDoc = `<script setup>
import { ref } from 'vue'
import Child from './Child.vue'

const props = defineProps({
  title: String
})
const msg = ref('Hello')
function shout() {
  msg.value += '!'
}
</script>

<template>
  <h1 @click="shout">{{ title }} {{ msg }}</h1>
  <Child />
</template>
`

func TestCompileScript_SetupInlinesTemplate(t *testing.T) {
	d := parse(t, setupDoc)
	res, err := Compiler{}.CompileScript(d, sfc.ScriptOptions{
		Filename: "Comp.vue",
		Template: template.Compiler{},
	})
	require.NoError(t, err)

	code := res.Code
	assert.Contains(t, code, "import { ref } from 'vue'")
	assert.Contains(t, code, "import Child from './Child.vue'")
	assert.Contains(t, code, "function render(")
	assert.NotContains(t, code, "export function render(")
	assert.Contains(t, code, "export default {")
	assert.Contains(t, code, "props: {\n  title: String\n},")
	assert.Contains(t, code, "setup(__props, { expose: __expose, emit: __emit }) {")
	assert.Contains(t, code, "const props = __props")
	assert.Contains(t, code, "return { ref, Child, props, msg, shout }")
	assert.Contains(t, code, "render,")
	assert.Contains(t, code, "$props.title")
	assert.Contains(t, code, "$setup.msg")
	assert.Contains(t, code, "onClick: $setup.shout")
	assert.Contains(t, code, "_h($setup.Child)")

	assert.Equal(t, sfc.BindingProps, res.Bindings["title"])
	assert.Equal(t, sfc.BindingSetupRef, res.Bindings["msg"])
	assert.Equal(t, sfc.BindingSetupConst, res.Bindings["shout"])

	c, err := sourcemap.NewConsumer(res.Map)
	require.NoError(t, err)
	for substr, want := range map[string]int{
		"const msg = ref('Hello')": 8,
		"import Child from":        3,
		"function shout()":         9,
	} {
		m, ok := c.OriginalPositionFor(sourcemap.Position{Line: lineOf(t, code, substr)})
		require.True(t, ok, substr)
		assert.Equal(t, want, m.Original.Line, substr)
		assert.Equal(t, "Comp.vue", m.Source)
	}
}

func TestCompileScript_SetupKeepsLinesOfMacros(t *testing.T) {
	d := parse(t, setupDoc)
	res, err := Compiler{}.CompileScript(d, sfc.ScriptOptions{Filename: "Comp.vue"})
	require.NoError(t, err)
	assert.NotContains(t, res.Code, "function render(")

	bodyStart := lineOf(t, res.Code, "const props = __props")
	assert.Equal(t, bodyStart+3, lineOf(t, res.Code, "const msg = ref"))
}

func TestCompileScript_SetupWithCompanionScript(t *testing.T) {
	d := parse(t, `<script>
export default { name: 'Named', inheritAttrs: false }
</script>
<script setup>
const count = 1
</script>`)
	res, err := Compiler{}.CompileScript(d, sfc.ScriptOptions{Filename: "Comp.vue"})
	require.NoError(t, err)
	assert.Contains(t, res.Code, "const __default__ = { name: 'Named', inheritAttrs: false }")
	assert.Contains(t, res.Code, "export default /*#__PURE__*/Object.assign(__default__, {")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(res.Code), "})"))
}

func TestCompileScript_TypedProps(t *testing.T) {
	src := "<script setup lang=\"ts\">\nconst props = defineProps<{ msg: string }>()\n</script>"

	_, err := Compiler{}.CompileScript(parse(t, src), sfc.ScriptOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `lang="ts"`)

	res, err := Compiler{}.CompileScript(parse(t, src), sfc.ScriptOptions{TypeScript: true})
	require.NoError(t, err)
	assert.Contains(t, res.Code, "props: { msg: null },")
	assert.Equal(t, sfc.BindingProps, res.Bindings["msg"])
}

func TestCompileScript_TemplateErrorsFail(t *testing.T) {
	d := parse(t, "<script setup>\nconst a = 1\n</script>\n<template><p v-else>x</p></template>")
	_, err := Compiler{}.CompileScript(d, sfc.ScriptOptions{Template: template.Compiler{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling template")
}
