package template

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sfckit/sfcc/internal/jsscan"
	"github.com/sfckit/sfcc/internal/sfc"
	"github.com/sfckit/sfcc/internal/sourcemap"
)

// position is a mapping recorded while generating the render body.
type position struct {
	genLine, genCol int
	offset          int
}

type generator struct {
	opts sfc.TemplateOptions
	p    *parser

	body    strings.Builder
	line    int
	col     int
	marks   []position
	helpers map[string]bool

	components []string
	directives []string
	locals     map[string]int
}

func newGenerator(opts sfc.TemplateOptions, p *parser) *generator {
	return &generator{
		opts:    opts,
		p:       p,
		line:    1,
		helpers: map[string]bool{},
		locals:  map[string]int{},
	}
}

func (g *generator) write(s string) {
	g.body.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		g.line += strings.Count(s, "\n")
		g.col = len(s) - i - 1
		return
	}
	g.col += len(s)
}

func (g *generator) newline(indent int) {
	g.write("\n" + strings.Repeat("  ", indent))
}

// mark maps the current output position to offset in the template.
func (g *generator) mark(offset int) {
	g.marks = append(g.marks, position{genLine: g.line, genCol: g.col, offset: offset})
}

// use records a runtime helper and returns its local alias.
func (g *generator) use(helper string) string {
	g.helpers[helper] = true
	return "_" + helper
}

func (g *generator) pushLocals(names ...string) {
	for _, n := range names {
		g.locals[n]++
	}
}

func (g *generator) popLocals(names ...string) {
	for _, n := range names {
		if g.locals[n]--; g.locals[n] <= 0 {
			delete(g.locals, n)
		}
	}
}

func (g *generator) prefixName(name string) string {
	if t, ok := g.opts.Bindings[name]; ok {
		switch {
		case t.IsSetup():
			return "$setup." + name
		case t == sfc.BindingProps:
			return "$props." + name
		case t == sfc.BindingData:
			return "$data." + name
		case t == sfc.BindingOptions:
			return "$options." + name
		}
	}
	return "_ctx." + name
}

// expr rewrites a template expression so free identifiers resolve against
// the render function's arguments.
func (g *generator) expr(code string, offset int) string {
	code = strings.TrimSpace(code)
	if code == "" {
		g.p.errorAt(offset, "expression is empty")
		return "undefined"
	}
	locals := make(map[string]bool, len(g.locals))
	for n := range g.locals {
		locals[n] = true
	}
	out, err := jsscan.PrefixIdentifiers(code, locals, g.prefixName)
	if err != nil {
		g.p.errorAt(offset, "invalid expression %q: %v", code, err)
		return "undefined"
	}
	return out
}

// item is one child after whitespace handling and v-if grouping.
type item struct {
	text     *node
	el       *node
	branches []*node
}

func (g *generator) items(children []*node) []item {
	var out []item
	for i, c := range children {
		if c.kind == textNode {
			if strings.TrimSpace(c.text) == "" {
				first, last := i == 0, i == len(children)-1
				if first || last || strings.ContainsAny(c.text, "\n\r") {
					continue
				}
				out = append(out, item{text: &node{kind: textNode, text: " ", offset: c.offset}})
				continue
			}
			out = append(out, item{text: c})
			continue
		}

		_, isIf := c.attr("v-if")
		_, isElseIf := c.attr("v-else-if")
		_, isElse := c.attr("v-else")
		switch {
		case isIf:
			out = append(out, item{branches: []*node{c}})
		case isElseIf || isElse:
			k := len(out) - 1
			for k >= 0 && out[k].text != nil && strings.TrimSpace(out[k].text.text) == "" {
				k--
			}
			if k < 0 || out[k].branches == nil || hasElse(out[k].branches) {
				g.p.errorAt(c.offset, "v-else/v-else-if has no adjacent v-if or v-else-if")
				continue
			}
			out = out[:k+1]
			out[k].branches = append(out[k].branches, c)
		default:
			out = append(out, item{el: c})
		}
	}
	return out
}

// nonEmpty reports whether children render anything.
func nonEmpty(children []*node) bool {
	for _, c := range children {
		if c.kind == elementNode || strings.TrimSpace(c.text) != "" {
			return true
		}
	}
	return false
}

func hasElse(branches []*node) bool {
	_, ok := branches[len(branches)-1].attr("v-else")
	return ok
}

// children writes a child list as an array literal.
func (g *generator) children(children []*node, indent int) {
	g.write("[")
	for i, it := range g.items(children) {
		if i > 0 {
			g.write(",")
		}
		g.newline(indent + 1)
		g.item(it, indent+1)
	}
	g.newline(indent)
	g.write("]")
}

func (g *generator) item(it item, indent int) {
	switch {
	case it.text != nil:
		g.text(it.text)
	case it.branches != nil:
		g.ifChain(it.branches, indent)
	default:
		g.element(it.el, indent)
	}
}

var whitespaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

func (g *generator) text(n *node) {
	lead := len(n.text) - len(strings.TrimLeft(n.text, " \t\r\n\f"))
	g.mark(n.offset + lead)

	var parts []string
	rest := n.text
	base := n.offset
	for rest != "" {
		open := strings.Index(rest, "{{")
		if open < 0 {
			parts = append(parts, staticText(rest))
			break
		}
		if open > 0 {
			parts = append(parts, staticText(rest[:open]))
		}
		close := strings.Index(rest[open+2:], "}}")
		if close < 0 {
			g.p.errorAt(base+open, "interpolation end sign was not found")
			break
		}
		inner := rest[open+2 : open+2+close]
		parts = append(parts, g.use("toDisplayString")+"("+g.expr(inner, base+open+2)+")")
		consumed := open + 2 + close + 2
		base += consumed
		rest = rest[consumed:]
	}

	var kept []string
	for _, p := range parts {
		if p != `""` {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		kept = []string{`" "`}
	}
	g.write(strings.Join(kept, " + "))
}

func staticText(s string) string {
	return strconv.Quote(html.UnescapeString(whitespaceRun.ReplaceAllString(s, " ")))
}

func (g *generator) ifChain(branches []*node, indent int) {
	for i, b := range branches {
		cond, isCond := b.attr("v-if")
		if !isCond {
			cond, isCond = b.attr("v-else-if")
		}
		if i > 0 {
			g.newline(indent)
			g.write(": ")
		}
		if isCond {
			g.write("(" + g.expr(cond.value, cond.offset) + ")")
			g.newline(indent + 1)
			g.write("? ")
		}
		g.element(b, indent+1)
	}
	if !hasElse(branches) {
		g.newline(indent)
		g.write(": null")
	}
}

var forAlias = regexp.MustCompile(`^\s*([\s\S]*?)\s+(?:in|of)\s+([\s\S]*?)\s*$`)

func (g *generator) element(n *node, indent int) {
	forAttr, isFor := n.attr("v-for")
	if !isFor {
		g.vnode(n, indent)
		return
	}
	m := forAlias.FindStringSubmatch(forAttr.value)
	if m == nil {
		g.p.errorAt(forAttr.offset, "v-for has invalid expression: %s", forAttr.value)
		g.write("null")
		return
	}
	params := strings.TrimSpace(m[1])
	names := aliasNames(params)
	g.mark(n.offset)
	g.write(g.use("renderList") + "(" + g.expr(m[2], forAttr.offset) + ", ")
	if !strings.HasPrefix(params, "(") {
		params = "(" + params + ")"
	}
	g.write(params + " => ")
	g.pushLocals(names...)
	g.vnode(n, indent)
	g.popLocals(names...)
	g.write(")")
}

var identRe = regexp.MustCompile(`[A-Za-z_$][\w$]*`)

// aliasNames lists the names a v-for alias list declares, skipping the keys
// of destructured properties.
func aliasNames(params string) []string {
	var out []string
	trimmed := strings.Trim(params, "() ")
	for _, loc := range identRe.FindAllStringIndex(trimmed, -1) {
		rest := strings.TrimLeft(trimmed[loc[1]:], " ")
		if strings.HasPrefix(rest, ":") {
			continue
		}
		out = append(out, trimmed[loc[0]:loc[1]])
	}
	return out
}

var builtinComponents = map[string]string{
	"transition":       "Transition",
	"Transition":       "Transition",
	"transition-group": "TransitionGroup",
	"TransitionGroup":  "TransitionGroup",
	"keep-alive":       "KeepAlive",
	"KeepAlive":        "KeepAlive",
	"teleport":         "Teleport",
	"Teleport":         "Teleport",
	"suspense":         "Suspense",
	"Suspense":         "Suspense",
}

func isComponent(tag string) bool {
	if svgTags[tag] {
		return false
	}
	if strings.ContainsAny(tag, "-ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return true
	}
	return atom.Lookup([]byte(tag)) == 0
}

var svgTags = map[string]bool{
	"circle": true, "ellipse": true, "g": true, "line": true, "polygon": true,
	"polyline": true, "rect": true, "defs": true, "use": true, "symbol": true,
	"linearGradient": true, "radialGradient": true, "stop": true, "text": true,
	"tspan": true, "clipPath": true, "mask": true, "pattern": true, "filter": true,
}

// vnode writes the vnode expression of an element, ignoring v-if and v-for.
func (g *generator) vnode(n *node, indent int) {
	g.mark(n.offset)
	switch {
	case n.tag == "slot":
		g.slotOutlet(n, indent)
		return
	case n.tag == "template" && !n.hasAny("v-slot") && !hasSlotShorthand(n):
		g.write(g.use("h") + "(" + g.use("Fragment") + ", null, ")
		g.children(n.children, indent)
		g.write(")")
		return
	}

	var (
		tagExpr   string
		component bool
	)
	switch {
	case n.tag == "component":
		is, ok := n.attr(":is")
		if !ok {
			is, ok = n.attr("v-bind:is")
		}
		if ok {
			tagExpr = g.use("resolveDynamicComponent") + "(" + g.expr(is.value, is.offset) + ")"
		} else if static, ok := n.attr("is"); ok {
			tagExpr = g.use("resolveDynamicComponent") + "(" + strconv.Quote(static.value) + ")"
		}
		component = true
	case builtinComponents[n.tag] != "":
		tagExpr = g.use(builtinComponents[n.tag])
		component = true
	case isComponent(n.tag):
		tagExpr = g.componentRef(n.tag)
		component = true
	default:
		tagExpr = strconv.Quote(n.tag)
	}

	props, dirs := g.props(n, component)
	wrap := len(dirs) > 0
	if wrap {
		g.write(g.use("withDirectives") + "(")
	}
	g.write(g.use("h") + "(" + tagExpr)

	hasChildren := nonEmpty(n.children) && !hasContentProp(n)
	switch {
	case component && (hasChildren || n.hasAny("v-slot") || hasSlotShorthand(n)):
		g.write(", " + props + ", ")
		g.slots(n, indent)
	case hasChildren:
		g.write(", " + props + ", ")
		g.children(n.children, indent)
	case props != "null":
		g.write(", " + props)
	}
	g.write(")")

	if wrap {
		g.write(", [" + strings.Join(dirs, ", ") + "])")
	}
}

func hasContentProp(n *node) bool {
	return n.hasAny("v-html", "v-text")
}

func hasSlotShorthand(n *node) bool {
	for _, a := range n.attrs {
		if strings.HasPrefix(a.name, "#") || strings.HasPrefix(a.name, "v-slot:") {
			return true
		}
	}
	return false
}

// componentRef returns the expression referring to a user component. A
// component bound by the script is used directly; others are resolved at
// render time.
func (g *generator) componentRef(tag string) string {
	for _, name := range []string{tag, camelize(tag), capitalize(camelize(tag))} {
		if t, ok := g.opts.Bindings[name]; ok && t.IsSetup() {
			return "$setup." + name
		}
	}
	v := "_component_" + sanitize(tag)
	for _, c := range g.components {
		if c == tag {
			return v
		}
	}
	g.components = append(g.components, tag)
	g.use("resolveComponent")
	return v
}

func (g *generator) directiveRef(name string) string {
	v := "_directive_" + sanitize(name)
	for _, d := range g.directives {
		if d == name {
			return v
		}
	}
	g.directives = append(g.directives, name)
	g.use("resolveDirective")
	return v
}

var nonIdent = regexp.MustCompile(`[^\w$]`)

func sanitize(s string) string {
	return nonIdent.ReplaceAllString(s, "_")
}

// slots writes the slot object of a component.
func (g *generator) slots(n *node, indent int) {
	type slot struct {
		name   string
		params string
		body   []*node
	}
	var (
		named   []slot
		rest    []*node
		defName = "default"
		defArgs string
	)
	if a, ok := slotAttr(n); ok {
		defName, defArgs = a.name, a.value
	}
	for _, c := range n.children {
		if c.kind == elementNode && c.tag == "template" {
			if a, ok := slotAttr(c); ok {
				named = append(named, slot{name: a.name, params: a.value, body: c.children})
				continue
			}
		}
		rest = append(rest, c)
	}
	if nonEmpty(rest) {
		named = append([]slot{{name: defName, params: defArgs, body: rest}}, named...)
	}

	g.write("{")
	for i, s := range named {
		if i > 0 {
			g.write(",")
		}
		g.newline(indent + 1)
		g.write(objectKey(s.name) + ": ")
		names := aliasNames(s.params)
		fn := "(" + strings.TrimSpace(s.params) + ") => "
		if g.opts.Scoped {
			g.write(g.use("withCtx") + "(" + fn)
		} else {
			g.write(fn)
		}
		g.pushLocals(names...)
		g.children(s.body, indent+1)
		g.popLocals(names...)
		if g.opts.Scoped {
			g.write(")")
		}
	}
	g.newline(indent)
	g.write("}")
}

type slotSpec struct {
	name  string
	value string
}

func slotAttr(n *node) (slotSpec, bool) {
	for _, a := range n.attrs {
		switch {
		case a.name == "v-slot":
			return slotSpec{name: "default", value: a.value}, true
		case strings.HasPrefix(a.name, "v-slot:"):
			return slotSpec{name: strings.TrimPrefix(a.name, "v-slot:"), value: a.value}, true
		case strings.HasPrefix(a.name, "#"):
			return slotSpec{name: a.name[1:], value: a.value}, true
		}
	}
	return slotSpec{}, false
}

// slotOutlet writes a <slot> element as a renderSlot call.
func (g *generator) slotOutlet(n *node, indent int) {
	name := strconv.Quote("default")
	var entries []string
	for _, a := range n.attrs {
		switch {
		case a.name == "name":
			name = strconv.Quote(a.value)
		case a.name == ":name" || a.name == "v-bind:name":
			name = g.expr(a.value, a.offset)
		case strings.HasPrefix(a.name, ":"):
			entries = append(entries, objectKey(camelize(a.name[1:]))+": "+g.expr(a.value, a.offset))
		case strings.HasPrefix(a.name, "v-bind:"):
			entries = append(entries, objectKey(camelize(a.name[7:]))+": "+g.expr(a.value, a.offset))
		default:
			entries = append(entries, objectKey(a.name)+": "+strconv.Quote(a.value))
		}
	}
	props := "{}"
	if len(entries) > 0 {
		props = "{ " + strings.Join(entries, ", ") + " }"
	}
	g.write(g.use("renderSlot") + "(_ctx.$slots, " + name + ", " + props)
	if nonEmpty(n.children) {
		g.write(", () => ")
		g.children(n.children, indent)
	}
	g.write(")")
}

// props builds the props object of an element and its runtime directives.
func (g *generator) props(n *node, component bool) (string, []string) {
	var (
		entries          []string
		dirs             []string
		spread           []string
		staticClass      string
		staticStyle      string
		boundClass       []string
		boundStyle       []string
		hasClass, hasSty bool
	)
	for _, a := range n.attrs {
		name := a.name
		switch {
		case name == "v-if" || name == "v-else-if" || name == "v-else" || name == "v-for" ||
			name == "v-slot" || strings.HasPrefix(name, "v-slot:") || strings.HasPrefix(name, "#") ||
			name == "v-pre" || name == "v-once" || name == "v-cloak":
		case n.tag == "component" && (name == ":is" || name == "v-bind:is" || name == "is"):
		case name == "v-bind" || name == ":":
			spread = append(spread, g.expr(a.value, a.offset))
		case strings.HasPrefix(name, ".") && len(name) > 1:
			key, _ := splitModifiers(name[1:])
			entries = append(entries, objectKey("."+key)+": "+g.expr(a.value, a.offset))
		case strings.HasPrefix(name, ":") || strings.HasPrefix(name, "v-bind:"):
			key := strings.TrimPrefix(strings.TrimPrefix(name, "v-bind:"), ":")
			key, mods := splitModifiers(key)
			if contains(mods, "camel") {
				key = camelize(key)
			}
			val := g.expr(a.value, a.offset)
			switch key {
			case "class":
				boundClass = append(boundClass, val)
				hasClass = true
			case "style":
				boundStyle = append(boundStyle, val)
				hasSty = true
			default:
				entries = append(entries, g.propKey(key, a.offset)+": "+val)
			}
		case strings.HasPrefix(name, "@") || strings.HasPrefix(name, "v-on:"):
			event := strings.TrimPrefix(strings.TrimPrefix(name, "v-on:"), "@")
			entries = append(entries, g.on(event, a))
		case name == "v-model" || strings.HasPrefix(name, "v-model:"):
			entries = append(entries, g.model(n, a, component)...)
		case name == "v-show":
			dirs = append(dirs, "["+g.use("vShow")+", "+g.expr(a.value, a.offset)+"]")
		case name == "v-html":
			entries = append(entries, "innerHTML: "+g.expr(a.value, a.offset))
		case name == "v-text":
			entries = append(entries, "textContent: "+g.use("toDisplayString")+"("+g.expr(a.value, a.offset)+")")
		case strings.HasPrefix(name, "v-"):
			dirs = append(dirs, g.customDirective(a))
		case name == "class":
			staticClass = strings.Join(strings.Fields(a.value), " ")
			hasClass = true
		case name == "style":
			staticStyle = a.value
			hasSty = true
		default:
			val := `""`
			if a.value != "" {
				val = strconv.Quote(html.UnescapeString(a.value))
			}
			entries = append(entries, objectKey(name)+": "+val)
		}
	}

	if hasClass {
		entries = append(entries, "class: "+g.merged("normalizeClass", staticClass, boundClass))
	}
	if hasSty {
		entries = append(entries, "style: "+g.merged("normalizeStyle", staticStyle, boundStyle))
	}

	obj := "null"
	if len(entries) > 0 {
		obj = "{ " + strings.Join(entries, ", ") + " }"
	}
	if len(spread) > 0 {
		args := append(spread, obj)
		if obj == "null" {
			args = spread
		}
		obj = g.use("mergeProps") + "(" + strings.Join(args, ", ") + ")"
	}
	return obj, dirs
}

func (g *generator) merged(helper, static string, bound []string) string {
	switch {
	case len(bound) == 0:
		return strconv.Quote(static)
	case static == "" && len(bound) == 1:
		return g.use(helper) + "(" + bound[0] + ")"
	}
	parts := bound
	if static != "" {
		parts = append([]string{strconv.Quote(static)}, bound...)
	}
	return g.use(helper) + "([" + strings.Join(parts, ", ") + "])"
}

// propKey renders a bound attribute name; [expr] becomes a computed key.
func (g *generator) propKey(key string, offset int) string {
	if strings.HasPrefix(key, "[") && strings.HasSuffix(key, "]") {
		return "[" + g.expr(key[1:len(key)-1], offset) + "]"
	}
	return objectKey(key)
}

var (
	memberPath = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:\s*(?:\.\s*[A-Za-z_$][\w$]*|\[[^\]]+\]))*$`)
	fnExpr     = regexp.MustCompile(`^(?:async\s+)?(?:[\w$]+|\([^)]*?\))\s*=>|^(?:async\s+)?function(?:[\s(])`)
)

var systemModifiers = map[string]bool{
	"stop": true, "prevent": true, "self": true, "ctrl": true, "shift": true,
	"alt": true, "meta": true, "exact": true, "left": true, "middle": true, "right": true,
}

// on renders a v-on binding as an onX prop.
func (g *generator) on(event string, a attr) string {
	event, mods := splitModifiers(event)

	var handler string
	v := strings.TrimSpace(a.value)
	switch {
	case v == "":
		handler = "() => {}"
	case memberPath.MatchString(v) || fnExpr.MatchString(v):
		handler = g.expr(v, a.offset)
	default:
		g.pushLocals("$event")
		handler = "$event => (" + g.expr(v, a.offset) + ")"
		g.popLocals("$event")
	}

	var (
		sys, keys []string
		suffix    string
	)
	for _, m := range mods {
		switch {
		case m == "once" || m == "capture" || m == "passive":
			suffix += capitalize(m)
		case systemModifiers[m]:
			sys = append(sys, strconv.Quote(m))
		default:
			keys = append(keys, strconv.Quote(m))
		}
	}
	if len(sys) > 0 {
		handler = g.use("withModifiers") + "(" + handler + ", [" + strings.Join(sys, ", ") + "])"
	}
	if len(keys) > 0 && strings.HasPrefix(event, "key") {
		handler = g.use("withKeys") + "(" + handler + ", [" + strings.Join(keys, ", ") + "])"
	}

	var key string
	if strings.HasPrefix(event, "[") && strings.HasSuffix(event, "]") {
		key = "[" + g.use("toHandlerKey") + "(" + g.expr(event[1:len(event)-1], a.offset) + ")]"
	} else {
		key = objectKey("on" + capitalize(camelize(event)) + suffix)
	}
	return key + ": " + handler
}

// model renders v-model as a value prop and an update listener.
func (g *generator) model(n *node, a attr, component bool) []string {
	arg, mods := splitModifiers(strings.TrimPrefix(strings.TrimPrefix(a.name, "v-model"), ":"))
	target := g.expr(a.value, a.offset)

	if component {
		prop := "modelValue"
		if arg != "" {
			prop = camelize(arg)
		}
		return []string{
			objectKey(prop) + ": " + target,
			objectKey("onUpdate:"+prop) + ": $event => (" + target + " = $event)",
		}
	}

	value := "$event.target.value"
	if contains(mods, "trim") {
		value += ".trim()"
	}
	if contains(mods, "number") {
		value = "Number(" + value + ")"
	}
	if t, ok := n.attr("type"); ok && n.tag == "input" && t.value == "checkbox" {
		return []string{
			"checked: " + target,
			"onChange: $event => (" + target + " = $event.target.checked)",
		}
	}
	event := "onInput"
	if n.tag == "select" || contains(mods, "lazy") {
		event = "onChange"
	}
	return []string{
		"value: " + target,
		event + ": $event => (" + target + " = " + value + ")",
	}
}

func (g *generator) customDirective(a attr) string {
	name := strings.TrimPrefix(a.name, "v-")
	name, mods := splitModifiers(name)
	var arg string
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name, arg = name[:i], name[i+1:]
	}
	parts := []string{g.directiveRef(name)}
	if a.value != "" || arg != "" || len(mods) > 0 {
		val := "void 0"
		if a.value != "" {
			val = g.expr(a.value, a.offset)
		}
		parts = append(parts, val)
	}
	if arg != "" || len(mods) > 0 {
		parts = append(parts, strconv.Quote(arg))
	}
	if len(mods) > 0 {
		fields := make([]string, len(mods))
		for i, m := range mods {
			fields[i] = objectKey(m) + ": true"
		}
		parts = append(parts, "{ "+strings.Join(fields, ", ")+" }")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func splitModifiers(s string) (string, []string) {
	if strings.HasPrefix(s, "[") {
		if end := strings.IndexByte(s, ']'); end >= 0 {
			mods := strings.Split(s[end+1:], ".")
			return s[:end+1], compact(mods)
		}
	}
	parts := strings.Split(s, ".")
	return parts[0], compact(parts[1:])
}

func compact(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

var plainKey = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

func objectKey(k string) string {
	if plainKey.MatchString(k) {
		return k
	}
	return strconv.Quote(k)
}

func camelize(s string) string {
	var sb strings.Builder
	up := false
	for _, r := range s {
		if r == '-' {
			up = true
			continue
		}
		if up && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		up = false
		sb.WriteRune(r)
	}
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// header returns the import line and hoisted resolutions.
func (g *generator) header() []string {
	names := make([]string, 0, len(g.helpers))
	for h := range g.helpers {
		names = append(names, h+" as _"+h)
	}
	sort.Strings(names)
	var lines []string
	if len(names) > 0 {
		lines = append(lines, fmt.Sprintf("import { %s } from \"vue\"", strings.Join(names, ", ")), "")
	}
	lines = append(lines, "export function render(_ctx, _cache, $props, $setup, $data, $options) {")
	for _, c := range g.components {
		lines = append(lines, fmt.Sprintf("  const _component_%s = _resolveComponent(%s)", sanitize(c), strconv.Quote(c)))
	}
	for _, d := range g.directives {
		lines = append(lines, fmt.Sprintf("  const _directive_%s = _resolveDirective(%s)", sanitize(d), strconv.Quote(d)))
	}
	return lines
}

// sourceMap builds the render code's map against the template source.
func (g *generator) sourceMap(headerLines int) *sourcemap.SourceMap {
	lineStarts := []int{0}
	for i := 0; i < len(g.opts.Source); i++ {
		if g.opts.Source[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	origin := func(offset int) sourcemap.Position {
		l := sort.SearchInts(lineStarts, offset+1) - 1
		return sourcemap.Position{Line: l + 1, Column: offset - lineStarts[l]}
	}

	gen := sourcemap.NewGenerator(g.opts.Filename)
	if g.opts.InMap == nil {
		gen.SetSourceContent(g.opts.Filename, g.opts.Source)
	} else {
		gen.AddSource(g.opts.Filename)
	}
	for _, m := range g.marks {
		gen.AddMapping(sourcemap.Mapping{
			Generated: sourcemap.Position{Line: m.genLine + headerLines, Column: m.genCol},
			Original:  origin(m.offset),
			Source:    g.opts.Filename,
		})
	}
	return gen.Map()
}
