package jsscan

// Globals are names an expression may reference without a prefix.
var Globals = map[string]bool{
	"Infinity": true, "undefined": true, "NaN": true, "isFinite": true, "isNaN": true,
	"parseFloat": true, "parseInt": true, "decodeURI": true, "decodeURIComponent": true,
	"encodeURI": true, "encodeURIComponent": true, "Math": true, "Number": true,
	"Date": true, "Array": true, "Object": true, "Boolean": true, "String": true,
	"RegExp": true, "Map": true, "Set": true, "JSON": true, "Intl": true, "BigInt": true,
	"console": true, "Error": true, "Symbol": true, "Promise": true,
}

var reserved = map[string]bool{
	"true": true, "false": true, "null": true, "this": true, "typeof": true,
	"instanceof": true, "in": true, "of": true, "new": true, "void": true,
	"delete": true, "function": true, "return": true, "if": true, "else": true,
	"var": true, "let": true, "const": true, "await": true, "async": true,
	"class": true, "super": true, "import": true, "yield": true,
}

// PrefixIdentifiers rewrites every free identifier of expr with prefix. An
// identifier is free when it is not a property access, an object key, a
// global, a keyword or one of locals. Parameters of arrow functions inside
// expr are treated as locals. Shorthand object properties are expanded.
func PrefixIdentifiers(expr string, locals map[string]bool, prefix func(name string) string) (string, error) {
	toks, err := Tokenize(expr)
	if err != nil {
		return "", err
	}
	sig, _ := significant(toks)

	scoped := make(map[string]bool, len(locals))
	for k, v := range locals {
		scoped[k] = v
	}
	collectArrowParams(sig, scoped)

	var (
		edits []edit
		stack []string
	)
	for i, t := range sig {
		if t.Kind == Punct {
			switch t.Text {
			case "(", "[", "{":
				stack = append(stack, t.Text)
			case ")", "]", "}":
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
			continue
		}
		if t.Kind != Ident || t.Text[0] == '#' {
			continue
		}
		name := t.Text
		if reserved[name] || Globals[name] || scoped[name] {
			continue
		}
		var prev, next Token
		if i > 0 {
			prev = sig[i-1]
		}
		if i+1 < len(sig) {
			next = sig[i+1]
		}
		if prev.Is(".") || prev.Is("?.") {
			continue
		}
		inObject := len(stack) > 0 && stack[len(stack)-1] == "{"
		keyPos := inObject && (prev.Is("{") || prev.Is(","))
		if keyPos && (next.Is(":") || next.Is("(")) {
			continue
		}
		if keyPos && (next.Is(",") || next.Is("}")) {
			edits = append(edits, edit{start: t.Start, end: t.End, text: name + ": " + prefix(name)})
			continue
		}
		edits = append(edits, edit{start: t.Start, end: t.End, text: prefix(name)})
	}
	return applyEdits(expr, edits), nil
}

// collectArrowParams adds the parameter names of arrow functions to locals.
func collectArrowParams(sig []Token, locals map[string]bool) {
	for i, t := range sig {
		if !t.Is("=>") || i == 0 {
			continue
		}
		prev := sig[i-1]
		if prev.Kind == Ident {
			locals[prev.Text] = true
			continue
		}
		if !prev.Is(")") {
			continue
		}
		depth := 0
		for j := i - 1; j >= 0; j-- {
			switch {
			case sig[j].Is(")"), sig[j].Is("]"), sig[j].Is("}"):
				depth++
			case sig[j].Is("("), sig[j].Is("["), sig[j].Is("{"):
				depth--
			case sig[j].Kind == Ident && depth >= 1:
				if j+1 < len(sig) && sig[j+1].Is(":") && depth > 1 {
					continue
				}
				if j > 0 && sig[j-1].Is("=") {
					continue
				}
				locals[sig[j].Text] = true
			}
			if depth == 0 {
				break
			}
		}
	}
}
