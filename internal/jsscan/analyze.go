package jsscan

import (
	"strings"

	"github.com/sfckit/sfcc/internal/sfc"
)

// entry is one property of an object literal.
type entry struct {
	key string
	// value is the index of the first value token, or of "(" for methods.
	value  int
	method bool
	// end is the index of the "," or "}" after the property.
	end int
}

// objectEntries lists the properties of the object literal opening at
// sig[open]. Spread and computed properties are skipped.
func objectEntries(sig []Token, open int) []entry {
	close := matching(sig, open)
	var out []entry
	i := open + 1
	for i < close {
		t := sig[i]
		var key string
		switch {
		case t.Is("..."), t.Is("["):
			i = skipValue(sig, i, close)
			i++
			continue
		case (t.Is("async") || t.Is("get") || t.Is("set") || t.Is("*")) && i+1 < close &&
			(sig[i+1].Kind == Ident || sig[i+1].Kind == String || sig[i+1].Is("*")):
			i++
			continue
		case t.Kind == Ident, t.Kind == Number:
			key = t.Text
		case t.Kind == String:
			key = unquote(t.Text)
		default:
			i++
			continue
		}
		e := entry{key: key, value: -1}
		n := sig[i+1]
		switch {
		case n.Is(":"):
			e.value = i + 2
		case n.Is("("):
			e.value = i + 1
			e.method = true
		}
		e.end = skipValue(sig, i+1, close)
		out = append(out, e)
		i = e.end + 1
	}
	return out
}

// skipValue returns the index of the next "," at the current depth, or
// limit.
func skipValue(sig []Token, i, limit int) int {
	depth := 0
	for ; i < limit; i++ {
		t := sig[i]
		if t.Kind != Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ",", ";":
			if depth == 0 {
				return i
			}
		}
	}
	return limit
}

// arrayStrings returns the string elements of the array opening at sig[open].
func arrayStrings(sig []Token, open int) []string {
	close := matching(sig, open)
	var out []string
	for i := open + 1; i < close; i++ {
		if sig[i].Kind == String {
			out = append(out, unquote(sig[i].Text))
		}
	}
	return out
}

// keysOf lists the names declared by an array of strings or an object.
func keysOf(sig []Token, at int) []string {
	if at < 0 || at >= len(sig) {
		return nil
	}
	switch {
	case sig[at].Is("["):
		return arrayStrings(sig, at)
	case sig[at].Is("{"):
		var keys []string
		for _, e := range objectEntries(sig, at) {
			keys = append(keys, e.key)
		}
		return keys
	}
	return nil
}

// returnedObject finds the object a function value returns: the first
// `return {` in its body, or the `({` of an arrow expression body.
func returnedObject(sig []Token, from, limit int) int {
	for i := from; i+1 < limit; i++ {
		if sig[i].Is("return") && sig[i+1].Is("{") {
			return i + 1
		}
		if sig[i].Is("=>") && i+2 < limit && sig[i+1].Is("(") && sig[i+2].Is("{") {
			return i + 2
		}
	}
	return -1
}

// defaultObject locates the options object of the default export, looking
// through a defineComponent call.
func defaultObject(sig []Token) int {
	for i := 0; i+2 < len(sig); i++ {
		if !(sig[i].Is("export") && sig[i+1].Is("default")) {
			continue
		}
		j := i + 2
		if sig[j].Kind == Ident && j+2 < len(sig) && sig[j+1].Is("(") {
			j += 2
		}
		if sig[j].Is("{") {
			return j
		}
		return -1
	}
	return -1
}

// AnalyzeOptions reports the bindings an options object default export
// exposes to its template: props, data() keys, setup() return keys, computed,
// methods and inject.
func AnalyzeOptions(code string) (sfc.BindingMetadata, error) {
	toks, err := Tokenize(code)
	if err != nil {
		return nil, err
	}
	sig, _ := significant(toks)
	bindings := sfc.BindingMetadata{}

	obj := defaultObject(sig)
	if obj < 0 {
		return bindings, nil
	}
	for _, e := range objectEntries(sig, obj) {
		var (
			names []string
			kind  sfc.BindingType
		)
		switch e.key {
		case "props":
			names, kind = keysOf(sig, e.value), sfc.BindingProps
		case "inject":
			names, kind = keysOf(sig, e.value), sfc.BindingOptions
		case "computed", "methods":
			names, kind = keysOf(sig, e.value), sfc.BindingOptions
		case "data":
			names, kind = keysOf(sig, returnedObject(sig, e.value, e.end)), sfc.BindingData
		case "setup":
			names, kind = keysOf(sig, returnedObject(sig, e.value, e.end)), sfc.BindingSetupMaybeRef
		}
		for _, n := range names {
			if _, ok := bindings[n]; !ok {
				bindings[n] = kind
			}
		}
	}
	return bindings, nil
}

// Span is a byte range of the analyzed code.
type Span struct {
	Start int
	End   int
}

// Import is one top-level import statement.
type Import struct {
	Span
	// Names are the local bindings the statement declares; type-only
	// imports declare none.
	Names []string
}

// MacroCall is a compiler macro call such as defineProps(...).
type MacroCall struct {
	Span
	// Args is the source text between the call's parentheses.
	Args string
	// TypeKeys are the property names of an inline type argument.
	TypeKeys []string
}

// Binding is a top-level declaration of a setup script.
type Binding struct {
	Name string
	Type sfc.BindingType
}

// Setup is the top-level structure of a setup script.
type Setup struct {
	Imports  []Import
	Bindings []Binding
	Props    *MacroCall
	Emits    *MacroCall
	// PropsLocal is the variable a defineProps result is assigned to.
	PropsLocal string
}

// AnalyzeSetup scans the top level of a setup script.
func AnalyzeSetup(code string) (*Setup, error) {
	toks, err := Tokenize(code)
	if err != nil {
		return nil, err
	}
	sig, nl := significant(toks)
	s := &Setup{}

	for i := 0; i < len(sig); {
		t := sig[i]
		end := statementEnd(sig, nl, i)
		switch {
		case t.Is("import") && i+1 < len(sig) && !sig[i+1].Is("(") && !sig[i+1].Is("."):
			s.Imports = append(s.Imports, Import{
				Span:  Span{Start: t.Start, End: sig[end].End},
				Names: importNames(sig[i+1 : end+1]),
			})
		case t.Is("const"), t.Is("let"), t.Is("var"):
			s.declarations(sig, i, end, code)
		case t.Is("function") || t.Is("class"):
			if i+1 <= end && sig[i+1].Kind == Ident {
				s.Bindings = append(s.Bindings, Binding{Name: sig[i+1].Text, Type: sfc.BindingSetupConst})
			}
		case t.Is("async") && i+2 <= end && sig[i+1].Is("function") && sig[i+2].Kind == Ident:
			s.Bindings = append(s.Bindings, Binding{Name: sig[i+2].Text, Type: sfc.BindingSetupConst})
		default:
			s.macroAt(sig, i, code)
		}
		i = end + 1
	}
	return s, nil
}

// declarations records the declarators of a const/let/var statement.
func (s *Setup) declarations(sig []Token, i, end int, code string) {
	isConst := sig[i].Is("const")
	for j := i + 1; j <= end; {
		var names []string
		switch {
		case sig[j].Kind == Ident:
			names = []string{sig[j].Text}
		case sig[j].Is("{"), sig[j].Is("["):
			close := matching(sig, j)
			names = patternNames(sig[j : close+1])
			j = close
		}
		stop := skipValue(sig, j+1, end+1)
		init := j + 1
		for init <= end && !sig[init].Is("=") && init < stop {
			init++
		}
		kind := declKind(sig, init+1, stop, isConst)
		if init+1 < stop && s.macroAt(sig, init+1, code) && sig[init+1].Is("defineProps") && len(names) == 1 {
			s.PropsLocal = names[0]
			kind = sfc.BindingSetupConst
		}
		for _, n := range names {
			s.Bindings = append(s.Bindings, Binding{Name: n, Type: kind})
		}
		j = stop + 1
	}
}

func declKind(sig []Token, at, stop int, isConst bool) sfc.BindingType {
	if !isConst {
		return sfc.BindingSetupLet
	}
	if at >= stop {
		return sfc.BindingSetupMaybeRef
	}
	t := sig[at]
	switch {
	case t.Kind == Ident && at+1 < stop && sig[at+1].Is("("):
		switch t.Text {
		case "ref", "shallowRef", "computed", "toRef", "customRef":
			return sfc.BindingSetupRef
		case "reactive", "shallowReactive", "readonly":
			return sfc.BindingSetupConst
		}
	case t.Kind == Number, t.Kind == String, t.Kind == Template && at+1 == stop:
		return sfc.BindingSetupConst
	case t.Is("function"), t.Is("async"), t.Is("class"):
		return sfc.BindingSetupConst
	case t.Is("("):
		if c := matching(sig, at); c+1 < stop && sig[c+1].Is("=>") {
			return sfc.BindingSetupConst
		}
	case t.Kind == Ident && at+1 < stop && sig[at+1].Is("=>"):
		return sfc.BindingSetupConst
	}
	return sfc.BindingSetupMaybeRef
}

// macroAt records a defineProps or defineEmits call starting at sig[i].
func (s *Setup) macroAt(sig []Token, i int, code string) bool {
	t := sig[i]
	if !(t.Is("defineProps") || t.Is("defineEmits")) || i+1 >= len(sig) {
		return false
	}
	call := &MacroCall{}
	j := i + 1
	if sig[j].Is("<") {
		depth := 0
		k := j
		for ; k < len(sig); k++ {
			switch {
			case sig[k].Is("<"):
				depth++
			case sig[k].Is(">"):
				depth--
			case sig[k].Is(">>"):
				depth -= 2
			}
			if depth <= 0 {
				break
			}
		}
		if j+1 < k && sig[j+1].Is("{") {
			for _, e := range objectEntries(sig, j+1) {
				call.TypeKeys = append(call.TypeKeys, strings.TrimSuffix(e.key, "?"))
			}
		}
		j = k + 1
	}
	if j >= len(sig) || !sig[j].Is("(") {
		return false
	}
	close := matching(sig, j)
	call.Span = Span{Start: t.Start, End: sig[close].End}
	call.Args = strings.TrimSpace(code[sig[j].End:sig[close].Start])
	if t.Is("defineProps") {
		s.Props = call
	} else {
		s.Emits = call
	}
	return true
}

// statementEnd returns the index of the last token of the statement starting
// at sig[i]: a top-level ";" or the token before a line break that cannot
// continue the statement.
func statementEnd(sig []Token, nl []bool, i int) int {
	depth := 0
	for j := i; j < len(sig); j++ {
		t := sig[j]
		if t.Kind == Punct {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ";":
				if depth == 0 {
					return j
				}
			}
		}
		if depth == 0 && j+1 < len(sig) && nl[j+1] && !continues(sig[j], sig[j+1]) {
			return j
		}
	}
	return len(sig) - 1
}

var continuationOps = map[string]bool{
	".": true, "?.": true, "(": true, "[": true, ",": true, "=": true, "=>": true,
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true, "&&": true,
	"||": true, "??": true, "?": true, ":": true, "==": true, "===": true, "!=": true,
	"!==": true, "<": true, ">": true, "<=": true, ">=": true, "&": true, "|": true,
	"^": true, "+=": true, "-=": true, "*=": true, "/=": true, "<<": true, ">>": true,
	"{": true,
}

// continues reports whether a line break between prev and next does not end
// the statement.
func continues(prev, next Token) bool {
	if prev.Kind == Punct && continuationOps[prev.Text] && prev.Text != "++" && prev.Text != "--" {
		return true
	}
	if prev.Kind == Ident && continuationWords[prev.Text] {
		return true
	}
	if next.Kind == Punct && next.Text != "{" && next.Text != "[" && next.Text != "(" &&
		next.Text != "++" && next.Text != "--" && next.Text != "!" && next.Text != "~" {
		return true
	}
	return next.Is("from") || next.Is("as") || next.Kind == Template && strings.HasPrefix(next.Text, "}")
}

var continuationWords = map[string]bool{
	"from": true, "as": true, "import": true, "export": true, "const": true,
	"let": true, "var": true, "new": true, "type": true,
}

func importNames(sig []Token) []string {
	if len(sig) > 0 && sig[0].Is("type") && len(sig) > 1 && !sig[1].Is(",") && !sig[1].Is("from") {
		return nil
	}
	var names []string
	for i := 0; i < len(sig); i++ {
		t := sig[i]
		switch {
		case t.Is("from"):
			return names
		case t.Is("{"):
			close := matching(sig, i)
			for j := i + 1; j < close; j++ {
				if sig[j].Is("type") && j+1 < close && sig[j+1].Kind == Ident && !sig[j+1].Is("as") {
					j = skipValue(sig, j, close)
					continue
				}
				if sig[j].Kind != Ident {
					continue
				}
				if j+2 < close+1 && sig[j+1].Is("as") {
					names = append(names, sig[j+2].Text)
					j += 2
					continue
				}
				names = append(names, sig[j].Text)
			}
			i = close
		case t.Is("*") && i+2 < len(sig) && sig[i+1].Is("as"):
			names = append(names, sig[i+2].Text)
			i += 2
		case t.Kind == Ident:
			names = append(names, t.Text)
		}
	}
	return names
}

// patternNames lists identifiers bound by a destructuring pattern.
func patternNames(sig []Token) []string {
	var names []string
	for i := 1; i < len(sig)-1; i++ {
		t := sig[i]
		if t.Kind != Ident {
			continue
		}
		next := sig[i+1]
		if next.Is(":") {
			continue
		}
		if i > 0 && sig[i-1].Is("=") {
			continue
		}
		names = append(names, t.Text)
	}
	return names
}

// DeclaredKeys lists the names declared by an array-of-strings or object
// literal expression, such as a props option.
func DeclaredKeys(expr string) ([]string, error) {
	toks, err := Tokenize(expr)
	if err != nil {
		return nil, err
	}
	sig, _ := significant(toks)
	return keysOf(sig, 0), nil
}
