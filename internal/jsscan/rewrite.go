package jsscan

import "fmt"

// RewriteDefault turns the module's top-level `export default` into a
// declaration `const name =`. A module without a default export gets
// `const name = {}` appended. Lines are preserved.
func RewriteDefault(code, name string) (string, error) {
	toks, err := Tokenize(code)
	if err != nil {
		return "", err
	}
	sig, _ := significant(toks)

	depth := 0
	for i := 0; i < len(sig); i++ {
		t := sig[i]
		switch {
		case t.Kind == Punct && (t.Text == "{" || t.Text == "(" || t.Text == "["):
			depth++
		case t.Kind == Punct && (t.Text == "}" || t.Text == ")" || t.Text == "]"):
			depth--
		case depth == 0 && t.Is("export") && i+1 < len(sig) && sig[i+1].Is("default"):
			repl := edit{start: t.Start, end: sig[i+1].End, text: fmt.Sprintf("const %s =", name)}
			return applyEdits(code, []edit{repl}), nil
		case depth == 0 && t.Is("export") && i+1 < len(sig) && sig[i+1].Is("{"):
			if out, ok := rewriteDefaultSpecifier(code, sig, i+1, name); ok {
				return out, nil
			}
		}
	}
	return code + "\nconst " + name + " = {}", nil
}

// rewriteDefaultSpecifier handles `export { local as default }` by dropping
// the specifier and declaring name after the module body.
func rewriteDefaultSpecifier(code string, sig []Token, open int, name string) (string, bool) {
	close := matching(sig, open)
	for j := open + 1; j+2 <= close; j++ {
		if !(sig[j].Kind == Ident && sig[j+1].Is("as") && sig[j+2].Is("default")) {
			continue
		}
		start, end := sig[j].Start, sig[j+2].End
		switch {
		case sig[j+3].Is(","):
			end = sig[j+3].End
		case sig[j-1].Is(","):
			start = sig[j-1].Start
		}
		out := applyEdits(code, []edit{{start: start, end: end}})
		return out + "\nconst " + name + " = " + sig[j].Text, true
	}
	return "", false
}

// RewriteImports passes every module specifier in static imports, re-exports
// and dynamic imports through resolve. Quotes are kept.
func RewriteImports(code string, resolve func(string) string) (string, error) {
	toks, err := Tokenize(code)
	if err != nil {
		return "", err
	}
	sig, _ := significant(toks)

	var edits []edit
	rewrite := func(t Token) {
		path := unquote(t.Text)
		if to := resolve(path); to != path {
			q := t.Text[:1]
			edits = append(edits, edit{start: t.Start, end: t.End, text: q + to + q})
		}
	}

	inClause := false
	for i := 0; i < len(sig); i++ {
		t := sig[i]
		next := func(k int) Token {
			if i+k < len(sig) {
				return sig[i+k]
			}
			return Token{}
		}
		switch {
		case t.Is("import") && next(1).Kind == String:
			rewrite(next(1))
			i++
		case t.Is("import") && next(1).Is("(") && next(2).Kind == String:
			rewrite(next(2))
			i += 2
		case t.Is("import") && (next(1).Is(".") || next(1).Is("(")):
		case t.Is("import"), t.Is("export"):
			if i > 0 && sig[i-1].Is(".") {
				continue
			}
			inClause = true
		case inClause && t.Is("from") && next(1).Kind == String:
			rewrite(next(1))
			inClause = false
			i++
		case t.Is(";"):
			inClause = false
		}
	}
	return applyEdits(code, edits), nil
}
