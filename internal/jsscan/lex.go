// Package jsscan implements token-level rewrites and analyses of JavaScript
// modules. It never builds a syntax tree: every operation walks the token
// stream of github.com/tdewolff/parse/v2/js and edits the source in place,
// so line structure is preserved unless an operation says otherwise.
package jsscan

import (
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Kind classifies a token.
type Kind int

const (
	Whitespace Kind = iota
	Newline
	Comment
	Ident
	Punct
	String
	Template
	Number
	Regexp
)

// Token is one lexeme with its byte range in the source.
type Token struct {
	Kind  Kind
	Text  string
	Start int
	End   int
}

// Trivia reports whether the token carries no meaning for the grammar.
func (t Token) Trivia() bool {
	return t.Kind == Whitespace || t.Kind == Newline || t.Kind == Comment
}

// Is reports whether t is the punctuator or word s.
func (t Token) Is(s string) bool {
	return (t.Kind == Punct || t.Kind == Ident) && t.Text == s
}

// Tokenize lexes src. Slashes are read as regular expressions where an
// operand is expected.
func Tokenize(src string) ([]Token, error) {
	input := parse.NewInputString(src)
	l := js.NewLexer(input)

	var toks []Token
	prev := -1
	for {
		tt, data := l.Next()
		if tt == js.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return toks, err
			}
			return toks, nil
		}
		if (tt == js.DivToken || tt == js.DivEqToken) && expectsOperand(toks, prev) {
			tt, data = l.RegExp()
			if tt == js.ErrorToken {
				return toks, l.Err()
			}
		}
		end := input.Offset()
		tok := Token{Kind: classify(tt, data), Text: string(data), Start: end - len(data), End: end}
		toks = append(toks, tok)
		if !tok.Trivia() {
			prev = len(toks) - 1
		}
	}
}

// significant drops trivia. Newlines are recorded on the following token.
func significant(toks []Token) ([]Token, []bool) {
	out := make([]Token, 0, len(toks))
	var nl []bool
	sawNewline := false
	for _, t := range toks {
		switch {
		case t.Kind == Newline, t.Kind == Comment && strings.ContainsAny(t.Text, "\n\r"):
			sawNewline = true
		case t.Trivia():
		default:
			out = append(out, t)
			nl = append(nl, sawNewline)
			sawNewline = false
		}
	}
	return out, nl
}

var operandKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

func expectsOperand(toks []Token, prev int) bool {
	if prev < 0 {
		return true
	}
	t := toks[prev]
	switch t.Kind {
	case Ident:
		return operandKeywords[t.Text]
	case Template:
		return strings.HasSuffix(t.Text, "${")
	case Punct:
		switch t.Text {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	}
	return false
}

func classify(tt js.TokenType, data []byte) Kind {
	switch tt {
	case js.WhitespaceToken:
		return Whitespace
	case js.LineTerminatorToken:
		return Newline
	case js.StringToken:
		return String
	case js.RegExpToken:
		return Regexp
	case js.TemplateToken, js.TemplateStartToken, js.TemplateMiddleToken, js.TemplateEndToken:
		return Template
	}
	if len(data) == 0 {
		return Punct
	}
	if len(data) >= 2 && data[0] == '/' && (data[1] == '/' || data[1] == '*') {
		return Comment
	}
	if len(data) >= 2 && data[0] == '<' && data[1] == '!' || len(data) >= 3 && string(data[:3]) == "-->" {
		return Comment
	}
	c := data[0]
	switch {
	case c >= '0' && c <= '9', c == '.' && len(data) > 1 && data[1] >= '0' && data[1] <= '9':
		return Number
	case c == '_' || c == '$' || c == '#' || c >= 0x80 || (c|0x20) >= 'a' && (c|0x20) <= 'z':
		return Ident
	}
	return Punct
}

// edit replaces src[start:end] with text.
type edit struct {
	start, end int
	text       string
}

func applyEdits(src string, edits []edit) string {
	if len(edits) == 0 {
		return src
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })
	var sb strings.Builder
	pos := 0
	for _, e := range edits {
		if e.start < pos {
			continue
		}
		sb.WriteString(src[pos:e.start])
		sb.WriteString(e.text)
		pos = e.end
	}
	sb.WriteString(src[pos:])
	return sb.String()
}

// unquote strips the quotes of a string literal token. Escapes are kept.
func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

// matching returns the index of the token closing the bracket at open.
func matching(sig []Token, open int) int {
	depth := 0
	for i := open; i < len(sig); i++ {
		if sig[i].Kind != Punct {
			continue
		}
		switch sig[i].Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(sig) - 1
}

// blank replaces every byte of s except line breaks with a space.
func blank(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c != '\n' && c != '\r' {
			b[i] = ' '
		}
	}
	return string(b)
}
