package style

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type cssToken struct {
	tt         css.TokenType
	text       string
	start, end int
}

func lexCSS(src string) ([]cssToken, error) {
	input := parse.NewInputString(src)
	l := css.NewLexer(input)
	var toks []cssToken
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			return toks, nil
		}
		end := input.Offset()
		toks = append(toks, cssToken{tt: tt, text: string(data), start: end - len(data), end: end})
	}
}

// blockKind is what the braces being scanned contain.
type blockKind int

const (
	rulesBlock blockKind = iota
	declBlock
	keyframesBlock
)

var groupingRules = map[string]bool{
	"@media": true, "@supports": true, "@layer": true, "@container": true, "@document": true,
}

type scopeEdit struct {
	start, end int
	text       string
}

// Scope adds the attribute selector [attr] to the last compound selector of
// every style rule in src. :deep(x) stops scoping before x, :global(x)
// leaves the selector unscoped and :slotted(x) scopes x with attr-s.
// Keyframe blocks are left alone. Only columns change.
func Scope(src, attr string) (string, error) {
	toks, err := lexCSS(src)
	if err != nil {
		return "", err
	}

	var (
		edits   []scopeEdit
		stack   = []blockKind{rulesBlock}
		prelude = 0
	)
	for i, t := range toks {
		switch t.tt {
		case css.SemicolonToken:
			prelude = i + 1
		case css.RightBraceToken:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			prelude = i + 1
		case css.LeftBraceToken:
			pre := trimTrivia(toks[prelude:i])
			kind := declBlock
			switch {
			case len(pre) > 0 && pre[0].tt == css.AtKeywordToken:
				name := strings.ToLower(pre[0].text)
				switch {
				case groupingRules[name]:
					kind = rulesBlock
				case strings.HasSuffix(name, "keyframes"):
					kind = keyframesBlock
				}
			case stack[len(stack)-1] == rulesBlock:
				edits = append(edits, scopeSelectorList(pre, attr)...)
			}
			stack = append(stack, kind)
			prelude = i + 1
		}
	}
	return applyScopeEdits(src, edits), nil
}

func trimTrivia(toks []cssToken) []cssToken {
	for len(toks) > 0 && isTrivia(toks[0]) {
		toks = toks[1:]
	}
	for len(toks) > 0 && isTrivia(toks[len(toks)-1]) {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func isTrivia(t cssToken) bool {
	return t.tt == css.WhitespaceToken || t.tt == css.CommentToken
}

func scopeSelectorList(toks []cssToken, attr string) []scopeEdit {
	var edits []scopeEdit
	depth, start := 0, 0
	for i, t := range toks {
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				edits = append(edits, scopeSelector(trimTrivia(toks[start:i]), attr)...)
				start = i + 1
			}
		}
	}
	return append(edits, scopeSelector(trimTrivia(toks[start:]), attr)...)
}

// scopeSelector rewrites one complex selector.
func scopeSelector(toks []cssToken, attr string) []scopeEdit {
	if len(toks) == 0 {
		return nil
	}
	scope := "[" + attr + "]"
	// insertAt is the end of the last non-pseudo token; inCompound is
	// false until the current compound has one.
	insertAt, inCompound := -1, false

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case isTrivia(t), t.tt == css.DelimToken && (t.text == ">" || t.text == "+" || t.text == "~"):
			inCompound = false
		case t.tt == css.ColonToken:
			j := i + 1
			if j < len(toks) && toks[j].tt == css.ColonToken {
				j++
			}
			if j >= len(toks) {
				return nil
			}
			if toks[j].tt != css.FunctionToken {
				i = j
				continue
			}
			close := closingParen(toks, j)
			open := scopeEdit{start: t.start, end: toks[j].end}
			drop := scopeEdit{start: toks[close].start, end: toks[close].end}
			switch strings.ToLower(toks[j].text) {
			case "deep(", "v-deep(":
				switch {
				case insertAt >= 0:
					if i == 0 || !isTrivia(toks[i-1]) {
						open.text = " "
					}
					return []scopeEdit{{start: insertAt, end: insertAt, text: scope}, open, drop}
				case i > 0:
					return []scopeEdit{{start: toks[0].start, end: toks[0].start, text: scope}, open, drop}
				default:
					open.text = scope + " "
					return []scopeEdit{open, drop}
				}
			case "global(", "v-global(":
				return []scopeEdit{open, drop}
			case "slotted(", "v-slotted(":
				drop.text = "[" + attr + "-s]"
				return []scopeEdit{open, drop}
			}
			i = close
		case t.tt == css.LeftBracketToken:
			close := i
			for close < len(toks)-1 && toks[close].tt != css.RightBracketToken {
				close++
			}
			insertAt, inCompound = toks[close].end, true
			i = close
		default:
			insertAt, inCompound = t.end, true
		}
	}

	if !inCompound {
		last := lastCompoundStart(toks)
		return []scopeEdit{{start: last, end: last, text: scope}}
	}
	return []scopeEdit{{start: insertAt, end: insertAt, text: scope}}
}

// lastCompoundStart returns where the last compound selector begins.
func lastCompoundStart(toks []cssToken) int {
	pos := toks[0].start
	for _, t := range toks {
		if isTrivia(t) || t.tt == css.DelimToken && (t.text == ">" || t.text == "+" || t.text == "~") {
			pos = t.end
		}
	}
	return pos
}

func closingParen(toks []cssToken, open int) int {
	depth := 0
	for k := open; k < len(toks); k++ {
		switch toks[k].tt {
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth == 0 {
				return k
			}
		}
	}
	return len(toks) - 1
}

func applyScopeEdits(src string, edits []scopeEdit) string {
	if len(edits) == 0 {
		return src
	}
	var b bytes.Buffer
	pos := 0
	for _, e := range sortEdits(edits) {
		if e.start < pos {
			continue
		}
		b.WriteString(src[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.WriteString(src[pos:])
	return b.String()
}

func sortEdits(edits []scopeEdit) []scopeEdit {
	out := append([]scopeEdit(nil), edits...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].start < out[j-1].start; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
