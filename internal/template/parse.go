package template

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

type nodeKind int

const (
	elementNode nodeKind = iota
	textNode
)

type attr struct {
	name   string
	value  string
	offset int
}

type node struct {
	kind     nodeKind
	tag      string
	attrs    []attr
	children []*node
	text     string
	offset   int
}

// attr returns the named attribute.
func (n *node) attr(name string) (attr, bool) {
	for _, a := range n.attrs {
		if a.name == name {
			return a, true
		}
	}
	return attr{}, false
}

// hasAny reports whether any of names is an attribute of n.
func (n *node) hasAny(names ...string) bool {
	for _, a := range n.attrs {
		for _, name := range names {
			if a.name == name {
				return true
			}
		}
	}
	return false
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// Error is a template diagnostic with its position in the template source.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

type parser struct {
	src  string
	errs []error
}

func (p *parser) errorAt(offset int, format string, args ...any) {
	line := 1 + strings.Count(p.src[:offset], "\n")
	col := offset - (strings.LastIndex(p.src[:offset], "\n") + 1)
	p.errs = append(p.errs, &Error{Message: fmt.Sprintf(format, args...), Line: line, Column: col})
}

// parse builds the element tree of src. Comments are dropped.
func (p *parser) parse() []*node {
	root := &node{kind: elementNode}
	stack := []*node{root}
	top := func() *node { return stack[len(stack)-1] }

	z := html.NewTokenizer(strings.NewReader(maskInterpolations(p.src)))
	pos := 0
	for {
		tt := z.Next()
		start := pos
		pos += len(z.Raw())
		raw := p.src[start:pos]

		switch tt {
		case html.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				p.errorAt(start, "%v", z.Err())
			}
			for _, open := range stack[1:] {
				p.errorAt(open.offset, "element <%s> is missing end tag", open.tag)
			}
			return root.children
		case html.TextToken:
			top().children = append(top().children, &node{kind: textNode, text: string(raw), offset: start})
		case html.StartTagToken, html.SelfClosingTagToken:
			el := &node{kind: elementNode, offset: start}
			el.tag, el.attrs = parseTag(string(raw), start)
			top().children = append(top().children, el)
			if tt == html.StartTagToken && !voidElements[strings.ToLower(el.tag)] {
				stack = append(stack, el)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			i := len(stack) - 1
			for i > 0 && !strings.EqualFold(stack[i].tag, string(name)) {
				i--
			}
			if i == 0 {
				if !voidElements[string(name)] {
					p.errorAt(start, "invalid end tag </%s>", name)
				}
				continue
			}
			for _, open := range stack[i+1:] {
				p.errorAt(open.offset, "element <%s> is missing end tag", open.tag)
			}
			stack = stack[:i]
		}
	}
}

// maskInterpolations blanks '<' inside {{ }} so the tokenizer reads
// expressions like {{ a<b }} as text. Offsets are preserved.
func maskInterpolations(src string) string {
	var b []byte
	for i := 0; ; {
		open := strings.Index(src[i:], "{{")
		if open < 0 {
			break
		}
		open += i + 2
		end := strings.Index(src[open:], "}}")
		if end < 0 {
			break
		}
		end += open
		for j := open; j < end; j++ {
			if src[j] == '<' {
				if b == nil {
					b = []byte(src)
				}
				b[j] = ' '
			}
		}
		i = end + 2
	}
	if b == nil {
		return src
	}
	return string(b)
}

// parseTag reads the tag name and attributes of a raw start tag, keeping the
// case of both. Offsets are absolute in the template source.
func parseTag(raw string, base int) (string, []attr) {
	i := 1
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	tag := raw[1:i]

	var attrs []attr
	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}
		start := i
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && !(raw[i] == '/' && i+1 < len(raw) && raw[i+1] == '>') {
			i++
		}
		a := attr{name: raw[start:i], offset: base + start}
		j := i
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isSpace(raw[j]) {
				j++
			}
			if j < len(raw) && (raw[j] == '"' || raw[j] == '\'') {
				q := raw[j]
				end := strings.IndexByte(raw[j+1:], q)
				if end < 0 {
					end = len(raw) - j - 1
				}
				a.value = raw[j+1 : j+1+end]
				i = j + end + 2
			} else {
				vs := j
				for j < len(raw) && !isSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				a.value = raw[vs:j]
				i = j
			}
		}
		if a.name != "" {
			attrs = append(attrs, a)
		}
	}
	return tag, attrs
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
