package sfc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/sfckit/sfcc/internal/sourcemap"
)

// SyntaxError is a structural problem found while splitting a document.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parse splits source into its top-level sections. Content of every section
// is kept verbatim; only the template is tokenized, to find its matching end
// tag. Empty script, style and custom sections without a src are dropped.
func Parse(source, filename string) (*Descriptor, []error) {
	p := &parser{
		source: source,
		d:      &Descriptor{Filename: filename, Source: source},
	}
	p.run()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return p.d, nil
}

// DefaultParser is the Parser backed by Parse.
var DefaultParser Parser = ParserFunc(Parse)

type parser struct {
	source string
	d      *Descriptor
	errs   []error
}

func (p *parser) run() {
	offset := 0
	for offset < len(p.source) {
		next, done := p.scanTopLevel(offset)
		if done {
			return
		}
		offset = next
	}
}

// scanTopLevel tokenizes from offset until it has consumed one section and
// returns the offset after its end tag. Non-section tokens are skipped.
func (p *parser) scanTopLevel(offset int) (int, bool) {
	z := html.NewTokenizer(strings.NewReader(p.source[offset:]))
	pos := offset
	for {
		tt := z.Next()
		raw := z.Raw()
		tokStart := pos
		pos += len(raw)

		switch tt {
		case html.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				p.errorAt(tokStart, z.Err().Error())
			}
			return pos, true
		case html.StartTagToken, html.SelfClosingTagToken:
			name := rawTagName(raw)
			attrs := readAttrs(z)
			if tt == html.SelfClosingTagToken {
				p.addBlock(name, attrs, pos, pos)
				return pos, false
			}
			end, after, ok := p.findEnd(name, pos)
			if !ok {
				p.errorAt(tokStart, fmt.Sprintf("element <%s> is missing end tag", name))
				return len(p.source), true
			}
			p.addBlock(name, attrs, pos, end)
			return after, false
		}
	}
}

// findEnd locates the end tag closing the section that starts at from. It
// returns the start of the end tag and the offset just after it.
func (p *parser) findEnd(name string, from int) (int, int, bool) {
	if strings.EqualFold(name, "template") {
		return p.findTemplateEnd(from)
	}
	start, after := indexCloseTag(p.source, from, name)
	return start, after, start >= 0
}

func (p *parser) findTemplateEnd(from int) (int, int, bool) {
	z := html.NewTokenizer(strings.NewReader(p.source[from:]))
	pos := from
	depth := 0
	for {
		tt := z.Next()
		raw := z.Raw()
		tokStart := pos
		pos += len(raw)
		switch tt {
		case html.ErrorToken:
			return -1, -1, false
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "template" {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "template" {
				if depth == 0 {
					return tokStart, pos, true
				}
				depth--
			}
		}
	}
}

func (p *parser) addBlock(name string, attrs map[string]string, start, end int) {
	lower := strings.ToLower(name)
	content := p.source[start:end]
	b := Block{
		Type:    lower,
		Content: content,
		Attrs:   attrs,
		Lang:    attrs["lang"],
		Src:     attrs["src"],
		Loc: Location{
			Start: start,
			End:   end,
			Line:  1 + strings.Count(p.source[:start], "\n"),
		},
	}
	if lower != "template" && strings.TrimSpace(content) == "" && b.Src == "" {
		return
	}
	if b.Src == "" && content != "" && (lower == "template" || lower == "script" || lower == "style") {
		b.Map = p.blockMap(&b)
	}

	switch lower {
	case "template":
		if p.d.Template != nil {
			p.errorAt(start, "a component can contain only one <template> element")
			return
		}
		p.d.Template = &b
	case "script":
		_, setup := attrs["setup"]
		sb := &ScriptBlock{Block: b, Setup: setup}
		if setup {
			if p.d.ScriptSetup != nil {
				p.errorAt(start, "a component can contain only one <script setup> element")
				return
			}
			p.d.ScriptSetup = sb
			return
		}
		if p.d.Script != nil {
			p.errorAt(start, "a component can contain only one <script> element")
			return
		}
		p.d.Script = sb
	case "style":
		st := &StyleBlock{Block: b}
		_, st.Scoped = attrs["scoped"]
		if mod, ok := attrs["module"]; ok {
			st.Module = mod
			if mod == "" {
				st.Module = "$style"
			}
		}
		p.d.Styles = append(p.d.Styles, st)
	default:
		p.d.CustomBlocks = append(p.d.CustomBlocks, &b)
	}
}

// blockMap maps block content to the document. The map is built relative to
// the block and re-anchored at the block's first line.
func (p *parser) blockMap(b *Block) *sourcemap.SourceMap {
	relative := sourcemap.LineIdentity(p.d.Filename, p.source, b.Content)
	if col := b.Loc.Start - (strings.LastIndex(p.source[:b.Loc.Start], "\n") + 1); col > 0 {
		relative = offsetFirstLine(relative, p.d.Filename, p.source, col)
	}
	shifted, err := sourcemap.Shift(relative, b.Loc.Line-1, nil)
	if err != nil {
		return nil
	}
	return shifted
}

// offsetFirstLine moves original columns on the first line past the start
// tag that shares the line with the content.
func offsetFirstLine(m *sourcemap.SourceMap, source, content string, col int) *sourcemap.SourceMap {
	g := sourcemap.NewGenerator(m.File)
	g.SetSourceContent(source, content)
	err := m.EachMapping(func(mp sourcemap.Mapping) {
		if mp.HasOriginal() && mp.Original.Line == 1 {
			mp.Original.Column += col
		}
		g.AddMapping(mp)
	})
	if err != nil {
		return m
	}
	return g.Map()
}

func (p *parser) errorAt(offset int, msg string) {
	line := 1 + strings.Count(p.source[:offset], "\n")
	col := offset - (strings.LastIndex(p.source[:offset], "\n") + 1)
	p.errs = append(p.errs, &SyntaxError{Message: msg, Line: line, Column: col})
}

// rawTagName extracts the tag name from the raw start tag, keeping its case.
func rawTagName(raw []byte) string {
	i := 1
	for i < len(raw) {
		switch raw[i] {
		case ' ', '\t', '\n', '\r', '\f', '/', '>':
			return string(raw[1:i])
		}
		i++
	}
	return string(raw[1:])
}

func readAttrs(z *html.Tokenizer) map[string]string {
	attrs := make(map[string]string)
	_, more := z.TagName()
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return attrs
}

// indexCloseTag finds "</name" followed by optional whitespace and ">",
// matching name case-insensitively.
func indexCloseTag(src string, from int, name string) (int, int) {
	for i := from; i+2+len(name) <= len(src); i++ {
		if src[i] != '<' || src[i+1] != '/' {
			continue
		}
		if !strings.EqualFold(src[i+2:i+2+len(name)], name) {
			continue
		}
		j := i + 2 + len(name)
		for j < len(src) && strings.IndexByte(" \t\r\n\f", src[j]) >= 0 {
			j++
		}
		if j < len(src) && src[j] == '>' {
			return i, j + 1
		}
	}
	return -1, -1
}
