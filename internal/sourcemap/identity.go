package sourcemap

import "strings"

// LineIdentity maps every line of code at column 0 to the same line of
// source, and to the first non-blank column when the line is indented.
// content, when non-empty, is embedded as the source's text.
func LineIdentity(source, content, code string) *SourceMap {
	g := NewGenerator("")
	if content != "" {
		g.SetSourceContent(source, content)
	} else {
		g.AddSource(source)
	}
	for i, line := range strings.Split(code, "\n") {
		ln := i + 1
		g.AddMapping(Mapping{
			Generated: Position{Line: ln},
			Original:  Position{Line: ln},
			Source:    source,
		})
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent > 0 && indent < len(strings.TrimRight(line, "\r")) {
			g.AddMapping(Mapping{
				Generated: Position{Line: ln, Column: indent},
				Original:  Position{Line: ln, Column: indent},
				Source:    source,
			})
		}
	}
	return g.Map()
}
