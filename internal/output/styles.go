package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Styles below are built from these only.
var (
	colorCyan       = lipgloss.Color("14")
	colorGreen      = lipgloss.Color("82")
	colorYellow     = lipgloss.Color("220")
	colorBoldRed    = lipgloss.Color("204")
	colorGreenCheck = lipgloss.Color("10")
	colorDimGray    = lipgloss.Color("240")
	colorBlue       = lipgloss.Color("12")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns such as component paths.
	StyleNoun = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim styles structural chrome.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Component statuses.
const (
	StatusCompiled = "compiled"
	StatusCached   = "cached"
	StatusFailed   = "failed"
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusCompiled:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusCached:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minFileColumnWidth keeps status words aligned across lines.
const minFileColumnWidth = 40

// FormatFileLine renders a component path with a right-aligned status.
func FormatFileLine(file, status string) string {
	padding := minFileColumnWidth - len(file)
	if padding < 2 {
		padding = 2
	}
	return StyleDim.Render("f:") + StyleNoun.Render(file) + strings.Repeat(" ", padding) + statusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatSummary renders the closing line of a batch compile.
func FormatSummary(compiled, failed int) string {
	noun := "components"
	if compiled == 1 {
		noun = "component"
	}
	msg := fmt.Sprintf("%d %s compiled", compiled, noun)
	if failed > 0 {
		return StyleSummary.Render(msg+", ") + statusStyle(StatusFailed).Render(fmt.Sprintf("%d failed", failed))
	}
	return FormatCheckmark(StyleSummary.Render(msg))
}
