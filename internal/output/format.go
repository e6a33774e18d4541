package output

import "strings"

// ReportFormat selects how a compile report is written.
type ReportFormat string

const (
	// FormatText writes a table and a summary line.
	FormatText ReportFormat = "text"

	// FormatJSON writes the report as JSON.
	FormatJSON ReportFormat = "json"

	// FormatYAML writes the report as YAML.
	FormatYAML ReportFormat = "yaml"
)

// String returns the string representation of the format.
func (f ReportFormat) String() string {
	return string(f)
}

// IsValid checks if the format is known.
func (f ReportFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// ParseReportFormat parses s, accepting "yml" for YAML. Unknown values
// are returned as-is so callers can reject them with IsValid.
func ParseReportFormat(s string) ReportFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText
	case "yaml", "yml":
		return FormatYAML
	case "json":
		return FormatJSON
	default:
		return ReportFormat(s)
	}
}

// ValidReportFormats lists the accepted --report values.
func ValidReportFormats() []string {
	return []string{"text", "json", "yaml"}
}
