package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sigs.k8s.io/yaml"
)

// FileReport summarizes one compiled component.
type FileReport struct {
	File        string   `json:"file"`
	ID          string   `json:"id,omitempty"`
	Status      string   `json:"status"`
	Outputs     []string `json:"outputs,omitempty"`
	ExternalJS  []string `json:"externalJs,omitempty"`
	ExternalCSS []string `json:"externalCss,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	DurationMS  int64    `json:"durationMs"`
}

// Report summarizes a batch compile.
type Report struct {
	Files    []FileReport `json:"files"`
	Compiled int          `json:"compiled"`
	Failed   int          `json:"failed"`
}

// Add appends f and updates the totals.
func (r *Report) Add(f FileReport) {
	r.Files = append(r.Files, f)
	if f.Status == StatusFailed {
		r.Failed++
	} else {
		r.Compiled++
	}
}

// WriteReport renders r to w in the given format.
func WriteReport(w io.Writer, format ReportFormat, r *Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatText:
		return writeTextReport(w, r)
	default:
		return fmt.Errorf("unsupported report format %q (valid: %s)", format, strings.Join(ValidReportFormats(), ", "))
	}
}

func writeTextReport(w io.Writer, r *Report) error {
	var b strings.Builder
	if len(r.Files) > 0 {
		t := NewTable("FILE", "ID", "OUTPUTS", "STATUS")
		for _, f := range r.Files {
			t.Row(f.File, f.ID, fmt.Sprint(len(f.Outputs)), f.Status)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}
	for _, f := range r.Files {
		if len(f.Errors) == 0 {
			continue
		}
		b.WriteString(FormatFileLine(f.File, f.Status))
		b.WriteString("\n")
		for _, e := range f.Errors {
			b.WriteString("  ")
			b.WriteString(strings.ReplaceAll(e, "\n", "\n  "))
			b.WriteString("\n")
		}
	}
	b.WriteString(FormatSummary(r.Compiled, r.Failed))
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
