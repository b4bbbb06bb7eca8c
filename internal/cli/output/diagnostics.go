package output

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
)

// FileDiagnostic is a diagnostic located in a file.
type FileDiagnostic struct {
	File string `json:"file" yaml:"file"`
	diag.Diagnostic
}

// MarshalJSON adds the file to the flattened diagnostic.
func (f FileDiagnostic) MarshalJSON() ([]byte, error) {
	inner, err := f.Diagnostic.MarshalJSON()
	if err != nil {
		return nil, err
	}
	file, err := json.Marshal(f.File)
	if err != nil {
		return nil, err
	}
	// inner is a non-empty object: {"kind":...}
	out := append([]byte(`{"file":`), file...)
	out = append(out, ',')
	return append(out, inner[1:]...), nil
}

// MarshalYAML mirrors the JSON field names.
func (f FileDiagnostic) MarshalYAML() (any, error) {
	return map[string]any{
		"file":     f.File,
		"kind":     string(f.Kind),
		"code":     string(f.Code),
		"message":  f.Message,
		"severity": f.Severity.String(),
		"line":     f.Span.Start.Line,
		"column":   f.Span.Start.Column,
	}, nil
}

// FormatDiagnostic renders "file:line:col: severity kind/code: message".
// The position is omitted when unknown.
func (r *Renderer) FormatDiagnostic(file string, d diag.Diagnostic) string {
	loc := file
	if d.Span.Start.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d", file, d.Span.Start.Line, d.Span.Start.Column)
	}
	sev := r.severityStyle(d.Severity).Render(d.Severity.String())
	code := r.styles.Bold.Render(fmt.Sprintf("%s/%s", d.Kind, d.Code))
	return fmt.Sprintf("%s: %s %s: %s", loc, sev, code, d.Message)
}

// Diagnostics writes each diagnostic on its own line.
func (r *Renderer) Diagnostics(file string, list diag.List) {
	for _, d := range list {
		r.Println(r.FormatDiagnostic(file, d))
	}
}

func (r *Renderer) severityStyle(s core.Severity) lipgloss.Style {
	switch s {
	case core.SeverityError:
		return r.styles.Error
	case core.SeverityWarning:
		return r.styles.Warning
	case core.SeverityInfo:
		return r.styles.Info
	default:
		return r.styles.Muted
	}
}
