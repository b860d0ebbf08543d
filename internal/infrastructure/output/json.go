package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/nova/internal/application/dto"
)

// JSONFormatter formats reports as JSON. Classes keep the order Failure,
// Success, Controlled, Compliance, Errors, Messages.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{writer: w, indent: indent}
}

// Format writes the report as JSON.
func (f *JSONFormatter) Format(report *dto.Report) error {
	return f.FormatValue(report)
}

// FormatValue writes any value as JSON.
func (f *JSONFormatter) FormatValue(v any) error {
	encoder := json.NewEncoder(f.writer)
	if f.indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
