package output

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/nova/internal/application/dto"
)

// YAMLFormatter formats reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the report as YAML.
func (f *YAMLFormatter) Format(report *dto.Report) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(report); err != nil {
		return err
	}

	return encoder.Close()
}

// FormatValue writes any value as YAML. It renders load summaries and run
// history.
func (f *YAMLFormatter) FormatValue(v any) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
