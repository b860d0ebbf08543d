// Package output provides formatters for nova audit reports.
package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/reglet-dev/nova/internal/application/dto"
	"github.com/reglet-dev/nova/internal/version"
)

// SARIFFormatter formats reports as SARIF 2.1.0 JSON.
// Every audited tag becomes a rule and every check outcome a result. Only
// verbose reports carry the paths used for result locations.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout)
//	if err := formatter.Format(report); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter(writer io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: writer}
}

// Format writes the report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *dto.Report) error {
	sr := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("nova", "https://github.com/reglet-dev/nova")
	ver := version.Version
	run.Tool.Driver.Version = &ver
	run.Tool.Driver.Organization = ptrString("nova")

	mapper := newSARIFMapper(report)
	mapper.mapToRun(run)

	sr.AddRun(run)

	if err := sr.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrString(s string) *string {
	return &s
}
