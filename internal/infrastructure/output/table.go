package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/reglet-dev/nova/internal/application/dto"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// TableFormatter formats reports as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the report as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(report *dto.Report) error {
	rule := f.colorize(strings.Repeat("─", 80), colorGray)

	if !report.Metadata.RunID.IsZero() {
		fmt.Fprintln(f.writer, rule)
		fmt.Fprintf(f.writer, "Run: %s\n", report.Metadata.RunID)
		fmt.Fprintf(f.writer, "Executed: %s\n", report.Metadata.StartTime.Format(time.RFC3339))
		fmt.Fprintf(f.writer, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
		fmt.Fprintln(f.writer, rule)
	}

	f.formatClass("Failure", "✗", colorRed, report.Failure)
	f.formatClass("Success", "✓", colorGreen, report.Success)
	f.formatClass("Controlled", "~", colorYellow, report.Controlled)

	if report.Compliance != "" {
		fmt.Fprintf(f.writer, "%s %s\n", f.colorize("Compliance:", colorBold), report.Compliance)
	}

	f.formatErrors(report.Errors)

	if report.Messages != "" {
		fmt.Fprintf(f.writer, "%s %s\n", f.colorize("Messages:", colorBold), report.Messages)
	}

	f.formatSummary(report)
	return nil
}

// formatClass formats one result class.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatClass(name, symbol, color string, list []map[string]any) {
	rows := classRows(list)
	if len(rows) == 0 {
		return
	}

	fmt.Fprintln(f.writer, f.colorize(name+":", colorBold))
	for _, row := range rows {
		line := fmt.Sprintf("  %s %s", f.colorize(symbol, color), f.colorize(row.Tag, color))
		if row.Text != "" {
			line += ": " + row.Text
		}
		fmt.Fprintln(f.writer, line)

		for _, k := range sortedKeys(row.Fields) {
			switch k {
			case "tag", "description", "control":
				continue
			}
			fmt.Fprintf(f.writer, "      %s: %v\n", f.colorize(k, colorCyan), row.Fields[k])
		}
	}
	fmt.Fprintln(f.writer)
}

// formatErrors formats the Errors class.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatErrors(list []map[string]any) {
	rows := errorRows(list)
	if len(rows) == 0 {
		return
	}

	fmt.Fprintln(f.writer, f.colorize("Errors:", colorBold))
	for _, row := range rows {
		fmt.Fprintf(f.writer, "  %s %s: %s\n", f.colorize("!", colorRed), f.colorize(row.Source, colorRed), row.Message)
		if row.Data != nil {
			fmt.Fprintf(f.writer, "      %s\n", f.colorize(fmt.Sprint(row.Data), colorYellow))
		}
	}
	fmt.Fprintln(f.writer)
}

// formatSummary prints class totals.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(report *dto.Report) {
	c := countReport(report)
	if c == (reportCounts{}) {
		return
	}
	fmt.Fprintf(f.writer, "Summary: %s failed, %s passed, %s controlled, %s errors\n",
		f.colorize(fmt.Sprint(c.Failure), colorRed),
		f.colorize(fmt.Sprint(c.Success), colorGreen),
		f.colorize(fmt.Sprint(c.Controlled), colorYellow),
		f.colorize(fmt.Sprint(c.Errors), colorRed),
	)
}
