package output

import (
	"fmt"
	"sort"

	"github.com/reglet-dev/nova/internal/application/dto"
)

// entryRow is one result entry of a report class, flattened for rendering.
// Terse entries carry only Text; verbose entries also carry Fields.
type entryRow struct {
	Fields map[string]any
	Tag    string
	Text   string
}

// errorRow is one entry of the Errors class.
type errorRow struct {
	Data    any
	Source  string
	Message string
}

// classRows flattens a report class list. Each item maps tag to either a
// description string or the full entry fields.
func classRows(list []map[string]any) []entryRow {
	var rows []entryRow
	for _, item := range list {
		for _, tag := range sortedKeys(item) {
			row := entryRow{Tag: tag}
			switch v := item[tag].(type) {
			case map[string]any:
				row.Fields = v
				if desc, ok := v["description"]; ok && desc != nil {
					row.Text = fmt.Sprint(desc)
				}
				if ctl, ok := v["control"]; ok && ctl != nil {
					row.Text = joinText(row.Text, fmt.Sprint(ctl))
				}
			case nil:
			default:
				row.Text = fmt.Sprint(v)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// errorRows flattens the Errors class: {source: {error, data}}.
func errorRows(list []map[string]any) []errorRow {
	var rows []errorRow
	for _, item := range list {
		for _, src := range sortedKeys(item) {
			row := errorRow{Source: src}
			if detail, ok := item[src].(map[string]any); ok {
				if msg, ok := detail["error"]; ok {
					row.Message = fmt.Sprint(msg)
				}
				row.Data = detail["data"]
			} else {
				row.Message = fmt.Sprint(item[src])
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// reportCounts totals the classes of a report.
type reportCounts struct {
	Success, Failure, Controlled, Errors int
}

func countReport(r *dto.Report) reportCounts {
	return reportCounts{
		Success:    len(classRows(r.Success)),
		Failure:    len(classRows(r.Failure)),
		Controlled: len(classRows(r.Controlled)),
		Errors:     len(errorRows(r.Errors)),
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " (" + b + ")"
	}
}
