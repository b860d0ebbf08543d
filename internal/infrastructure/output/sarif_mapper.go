package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/reglet-dev/nova/internal/application/dto"
)

type sarifMapper struct {
	report *dto.Report
	rules  map[string]bool
	cwd    string
}

func newSARIFMapper(report *dto.Report) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{
		report: report,
		rules:  make(map[string]bool),
		cwd:    cwd,
	}
}

// mapToRun populates the SARIF run with rules, results, invocation and properties.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addClass(run, classRows(m.report.Failure), "error", "fail")
	m.addClass(run, classRows(m.report.Success), "note", "pass")
	m.addClass(run, classRows(m.report.Controlled), "none", "notApplicable")
	m.addInvocation(run)
	m.addProperties(run)
}

func (m *sarifMapper) addClass(run *sarif.Run, rows []entryRow, level, kind string) {
	for _, row := range rows {
		m.addRule(run, row)

		result := sarif.NewRuleResult(row.Tag)
		result.Level = level
		result.Kind = kind

		msg := row.Text
		if msg == "" {
			msg = fmt.Sprintf("Check %s: %s", row.Tag, kind)
		}
		result.Message = sarif.NewTextMessage(msg)

		if path, ok := row.Fields["path"].(string); ok && path != "" {
			result.Locations = []*sarif.Location{m.createLocation(path)}
		}

		if len(row.Fields) > 0 {
			props := sarif.NewPropertyBag()
			for _, k := range sortedKeys(row.Fields) {
				switch k {
				case "tag", "description":
					continue
				}
				props.Add(k, row.Fields[k])
			}
			result.WithProperties(props)
		}

		run.AddResult(result)
	}
}

// addRule registers a rule for a tag once.
func (m *sarifMapper) addRule(run *sarif.Run, row entryRow) {
	if m.rules[row.Tag] {
		return
	}
	m.rules[row.Tag] = true

	rule := sarif.NewReportingDescriptor().WithID(row.Tag)
	rule.WithName(row.Tag)

	desc := row.Text
	if d, ok := row.Fields["description"].(string); ok && d != "" {
		desc = d
	}
	if desc == "" {
		desc = row.Tag
	}
	rule.WithShortDescription(&sarif.MultiformatMessageString{
		Text: &desc,
	})
	rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
		Level: "warning",
	})

	run.Tool.Driver.AddRule(rule)
}

func (m *sarifMapper) createLocation(path string) *sarif.Location {
	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(m.normalizeURI(path)))
	return sarif.NewLocation().WithPhysicalLocation(pLoc)
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path) // Fallback to original
	}

	// Try to make relative to CWD
	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// addInvocation adds execution metadata to the run.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()

	invocation.ExecutionSuccessful = ptrBool(len(m.report.Errors) == 0)

	meta := m.report.Metadata
	if !meta.StartTime.IsZero() {
		startTime := meta.StartTime.UTC().Format("2006-01-02T15:04:05.000Z")
		endTime := meta.StartTime.Add(meta.Duration).UTC().Format("2006-01-02T15:04:05.000Z")
		invocation.StartTimeUtc = &startTime
		invocation.EndTimeUtc = &endTime
	}

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	props := sarif.NewPropertyBag()
	if !meta.RunID.IsZero() {
		props.Add("executionId", meta.RunID.String())
	}
	if len(m.report.Errors) > 0 {
		props.Add("errors", m.report.Errors)
	}
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds compliance and messages to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	if m.report.Compliance != "" {
		props.Add("compliance", m.report.Compliance)
	}
	if m.report.Messages != "" {
		props.Add("messages", m.report.Messages)
	}
	props.Add("summary", countReport(m.report))
	run.WithProperties(props)
}

func ptrBool(b bool) *bool {
	return &b
}
