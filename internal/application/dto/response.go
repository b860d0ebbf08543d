package dto

import (
	"time"

	"github.com/reglet-dev/nova/internal/domain/values"
)

// NoAuditsMessage is reported when a run produced nothing to show.
const NoAuditsMessage = "No audits matched this host in the specified profiles."

// Report is the outcome of an audit or top run. Empty fields are absent
// from the rendered output.
type Report struct {
	// Metadata is not part of the rendered report body.
	Metadata ReportMetadata `json:"-" yaml:"-"`
	// Field order is the key order of rendered JSON and YAML.
	Failure    []map[string]any `json:"Failure,omitempty" yaml:"Failure,omitempty"`
	Success    []map[string]any `json:"Success,omitempty" yaml:"Success,omitempty"`
	Controlled []map[string]any `json:"Controlled,omitempty" yaml:"Controlled,omitempty"`
	Compliance string           `json:"Compliance,omitempty" yaml:"Compliance,omitempty"`
	Errors     []map[string]any `json:"Errors,omitempty" yaml:"Errors,omitempty"`
	Messages   string           `json:"Messages,omitempty" yaml:"Messages,omitempty"`
}

// ReportMetadata describes the run that produced a report.
type ReportMetadata struct {
	StartTime time.Time
	RunID     values.ExecutionID
	Duration  time.Duration
	Verbose   bool
}

// IsEmpty reports whether the report has no result classes. Messages and
// metadata do not count.
func (r *Report) IsEmpty() bool {
	return len(r.Failure) == 0 && len(r.Success) == 0 && len(r.Controlled) == 0 &&
		len(r.Errors) == 0 && r.Compliance == ""
}

// Append adds every entry of other to r, class by class.
func (r *Report) Append(other *Report) {
	if other == nil {
		return
	}
	r.Failure = append(r.Failure, other.Failure...)
	r.Success = append(r.Success, other.Success...)
	r.Controlled = append(r.Controlled, other.Controlled...)
	r.Errors = append(r.Errors, other.Errors...)
}

// Body renders the report as an ordered list of class names and values,
// skipping empty classes.
func (r *Report) Body() []Section {
	var out []Section
	add := func(name string, v any, empty bool) {
		if !empty {
			out = append(out, Section{Name: name, Value: v})
		}
	}
	add("Failure", r.Failure, len(r.Failure) == 0)
	add("Success", r.Success, len(r.Success) == 0)
	add("Controlled", r.Controlled, len(r.Controlled) == 0)
	add("Compliance", r.Compliance, r.Compliance == "")
	add("Errors", r.Errors, len(r.Errors) == 0)
	add("Messages", r.Messages, r.Messages == "")
	return out
}

// Section is one top-level key of a rendered report.
type Section struct {
	Value any
	Name  string
}

// LoadSummary reports what a catalog load found.
type LoadSummary struct {
	Loaded      []string `json:"loaded" yaml:"loaded"`
	Missing     []string `json:"missing" yaml:"missing"`
	Data        []string `json:"data" yaml:"data"`
	MissingData []string `json:"missing_data" yaml:"missing_data"`
}
