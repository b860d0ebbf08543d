package services

import (
	"github.com/reglet-dev/nova/internal/domain/execution"
)

// View is one rendering of the scored classes of an envelope. Each element
// is a single-key mapping keyed by the check tag.
type View struct {
	Failure    []map[string]any
	Success    []map[string]any
	Controlled []map[string]any
}

// ReportViews renders envelopes as terse or verbose views.
type ReportViews struct{}

// NewReportViews creates a ReportViews.
func NewReportViews() *ReportViews {
	return &ReportViews{}
}

// Terse renders {tag: description} for failures and successes, deduplicated
// by (tag, description), and {tag: reason} for controlled entries. A missing
// description renders as nil. Controlled entries are deduplicated by
// (tag, description, reason).
func (v *ReportViews) Terse(env *execution.Envelope) View {
	return View{
		Failure:    terseList(env.Failure, false),
		Success:    terseList(env.Success, false),
		Controlled: terseList(env.Controlled, true),
	}
}

// Verbose renders {tag: entry} for every entry, without deduplication.
func (v *ReportViews) Verbose(env *execution.Envelope) View {
	return View{
		Failure:    verboseList(env.Failure),
		Success:    verboseList(env.Success),
		Controlled: verboseList(env.Controlled),
	}
}

// Errors renders error entries as {source: {error, data}}.
func (v *ReportViews) Errors(env *execution.Envelope) []map[string]any {
	if len(env.Errors) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(env.Errors))
	for _, e := range env.Errors {
		out = append(out, e.Fields())
	}
	return out
}

type terseKey struct {
	tag, description, control string
	described                 bool
}

func terseList(entries []execution.ResultEntry, controlled bool) []map[string]any {
	if len(entries) == 0 {
		return nil
	}

	seen := make(map[terseKey]struct{}, len(entries))
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		value := e.DescriptionValue()
		k := terseKey{tag: e.Tag, description: e.Description, described: value != nil}
		if controlled {
			k.control = e.Control
			value = e.Control
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, map[string]any{e.Tag: value})
	}
	return out
}

func verboseList(entries []execution.ResultEntry) []map[string]any {
	if len(entries) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{e.Tag: e.Fields()})
	}
	return out
}
