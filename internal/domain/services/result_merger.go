// Package services contains the stateless rules of the audit pipeline:
// profile selection, result merging, compensating controls, compliance
// scoring and the terse and verbose report views.
package services

import (
	"github.com/reglet-dev/nova/internal/domain/execution"
)

// ResultMerger folds module envelopes into one aggregate.
//
// Result classes are appended in arrival order. Error entries are
// deduplicated by (source, error, data) so the same fault reported twice
// appears once.
type ResultMerger struct {
	truncator execution.TruncationStrategy
	dataLimit int
}

// NewResultMerger creates a merger that bounds recorded error data to
// execution.DefaultDataLimit bytes.
func NewResultMerger() *ResultMerger {
	return &ResultMerger{
		truncator: &execution.GreedyTruncator{},
		dataLimit: execution.DefaultDataLimit,
	}
}

// WithDataLimit changes the error data bound. Zero disables truncation.
func (m *ResultMerger) WithDataLimit(limit int) *ResultMerger {
	m.dataLimit = limit
	return m
}

// Merge appends every entry of src to dst.
func (m *ResultMerger) Merge(dst, src *execution.Envelope) {
	if src == nil {
		return
	}
	dst.Success = append(dst.Success, src.Success...)
	dst.Failure = append(dst.Failure, src.Failure...)
	dst.Controlled = append(dst.Controlled, src.Controlled...)
	m.MergeErrors(dst, src.Errors...)
}

// MergeErrors appends error entries that dst does not already hold.
func (m *ResultMerger) MergeErrors(dst *execution.Envelope, entries ...execution.ErrorEntry) {
	if len(entries) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(dst.Errors)+len(entries))
	for _, e := range dst.Errors {
		seen[e.Key()] = struct{}{}
	}

	for _, e := range entries {
		if m.truncator != nil {
			e.Data, _ = m.truncator.Truncate(e.Data, m.dataLimit)
		}
		k := e.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		dst.Errors = append(dst.Errors, e)
	}
}
