// Package execution holds the result envelope shared by audit modules and the
// aggregation pipeline.
package execution

import (
	"fmt"
	"sort"

	"github.com/reglet-dev/nova/internal/domain/values"
)

// Reserved keys of a result entry.
const (
	KeyTag         = "tag"
	KeyDescription = "description"
	KeyControl     = "control"
)

// ResultEntry is one check outcome reported by an audit module.
type ResultEntry struct {
	// Extra carries module-specific fields other than the reserved keys.
	Extra       map[string]any
	Tag         string
	Description string
	// Control is the compensating control reason; set only on Controlled entries.
	Control string
	// Controlled marks an entry annotated by a control, with or without a reason.
	Controlled bool
	// blankDescription records a description key that was present but empty.
	blankDescription bool
}

// NewResultEntry builds an entry from a module-supplied mapping. The mapping
// must contain a tag.
func NewResultEntry(fields map[string]any) (ResultEntry, error) {
	rawTag, ok := fields[KeyTag]
	if !ok || rawTag == nil {
		return ResultEntry{}, fmt.Errorf("result entry has no %q field", KeyTag)
	}

	entry := ResultEntry{Tag: fmt.Sprint(rawTag)}
	if desc, ok := fields[KeyDescription]; ok && desc != nil {
		entry.Description = fmt.Sprint(desc)
		entry.blankDescription = entry.Description == ""
	}
	if ctl, ok := fields[KeyControl]; ok {
		entry.Controlled = true
		if ctl != nil {
			entry.Control = fmt.Sprint(ctl)
		}
	}

	for k, v := range fields {
		switch k {
		case KeyTag, KeyDescription, KeyControl:
			continue
		}
		if entry.Extra == nil {
			entry.Extra = make(map[string]any, len(fields))
		}
		entry.Extra[k] = v
	}
	return entry, nil
}

// Fields renders the full entry as a mapping, as shown in verbose output.
func (e ResultEntry) Fields() map[string]any {
	out := make(map[string]any, len(e.Extra)+3)
	for k, v := range e.Extra {
		out[k] = v
	}
	out[KeyTag] = e.Tag
	if desc := e.DescriptionValue(); desc != nil {
		out[KeyDescription] = desc
	}
	if e.Controlled || e.Control != "" {
		out[KeyControl] = e.Control
	}
	return out
}

// DescriptionValue returns the description, or nil when the entry has none.
func (e ResultEntry) DescriptionValue() any {
	if e.Description == "" && !e.blankDescription {
		return nil
	}
	return e.Description
}

// WithControl returns a copy of the entry annotated with a control reason.
func (e ResultEntry) WithControl(reason string) ResultEntry {
	c := e
	if e.Extra != nil {
		c.Extra = make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			c.Extra[k] = v
		}
	}
	c.Control = reason
	c.Controlled = true
	return c
}

// ErrorEntry is one recorded, non-fatal fault. Source is the request,
// module name or topfile path the fault belongs to.
type ErrorEntry struct {
	Data   any
	Source string
	Error  string
}

// Fields renders the entry as {source: {error, data}}.
func (e ErrorEntry) Fields() map[string]any {
	desc := map[string]any{"error": e.Error}
	if e.Data != nil {
		desc["data"] = e.Data
	}
	return map[string]any{e.Source: desc}
}

// Key identifies an error entry for deduplication.
func (e ErrorEntry) Key() string {
	return fmt.Sprintf("%s\x00%s\x00%v", e.Source, e.Error, e.Data)
}

// Envelope is the result of one module run or of a whole audit: entries filed
// by outcome class, each class in insertion order.
type Envelope struct {
	Success    []ResultEntry
	Failure    []ResultEntry
	Controlled []ResultEntry
	Errors     []ErrorEntry
}

// NewEnvelope creates an empty envelope.
func NewEnvelope() *Envelope {
	return &Envelope{}
}

// Entries returns the result entries of a scored class.
func (e *Envelope) Entries(c values.Class) []ResultEntry {
	switch c {
	case values.ClassSuccess:
		return e.Success
	case values.ClassFailure:
		return e.Failure
	case values.ClassControlled:
		return e.Controlled
	default:
		return nil
	}
}

// Add files an entry under a scored class.
func (e *Envelope) Add(c values.Class, entry ResultEntry) {
	switch c {
	case values.ClassSuccess:
		e.Success = append(e.Success, entry)
	case values.ClassFailure:
		e.Failure = append(e.Failure, entry)
	case values.ClassControlled:
		e.Controlled = append(e.Controlled, entry)
	}
}

// AddError records a fault.
func (e *Envelope) AddError(source, message string, data any) {
	e.Errors = append(e.Errors, ErrorEntry{Source: source, Error: message, Data: data})
}

// Count returns the number of entries in a class.
func (e *Envelope) Count(c values.Class) int {
	if c == values.ClassErrors {
		return len(e.Errors)
	}
	return len(e.Entries(c))
}

// IsEmpty reports whether no class holds an entry.
func (e *Envelope) IsEmpty() bool {
	return len(e.Success) == 0 && len(e.Failure) == 0 && len(e.Controlled) == 0 && len(e.Errors) == 0
}

// Tags returns the distinct tags across all scored classes, sorted.
func (e *Envelope) Tags() []string {
	seen := make(map[string]struct{})
	for _, c := range []values.Class{values.ClassSuccess, values.ClassFailure, values.ClassControlled} {
		for _, entry := range e.Entries(c) {
			seen[entry.Tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
