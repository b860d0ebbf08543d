package execution

import (
	"time"

	"github.com/reglet-dev/nova/internal/domain/values"
)

// RunKind names the entry point that produced a run.
type RunKind string

const (
	// RunKindAudit is a run of explicitly requested profiles
	RunKindAudit RunKind = "audit"
	// RunKindTop is a run driven by a topfile
	RunKindTop RunKind = "top"
)

// AuditRun is the record of one completed top-level audit.
type AuditRun struct {
	StartTime  time.Time
	EndTime    time.Time
	Result     *Envelope
	Kind       RunKind
	Tags       string
	Compliance string
	Requests   []string
	ID         values.ExecutionID
}

// NewAuditRun starts a run record with a fresh id.
func NewAuditRun(kind RunKind, requests []string, tags string) *AuditRun {
	return &AuditRun{
		ID:        values.NewExecutionID(),
		Kind:      kind,
		Requests:  append([]string(nil), requests...),
		Tags:      tags,
		StartTime: time.Now(),
	}
}

// Complete stores the final result and stamps the end time.
func (r *AuditRun) Complete(result *Envelope, compliance string) {
	r.Result = result
	r.Compliance = compliance
	r.EndTime = time.Now()
}

// Duration returns the run's wall time; zero while incomplete.
func (r *AuditRun) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
