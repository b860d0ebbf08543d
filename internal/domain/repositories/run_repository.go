// Package repositories defines the persistence ports of the audit domain.
package repositories

import (
	"context"
	"time"

	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/domain/values"
)

// RunRepository stores the history of completed audits.
type RunRepository interface {
	// Save persists a completed run.
	Save(ctx context.Context, run *execution.AuditRun) error

	// FindByID retrieves a run by its id.
	FindByID(ctx context.Context, id values.ExecutionID) (*execution.AuditRun, error)

	// FindRecent returns up to limit runs, newest first. A limit of zero or
	// less returns every run.
	FindRecent(ctx context.Context, limit int) ([]*execution.AuditRun, error)

	// FindBetween returns runs started within [start, end], oldest first.
	FindBetween(ctx context.Context, start, end time.Time) ([]*execution.AuditRun, error)
}
