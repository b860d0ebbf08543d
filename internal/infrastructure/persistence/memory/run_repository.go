// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/domain/repositories"
	"github.com/reglet-dev/nova/internal/domain/values"
)

// Ensure interface compliance
var _ repositories.RunRepository = (*RunRepository)(nil)

// RunRepository keeps run history for the lifetime of the process.
type RunRepository struct {
	runs map[values.ExecutionID]*execution.AuditRun
	mu   sync.RWMutex
}

// NewRunRepository creates an empty repository.
func NewRunRepository() *RunRepository {
	return &RunRepository{
		runs: make(map[values.ExecutionID]*execution.AuditRun),
	}
}

// Save stores run by id, replacing any earlier record with the same id.
// Callers should not modify the run after saving.
func (r *RunRepository) Save(ctx context.Context, run *execution.AuditRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("cannot save nil run")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

// FindByID retrieves a run by its id.
func (r *RunRepository) FindByID(_ context.Context, id values.ExecutionID) (*execution.AuditRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return run, nil
}

// FindRecent returns up to limit runs, newest first.
func (r *RunRepository) FindRecent(_ context.Context, limit int) ([]*execution.AuditRun, error) {
	r.mu.RLock()
	matches := make([]*execution.AuditRun, 0, len(r.runs))
	for _, run := range r.runs {
		matches = append(matches, run)
	}
	r.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *execution.AuditRun) int {
		return b.StartTime.Compare(a.StartTime)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// FindBetween returns runs whose start time is within [start, end], oldest first.
func (r *RunRepository) FindBetween(_ context.Context, start, end time.Time) ([]*execution.AuditRun, error) {
	r.mu.RLock()
	var matches []*execution.AuditRun
	for _, run := range r.runs {
		if !run.StartTime.Before(start) && !run.StartTime.After(end) {
			matches = append(matches, run)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *execution.AuditRun) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return matches, nil
}
