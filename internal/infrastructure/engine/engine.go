package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/reglet-dev/nova/internal/domain/execution"
)

// Engine implements ports.ModuleExecutor.
type Engine struct {
	logger *slog.Logger
	config ExecutionConfig
}

// NewEngine creates an engine. Non-positive concurrency falls back to the
// defaults.
func NewEngine(cfg ExecutionConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcurrentModules <= 0 {
		cfg.MaxConcurrentModules = DefaultExecutionConfig().MaxConcurrentModules
	}
	return &Engine{config: cfg, logger: logger}
}

// Execute runs every module with req. Outcomes are indexed by module
// position so merging stays deterministic whatever the completion order.
// Once ctx is cancelled, modules that have not finished are reported as
// cancelled and completed outcomes are kept.
func (e *Engine) Execute(ctx context.Context, modules []ports.AuditModule, req ports.ModuleRequest) []ports.ModuleOutcome {
	outcomes := make([]ports.ModuleOutcome, len(modules))

	// Plain group: one module failing must not cancel the others.
	var g errgroup.Group
	g.SetLimit(e.config.MaxConcurrentModules)

	for i, mod := range modules {
		g.Go(func() error {
			outcomes[i] = e.runModule(ctx, mod, req)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

type moduleResult struct {
	env *execution.Envelope
	err error
}

func (e *Engine) runModule(ctx context.Context, mod ports.AuditModule, req ports.ModuleRequest) ports.ModuleOutcome {
	name := mod.Name()
	start := time.Now()
	outcome := ports.ModuleOutcome{Module: name}

	if err := ctx.Err(); err != nil {
		outcome.Err = &entities.ModuleCancelledError{Module: name, Cause: err}
		return outcome
	}

	moduleCtx, cancel := ctx, context.CancelFunc(func() {})
	if e.config.ModuleTimeout > 0 {
		moduleCtx, cancel = context.WithTimeout(ctx, e.config.ModuleTimeout)
	}
	defer cancel()

	done := make(chan moduleResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Debug("nova module panicked", "module", name, "stack", string(debug.Stack()))
				done <- moduleResult{err: &entities.ModuleFaultError{Module: name, Cause: fmt.Errorf("panic: %v", r)}}
			}
		}()
		env, err := mod.Audit(moduleCtx, req)
		done <- moduleResult{env: env, err: err}
	}()

	var res moduleResult
	select {
	case res = <-done:
	case <-moduleCtx.Done():
		// The module goroutine is abandoned; its buffered send never blocks.
		res = moduleResult{err: moduleCtx.Err()}
	}
	outcome.Duration = time.Since(start)

	switch {
	case res.err == nil:
		outcome.Envelope = res.env
		if outcome.Envelope == nil {
			outcome.Envelope = execution.NewEnvelope()
		}
	case ctx.Err() != nil && isContextErr(res.err):
		outcome.Err = &entities.ModuleCancelledError{Module: name, Cause: ctx.Err()}
	case errors.Is(res.err, context.DeadlineExceeded) && moduleCtx.Err() != nil:
		outcome.Err = &entities.ModuleFaultError{
			Module: name,
			Cause:  fmt.Errorf("module timed out after %s", e.config.ModuleTimeout),
		}
	default:
		outcome.Err = res.err
	}
	return outcome
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
