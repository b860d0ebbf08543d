// Package services contains application use cases.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/domain/services"
)

// AuditRunner fans the selected profiles out to every loaded module and
// folds their outcomes into one envelope. A failing module is recorded in
// the Errors class and never stops the others.
type AuditRunner struct {
	executor ports.ModuleExecutor
	merger   *services.ResultMerger
	controls *services.ControlResolver
	logger   *slog.Logger
}

// NewAuditRunner creates an AuditRunner.
func NewAuditRunner(executor ports.ModuleExecutor, merger *services.ResultMerger, logger *slog.Logger) *AuditRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if merger == nil {
		merger = services.NewResultMerger()
	}
	return &AuditRunner{
		executor: executor,
		merger:   merger,
		controls: services.NewControlResolver(),
		logger:   logger,
	}
}

// Run executes modules against profiles and applies the profiles'
// compensating controls to the merged result.
func (r *AuditRunner) Run(
	ctx context.Context,
	modules []ports.AuditModule,
	profiles []*entities.Profile,
	tags string,
	kwargs map[string]any,
) *execution.Envelope {
	req := ports.ModuleRequest{
		Profiles: make([]ports.ModuleProfile, 0, len(profiles)),
		Tags:     tags,
		Kwargs:   kwargs,
	}
	for _, p := range profiles {
		req.Profiles = append(req.Profiles, ports.ModuleProfile{Name: p.Name(), Key: p.Key.String(), Data: p.Data})
	}

	env := execution.NewEnvelope()
	for _, outcome := range r.executor.Execute(ctx, modules, req) {
		if outcome.Err != nil {
			rec := recorderFor(outcome.Module, outcome.Err)
			r.logger.Error("nova module failed", "module", outcome.Module, "error", outcome.Err)
			r.merger.MergeErrors(env, rec.Entry())
			continue
		}
		r.logger.Debug("nova module finished", "module", outcome.Module, "duration", outcome.Duration)
		r.merger.Merge(env, outcome.Envelope)
	}

	set := r.controls.Collect(profiles)
	for _, c := range set.Conflicts() {
		r.logger.Warn("compensating control redeclared",
			"tag", c.Tag, "profile", c.Profile, "previous_reason", c.PreviousReason, "reason", c.Reason)
	}
	r.merger.MergeErrors(env, set.Errors()...)
	r.controls.Apply(env, set)

	r.logger.Debug("compensating controls processed", "controls", set.Specs())
	return env
}

// recorderFor classifies a module error. Errors the executor already
// classified are kept; output decoding failures become contract
// violations and anything else a fault.
func recorderFor(module string, err error) entities.Recorder {
	var rec entities.Recorder
	if errors.As(err, &rec) {
		return rec
	}
	var cv *execution.ContractViolationError
	if errors.As(err, &cv) {
		return &entities.ModuleContractError{Module: module, Value: cv.Value, Reason: cv.Reason}
	}
	if errors.Is(err, context.Canceled) {
		return &entities.ModuleCancelledError{Module: module, Cause: err}
	}
	return &entities.ModuleFaultError{Module: module, Cause: err}
}
