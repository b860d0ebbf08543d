package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/reglet-dev/nova/internal/application/dto"
	apperrors "github.com/reglet-dev/nova/internal/application/errors"
	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/domain/repositories"
	"github.com/reglet-dev/nova/internal/domain/services"
	"github.com/reglet-dev/nova/internal/domain/values"
)

// Configuration keys read by the audit entry points.
const (
	KeyVerbose        = "nova.verbose"
	KeyShowSuccess    = "nova.show_success"
	KeyShowCompliance = "nova.show_compliance"
	KeyDebug          = "nova.debug"
	KeyAutoload       = "nova.autoload"
	KeyKwargs         = "nova.nova_kwargs"
	KeyTopfile        = "nova.topfile"
)

// DefaultTopfile is the topfile used when neither the request nor the
// configuration names one.
const DefaultTopfile = "top.nova"

type displayOptions struct {
	verbose        bool
	showSuccess    bool
	showCompliance bool
	debug          bool
}

// AuditService implements the audit, top and load entry points.
type AuditService struct {
	catalog  ports.CatalogProvider
	config   ports.ConfigSource
	topfiles ports.TopfileSource
	runner   *AuditRunner
	resolver *TopfileResolver
	selector *services.ProfileSelector
	views    *services.ReportViews
	merger   *services.ResultMerger
	redactor ports.Redactor
	runs     repositories.RunRepository
	logger   *slog.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(
	catalog ports.CatalogProvider,
	config ports.ConfigSource,
	topfiles ports.TopfileSource,
	runner *AuditRunner,
	resolver *TopfileResolver,
	logger *slog.Logger,
) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{
		catalog:  catalog,
		config:   config,
		topfiles: topfiles,
		runner:   runner,
		resolver: resolver,
		selector: services.NewProfileSelector(),
		views:    services.NewReportViews(),
		merger:   services.NewResultMerger(),
		logger:   logger,
	}
}

// WithRedactor scrubs every report with r before it is returned.
func (s *AuditService) WithRedactor(r ports.Redactor) *AuditService {
	s.redactor = r
	return s
}

// WithRunRepository records every top-level run in repo.
func (s *AuditService) WithRunRepository(repo repositories.RunRepository) *AuditService {
	s.runs = repo
	return s
}

// Audit runs the requested profiles. A request without configs is a top run.
func (s *AuditService) Audit(ctx context.Context, req dto.AuditRequest) (*dto.Report, error) {
	if req.Configs == nil {
		return s.Top(ctx, dto.TopRequest{Topfile: req.Topfile, Display: req.Display})
	}

	cat, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	opts := s.resolveDisplay(req.Display)

	tags := req.Tags
	if tags == "" {
		tags = entities.DefaultTagFilter
	}
	run := execution.NewAuditRun(execution.RunKindAudit, req.Configs, tags)
	report, env := s.audit(ctx, cat, req.Configs, tags, opts, s.kwargs(req.Kwargs), false)
	return s.finish(ctx, run, report, env, opts), nil
}

// Top runs every profile request the topfile assigns to this host.
// Requests are batched by tag filter and the batches' results concatenated.
func (s *AuditService) Top(ctx context.Context, req dto.TopRequest) (*dto.Report, error) {
	cat, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	opts := s.resolveDisplay(req.Display)

	path := req.Topfile
	if path == "" {
		path = s.config.GetString(KeyTopfile, DefaultTopfile)
	}
	top, err := s.topfiles.LoadTopfile(ctx, path)
	if err != nil {
		return nil, err
	}

	groups, topErrs := s.resolver.Resolve(top)

	env := execution.NewEnvelope()
	s.merger.MergeErrors(env, topErrs...)
	report := &dto.Report{Errors: s.views.Errors(env)}

	var requests []string
	kwargs := s.kwargs(nil)
	batch := displayOptions{verbose: opts.verbose, showSuccess: true, debug: opts.debug}
	for _, g := range groups {
		if opts.debug {
			s.logger.Debug("running topfile batch", "tags", g.Tags, "requests", g.Requests)
		}
		r, e := s.audit(ctx, cat, g.Requests, g.Tags, batch, kwargs, true)
		report.Append(r)
		s.merger.Merge(env, e)
		requests = append(requests, g.Requests...)
	}

	if opts.showCompliance {
		if c, ok := services.Compliance(len(report.Success), len(report.Failure), len(report.Controlled)); ok {
			report.Compliance = c
		}
	}
	if report.IsEmpty() {
		report.Messages = dto.NoAuditsMessage
	}
	if !opts.showSuccess {
		report.Success = nil
	}

	run := execution.NewAuditRun(execution.RunKindTop, requests, "")
	return s.finish(ctx, run, report, env, opts), nil
}

// Load rebuilds the catalog and reports what was found.
func (s *AuditService) Load(ctx context.Context) (*dto.LoadSummary, error) {
	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	summary := &dto.LoadSummary{
		Loaded:      make([]string, 0, len(cat.Modules)),
		Missing:     append([]string{}, cat.MissingModules...),
		Data:        make([]string, 0, cat.Profiles.Len()),
		MissingData: append([]string{}, cat.MissingProfiles...),
	}
	for _, m := range cat.Modules {
		summary.Loaded = append(summary.Loaded, m.Name())
	}
	for _, k := range cat.Profiles.Keys() {
		summary.Data = append(summary.Data, k.String())
	}
	sort.Strings(summary.Loaded)
	sort.Strings(summary.Missing)
	sort.Strings(summary.MissingData)

	s.logger.Info("nova catalog loaded", "modules", len(summary.Loaded), "profiles", len(summary.Data),
		"missing_modules", len(summary.Missing), "missing_profiles", len(summary.MissingData))
	return summary, nil
}

// History returns up to limit recorded runs, newest first.
func (s *AuditService) History(ctx context.Context, limit int) ([]*execution.AuditRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.FindRecent(ctx, limit)
}

// audit runs one set of requests and renders the report body. Compliance
// is scored on the terse view so duplicates across modules count once.
func (s *AuditService) audit(
	ctx context.Context,
	cat *ports.Catalog,
	configs []string,
	tags string,
	opts displayOptions,
	kwargs map[string]any,
	calledFromTop bool,
) (*dto.Report, *execution.Envelope) {
	requests := make([]string, 0, len(configs))
	for _, c := range configs {
		requests = append(requests, values.NormalizeRequest(c))
	}

	profiles, selErrs := s.selector.Select(requests, cat.Profiles)
	if opts.debug {
		names := make([]string, 0, len(profiles))
		for _, p := range profiles {
			names = append(names, p.Key.String())
		}
		s.logger.Debug("nova configs resolved", "configs", requests, "profiles", names)
		s.logger.Debug("nova kwargs", "kwargs", kwargs)
	}

	env := execution.NewEnvelope()
	s.merger.MergeErrors(env, selErrs...)
	s.merger.Merge(env, s.runner.Run(ctx, cat.Modules, profiles, tags, kwargs))

	terse := s.views.Terse(env)
	view := terse
	if opts.verbose {
		view = s.views.Verbose(env)
	}

	report := &dto.Report{
		Failure:    view.Failure,
		Controlled: view.Controlled,
	}
	if opts.showSuccess {
		report.Success = view.Success
	}
	if opts.showCompliance {
		if c, ok := services.Compliance(len(terse.Success), len(terse.Failure), len(terse.Controlled)); ok {
			report.Compliance = c
		}
	}
	if !calledFromTop && report.IsEmpty() {
		report.Messages = dto.NoAuditsMessage
	}
	report.Errors = s.views.Errors(env)
	return report, env
}

func (s *AuditService) finish(
	ctx context.Context,
	run *execution.AuditRun,
	report *dto.Report,
	env *execution.Envelope,
	opts displayOptions,
) *dto.Report {
	run.Complete(env, report.Compliance)
	report.Metadata = dto.ReportMetadata{
		RunID:     run.ID,
		StartTime: run.StartTime,
		Duration:  run.Duration(),
		Verbose:   opts.verbose,
	}

	if s.redactor != nil {
		for _, list := range [][]map[string]any{report.Failure, report.Success, report.Controlled, report.Errors} {
			for i, m := range list {
				if scrubbed, ok := s.redactor.Redact(m).(map[string]any); ok {
					list[i] = scrubbed
				}
			}
		}
	}

	if s.runs != nil {
		if err := s.runs.Save(ctx, run); err != nil {
			s.logger.Warn("failed to record audit run", "run_id", run.ID.String(), "error", err)
		}
	}

	s.logger.Info("audit complete",
		"run_id", run.ID.String(),
		"kind", string(run.Kind),
		"failure", len(env.Failure),
		"success", len(env.Success),
		"controlled", len(env.Controlled),
		"errors", len(env.Errors),
		"duration", run.Duration().Round(time.Millisecond))
	return report
}

// snapshot reloads the catalog when autoload is enabled and returns the
// current one. A failed reload keeps the previous catalog.
func (s *AuditService) snapshot(ctx context.Context) (*ports.Catalog, error) {
	if s.config.GetBool(KeyAutoload, true) {
		if _, err := s.catalog.Load(ctx); err != nil {
			s.logger.Warn("nova autoload failed", "error", err)
		}
	}
	cat := s.catalog.Current()
	if cat.IsEmpty() {
		return nil, apperrors.ErrNothingLoaded
	}
	return cat, nil
}

func (s *AuditService) resolveDisplay(d dto.DisplayOptions) displayOptions {
	if d.ShowProfile != nil {
		s.logger.Warn("keyword argument 'show_profile' is no longer supported")
	}
	pick := func(v *bool, key string, def bool) bool {
		if v != nil {
			return *v
		}
		return s.config.GetBool(key, def)
	}
	return displayOptions{
		verbose:        pick(d.Verbose, KeyVerbose, false),
		showSuccess:    pick(d.ShowSuccess, KeyShowSuccess, true),
		showCompliance: pick(d.ShowCompliance, KeyShowCompliance, true),
		debug:          pick(d.Debug, KeyDebug, false),
	}
}

// kwargs merges the configured module arguments with the request's; the
// request wins.
func (s *AuditService) kwargs(req map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range s.config.GetStringMap(KeyKwargs) {
		out[k] = v
	}
	for k, v := range req {
		out[k] = v
	}
	return out
}
