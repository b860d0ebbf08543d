package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/reglet-dev/nova/internal/application/errors"
	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/domain/values"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockModule returns a fixed envelope or error and records its requests.
type mockModule struct {
	name     string
	envelope *execution.Envelope
	err      error
	mu       sync.Mutex
	requests []ports.ModuleRequest
}

func (m *mockModule) Name() string { return m.name }

func (m *mockModule) Audit(_ context.Context, req ports.ModuleRequest) (*execution.Envelope, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.envelope == nil {
		return execution.NewEnvelope(), nil
	}
	// Hand out a copy so merges never alias the fixture.
	c := *m.envelope
	c.Success = append([]execution.ResultEntry(nil), m.envelope.Success...)
	c.Failure = append([]execution.ResultEntry(nil), m.envelope.Failure...)
	c.Controlled = append([]execution.ResultEntry(nil), m.envelope.Controlled...)
	c.Errors = append([]execution.ErrorEntry(nil), m.envelope.Errors...)
	return &c, nil
}

// sequentialExecutor runs modules one after another.
type sequentialExecutor struct{}

func (sequentialExecutor) Execute(ctx context.Context, modules []ports.AuditModule, req ports.ModuleRequest) []ports.ModuleOutcome {
	out := make([]ports.ModuleOutcome, 0, len(modules))
	for _, m := range modules {
		start := time.Now()
		env, err := m.Audit(ctx, req)
		out = append(out, ports.ModuleOutcome{Module: m.Name(), Envelope: env, Err: err, Duration: time.Since(start)})
	}
	return out
}

type mockCatalog struct {
	catalog *ports.Catalog
	loadErr error
	loads   int
}

func (c *mockCatalog) Load(context.Context) (*ports.Catalog, error) {
	c.loads++
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.catalog, nil
}

func (c *mockCatalog) Current() *ports.Catalog { return c.catalog }

type mockConfig map[string]any

func (m mockConfig) Get(key string, def any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

func (m mockConfig) GetBool(key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

func (m mockConfig) GetString(key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

func (m mockConfig) GetStringMap(key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

type mockTopfiles struct {
	files map[string]*entities.Topfile
	asked []string
}

func (m *mockTopfiles) LoadTopfile(_ context.Context, path string) (*entities.Topfile, error) {
	m.asked = append(m.asked, path)
	top, ok := m.files[path]
	if !ok {
		return nil, apperrors.NewConfigurationError("topfile", "Could not load topfile", errors.New("no such file"))
	}
	return top, nil
}

// mockMatcher matches the expressions it was given; "!bad" is an error.
type mockMatcher map[string]bool

func (m mockMatcher) Matches(expr string) (bool, error) {
	if expr == "!bad" {
		return false, errors.New("invalid match expression !bad")
	}
	return m[expr], nil
}

type upperRedactor struct{ calls int }

func (r *upperRedactor) Redact(data any) any {
	r.calls++
	return r.scrub(data)
}

func (r *upperRedactor) scrub(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = r.scrub(val)
		}
		return out
	case string:
		if v == "hunter2" {
			return "[REDACTED]"
		}
	}
	return data
}

type memoryRuns struct {
	runs []*execution.AuditRun
}

func (m *memoryRuns) Save(_ context.Context, run *execution.AuditRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryRuns) FindByID(_ context.Context, id values.ExecutionID) (*execution.AuditRun, error) {
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memoryRuns) FindRecent(_ context.Context, limit int) ([]*execution.AuditRun, error) {
	if limit <= 0 || limit > len(m.runs) {
		limit = len(m.runs)
	}
	out := make([]*execution.AuditRun, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *memoryRuns) FindBetween(context.Context, time.Time, time.Time) ([]*execution.AuditRun, error) {
	return m.runs, nil
}

func profileSet(profiles map[string]entities.ProfileData) *entities.ProfileSet {
	set := entities.NewProfileSet()
	for k, d := range profiles {
		set.Put(entities.NewProfile(values.MustNewProfileKey(k), d))
	}
	return set
}

func newTestService(cat *ports.Catalog, cfg mockConfig, tops *mockTopfiles, matcher mockMatcher) (*AuditService, *mockCatalog) {
	if cfg == nil {
		cfg = mockConfig{}
	}
	if tops == nil {
		tops = &mockTopfiles{}
	}
	provider := &mockCatalog{catalog: cat}
	logger := discardLogger()
	runner := NewAuditRunner(sequentialExecutor{}, nil, logger)
	resolver := NewTopfileResolver(matcher, logger)
	return NewAuditService(provider, cfg, tops, runner, resolver, logger), provider
}

var _ ports.CatalogProvider = (*mockCatalog)(nil)
var _ ports.ConfigSource = mockConfig(nil)
var _ ports.TopfileSource = (*mockTopfiles)(nil)
var _ ports.HostMatcher = mockMatcher(nil)
var _ ports.Redactor = (*upperRedactor)(nil)
