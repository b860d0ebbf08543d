// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"time"

	"github.com/reglet-dev/nova/internal/application/dto"
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/reglet-dev/nova/internal/domain/execution"
)

// ConfigSource answers tunables by key. Lookups never fail: an absent or
// mistyped key yields the supplied default.
type ConfigSource interface {
	Get(key string, def any) any
	GetBool(key string, def bool) bool
	GetString(key, def string) string
	GetStringMap(key string) map[string]any
}

// ModuleProfile is one selected profile as handed to a module.
type ModuleProfile struct {
	Data entities.ProfileData `json:"data"`
	Name string               `json:"name"`
	Key  string               `json:"key"`
}

// ModuleRequest is the input every module receives in a run.
type ModuleRequest struct {
	Kwargs   map[string]any  `json:"kwargs"`
	Tags     string          `json:"tags"`
	Profiles []ModuleProfile `json:"profiles"`
}

// AuditModule evaluates the checks it understands in the selected profiles.
// Output that does not fit the envelope must be reported as an
// *execution.ContractViolationError.
type AuditModule interface {
	Name() string
	Audit(ctx context.Context, req ModuleRequest) (*execution.Envelope, error)
}

// ModuleOutcome is the result of running one module.
type ModuleOutcome struct {
	Envelope *execution.Envelope
	Err      error
	Module   string
	Duration time.Duration
}

// ModuleExecutor runs every module once with the same request. Outcomes are
// returned in module order regardless of completion order.
type ModuleExecutor interface {
	Execute(ctx context.Context, modules []AuditModule, req ModuleRequest) []ModuleOutcome
}

// Catalog is an immutable snapshot of what the loader found.
type Catalog struct {
	Profiles        *entities.ProfileSet
	Modules         []AuditModule
	MissingModules  []string
	MissingProfiles []string
}

// IsEmpty reports whether the catalog holds no modules to run.
func (c *Catalog) IsEmpty() bool {
	return c == nil || len(c.Modules) == 0
}

// CatalogProvider loads modules and profiles and hands out snapshots.
type CatalogProvider interface {
	// Load rebuilds the catalog from its sources.
	Load(ctx context.Context) (*Catalog, error)
	// Current returns the last loaded catalog, or nil before the first load.
	Current() *Catalog
}

// HostMatcher evaluates compound match expressions against the local host.
type HostMatcher interface {
	Matches(expression string) (bool, error)
}

// TopfileSource reads a topfile. Unreadable or malformed files are
// reported as *apperrors.ConfigurationError.
type TopfileSource interface {
	LoadTopfile(ctx context.Context, path string) (*entities.Topfile, error)
}

// Redactor scrubs secrets from report data.
type Redactor interface {
	Redact(data any) any
}

// OutputFormatter renders a report.
type OutputFormatter interface {
	Format(report *dto.Report) error
}
