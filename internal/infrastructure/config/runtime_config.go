package config

import (
	"runtime"
	"time"

	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/infrastructure/system"
)

// RuntimeConfig aggregates the execution tunables of an audit run.
type RuntimeConfig struct {
	ModuleTimeout        time.Duration
	MaxConcurrentModules int
	ErrorDataLimit       int
}

// FromSystemConfig creates RuntimeConfig from system config.
func FromSystemConfig(sys *system.Config) *RuntimeConfig {
	rc := &RuntimeConfig{
		ModuleTimeout:        sys.Nova.ModuleTimeout,
		MaxConcurrentModules: sys.Nova.MaxConcurrentModules,
	}
	rc.ApplyDefaults()
	return rc
}

// ApplyDefaults applies defaults for zero values. A zero ModuleTimeout
// means modules run without a deadline.
func (r *RuntimeConfig) ApplyDefaults() {
	if r.MaxConcurrentModules <= 0 {
		r.MaxConcurrentModules = runtime.NumCPU()
	}
	if r.ErrorDataLimit <= 0 {
		r.ErrorDataLimit = execution.DefaultDataLimit
	}
}
