// Package engine runs audit modules concurrently with per-module deadlines
// and panic isolation.
package engine

import (
	"runtime"
	"time"
)

// MinConcurrentModules is the minimum number of concurrent module runs,
// ensuring reasonable parallelism even on single-core systems.
const MinConcurrentModules = 4

// ExecutionConfig controls execution behavior.
type ExecutionConfig struct {
	// ModuleTimeout bounds a single module run. Zero disables the deadline.
	ModuleTimeout        time.Duration
	MaxConcurrentModules int
}

// DefaultExecutionConfig returns sensible defaults for parallel execution.
func DefaultExecutionConfig() ExecutionConfig {
	maxModules := runtime.NumCPU()
	if maxModules < MinConcurrentModules {
		maxModules = MinConcurrentModules
	}
	return ExecutionConfig{MaxConcurrentModules: maxModules}
}
