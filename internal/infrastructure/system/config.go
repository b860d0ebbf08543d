// Package system provides the typed nova settings block loaded from the
// user configuration file (~/.nova.yaml) and NOVA_* environment variables.
package system

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config is the root of the configuration file. Every setting lives under
// the nova key.
type Config struct {
	Nova NovaConfig `mapstructure:"nova" yaml:"nova"`
}

// NovaConfig holds the audit settings.
type NovaConfig struct {
	NovaKwargs           map[string]any  `mapstructure:"nova_kwargs" yaml:"nova_kwargs"`
	Grains               map[string]any  `mapstructure:"grains" yaml:"grains"`
	ModuleDir            string          `mapstructure:"module_dir" yaml:"module_dir"`
	ProfileDir           string          `mapstructure:"profile_dir" yaml:"profile_dir"`
	Topfile              string          `mapstructure:"topfile" yaml:"topfile"`
	ID                   string          `mapstructure:"id" yaml:"id"`
	Redaction            RedactionConfig `mapstructure:"redaction" yaml:"redaction"`
	ModuleTimeout        time.Duration   `mapstructure:"module_timeout" yaml:"module_timeout"`
	MaxConcurrentModules int             `mapstructure:"max_concurrent_modules" yaml:"max_concurrent_modules"`
	Verbose              bool            `mapstructure:"verbose" yaml:"verbose"`
	ShowSuccess          bool            `mapstructure:"show_success" yaml:"show_success"`
	ShowCompliance       bool            `mapstructure:"show_compliance" yaml:"show_compliance"`
	Debug                bool            `mapstructure:"debug" yaml:"debug"`
	Autoload             bool            `mapstructure:"autoload" yaml:"autoload"`
}

// RedactionConfig configures how secrets are scrubbed from reports.
type RedactionConfig struct {
	HashMode        HashModeConfig `mapstructure:"hash_mode" yaml:"hash_mode"`
	Patterns        []string       `mapstructure:"patterns" yaml:"patterns"`
	Paths           []string       `mapstructure:"paths" yaml:"paths"`
	DisableGitleaks bool           `mapstructure:"disable_gitleaks" yaml:"disable_gitleaks"`
}

// HashModeConfig controls hash-based redaction.
type HashModeConfig struct {
	Salt    string `mapstructure:"salt" yaml:"salt"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultConfig returns a Config with safe defaults for all fields.
// This is used when no configuration file exists.
func DefaultConfig() *Config {
	return &Config{
		Nova: NovaConfig{
			NovaKwargs:           map[string]any{},
			Grains:               map[string]any{},
			ModuleDir:            "/var/lib/nova/modules",
			ProfileDir:           "/var/lib/nova/profiles",
			Topfile:              "top.nova",
			MaxConcurrentModules: runtime.NumCPU(),
			Verbose:              false,
			ShowSuccess:          true,
			ShowCompliance:       true,
			Debug:                false,
			Autoload:             true,
			Redaction: RedactionConfig{
				Patterns: []string{},
				Paths:    []string{},
			},
		},
	}
}

// Defaults flattens DefaultConfig into dotted viper keys.
func Defaults() map[string]any {
	d := DefaultConfig().Nova
	return map[string]any{
		"nova.verbose":                     d.Verbose,
		"nova.show_success":                d.ShowSuccess,
		"nova.show_compliance":             d.ShowCompliance,
		"nova.debug":                       d.Debug,
		"nova.autoload":                    d.Autoload,
		"nova.nova_kwargs":                 d.NovaKwargs,
		"nova.grains":                      d.Grains,
		"nova.module_dir":                  d.ModuleDir,
		"nova.profile_dir":                 d.ProfileDir,
		"nova.topfile":                     d.Topfile,
		"nova.id":                          d.ID,
		"nova.module_timeout":              d.ModuleTimeout,
		"nova.max_concurrent_modules":      d.MaxConcurrentModules,
		"nova.redaction.patterns":          d.Redaction.Patterns,
		"nova.redaction.paths":             d.Redaction.Paths,
		"nova.redaction.disable_gitleaks":  d.Redaction.DisableGitleaks,
		"nova.redaction.hash_mode.enabled": d.Redaction.HashMode.Enabled,
		"nova.redaction.hash_mode.salt":    d.Redaction.HashMode.Salt,
	}
}

// FromViper decodes the typed settings from a loaded viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse nova configuration: %w", err)
	}
	if cfg.Nova.MaxConcurrentModules <= 0 {
		cfg.Nova.MaxConcurrentModules = runtime.NumCPU()
	}
	return cfg, nil
}
