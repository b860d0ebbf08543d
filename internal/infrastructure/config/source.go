package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/reglet-dev/nova/internal/infrastructure/system"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. NOVA_NOVA_VERBOSE.
	EnvPrefix = "NOVA"
	// ConfigName is the base name of the user configuration file.
	ConfigName = ".nova"
)

// LoadViper reads configuration from configFile, or from $HOME/.nova.yaml
// and ./.nova.yaml when configFile is empty, layered over the defaults from
// system.Defaults and under NOVA_* environment variables. A missing search
// path file is not an error; a missing explicit file is.
func LoadViper(configFile string, searchPaths ...string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range system.Defaults() {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.MergeInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}
	return v, nil
}

// ViperSource answers configuration lookups from a viper instance.
type ViperSource struct {
	v *viper.Viper
}

// NewViperSource wraps v.
func NewViperSource(v *viper.Viper) *ViperSource {
	return &ViperSource{v: v}
}

// Get returns the raw value for key, or def when the key is unset.
func (s *ViperSource) Get(key string, def any) any {
	if !s.v.IsSet(key) {
		return def
	}
	val := s.v.Get(key)
	if val == nil {
		return def
	}
	return val
}

// GetBool returns key as a bool. Values that cannot be read as a bool
// yield def.
func (s *ViperSource) GetBool(key string, def bool) bool {
	b, err := cast.ToBoolE(s.Get(key, def))
	if err != nil {
		return def
	}
	return b
}

// GetString returns key as a string, or def when unset or empty.
func (s *ViperSource) GetString(key, def string) string {
	str, err := cast.ToStringE(s.Get(key, def))
	if err != nil || str == "" {
		return def
	}
	return str
}

// GetStringMap returns key as a mapping. A missing or non-mapping value
// yields an empty map.
func (s *ViperSource) GetStringMap(key string) map[string]any {
	m, err := cast.ToStringMapE(s.Get(key, nil))
	if err != nil || m == nil {
		return map[string]any{}
	}
	return m
}
