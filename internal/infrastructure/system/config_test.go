package system

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Nova.Verbose)
	assert.True(t, cfg.Nova.ShowSuccess)
	assert.True(t, cfg.Nova.ShowCompliance)
	assert.True(t, cfg.Nova.Autoload)
	assert.Equal(t, "top.nova", cfg.Nova.Topfile)
	assert.Positive(t, cfg.Nova.MaxConcurrentModules)
	assert.NotNil(t, cfg.Nova.NovaKwargs)
}

func TestDefaults_CoverEveryKey(t *testing.T) {
	d := Defaults()
	for _, key := range []string{"nova.verbose", "nova.show_success", "nova.show_compliance", "nova.autoload", "nova.topfile", "nova.redaction.hash_mode.salt"} {
		assert.Contains(t, d, key)
	}
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}
	require.NoError(t, v.ReadConfig(strings.NewReader(`
nova:
  verbose: true
  show_success: false
  module_timeout: 30s
  max_concurrent_modules: 0
  nova_kwargs:
    labels: prod
  redaction:
    patterns: ["INT-[0-9]+"]
    hash_mode:
      enabled: true
      salt: pepper
`)))

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.True(t, cfg.Nova.Verbose)
	assert.False(t, cfg.Nova.ShowSuccess)
	assert.True(t, cfg.Nova.ShowCompliance, "unset keys keep their default")
	assert.Equal(t, 30*time.Second, cfg.Nova.ModuleTimeout)
	assert.Positive(t, cfg.Nova.MaxConcurrentModules)
	assert.Equal(t, "prod", cfg.Nova.NovaKwargs["labels"])
	assert.Equal(t, []string{"INT-[0-9]+"}, cfg.Nova.Redaction.Patterns)
	assert.True(t, cfg.Nova.Redaction.HashMode.Enabled)
	assert.Equal(t, "pepper", cfg.Nova.Redaction.HashMode.Salt)
}
