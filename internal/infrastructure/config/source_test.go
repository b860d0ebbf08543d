package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "nova.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadViper_Defaults(t *testing.T) {
	v, err := LoadViper("", t.TempDir())
	require.NoError(t, err)

	src := NewViperSource(v)
	assert.True(t, src.GetBool("nova.show_success", false))
	assert.False(t, src.GetBool("nova.verbose", true))
	assert.Equal(t, "top.nova", src.GetString("nova.topfile", ""))
}

func TestLoadViper_File(t *testing.T) {
	path := writeConfig(t, `
nova:
  verbose: true
  show_compliance: "false"
  nova_kwargs:
    labels: prod
`)
	v, err := LoadViper(path)
	require.NoError(t, err)

	src := NewViperSource(v)
	assert.True(t, src.GetBool("nova.verbose", false))
	assert.False(t, src.GetBool("nova.show_compliance", true))
	assert.Equal(t, map[string]any{"labels": "prod"}, src.GetStringMap("nova.nova_kwargs"))
}

func TestLoadViper_ExplicitFileMissing(t *testing.T) {
	_, err := LoadViper(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadViper_Environment(t *testing.T) {
	t.Setenv("NOVA_NOVA_VERBOSE", "true")

	v, err := LoadViper("", t.TempDir())
	require.NoError(t, err)
	assert.True(t, NewViperSource(v).GetBool("nova.verbose", false))
}

func TestViperSource_Fallbacks(t *testing.T) {
	path := writeConfig(t, "nova:\n  debug: maybe\n  nova_kwargs: not-a-map\n")
	v, err := LoadViper(path)
	require.NoError(t, err)
	src := NewViperSource(v)

	assert.True(t, src.GetBool("nova.debug", true), "unparseable bool falls back")
	assert.Equal(t, "dflt", src.GetString("nova.unknown", "dflt"))
	assert.Equal(t, 7, src.Get("nova.unknown", 7))
	assert.Empty(t, src.GetStringMap("nova.nova_kwargs"))
	assert.Empty(t, src.GetStringMap("nova.absent"))
}
