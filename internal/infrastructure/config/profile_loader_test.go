package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/nova/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return dir
}

func TestProfileTreeLoader_Load(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"cis/centos-7.yaml":     "stat:\n  - tag: CIS-1\n    path: /etc/passwd\n",
		"cis/centos-7-web.yml":  "grep:\n  - tag: CIS-2\n",
		"network/ssh.yaml":      "control:\n  - CIS-1: accepted\n",
		"README.md":             "# not a profile",
		"broken/bad.yaml":       "stat: [[[",
		"network/empty.yaml":    "",
	})

	tree, err := NewProfileTreeLoader("dev", nil).Load(context.Background(), dir)
	require.NoError(t, err)

	keys := make([]string, 0, tree.Profiles.Len())
	for _, k := range tree.Profiles.Keys() {
		keys = append(keys, k.String())
	}
	assert.Equal(t, []string{"/cis/centos-7", "/cis/centos-7-web", "/network/empty", "/network/ssh"}, keys)
	assert.Equal(t, []string{"/broken/bad"}, tree.Missing)

	p, ok := tree.Profiles.Get(values.MustNewProfileKey("cis/centos-7"))
	require.True(t, ok)
	assert.Equal(t, "centos-7", p.Name())
	assert.Contains(t, p.Data, "stat")
}

func TestProfileTreeLoader_Requires(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"new.yaml":     "requires: '>= 3.0.0'\nstat: []\n",
		"ok.yaml":      "requires: '^2.1'\nstat: []\n",
		"garbled.yaml": "requires: 'not a constraint'\n",
	})

	tree, err := NewProfileTreeLoader("2.4.0", nil).Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, tree.Profiles.Len())
	_, ok := tree.Profiles.Get(values.MustNewProfileKey("ok"))
	assert.True(t, ok)
	assert.Equal(t, []string{"/garbled", "/new"}, tree.Missing)
}

func TestProfileTreeLoader_DevVersionSkipsRequires(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"new.yaml": "requires: '>= 99.0.0'\n",
	})

	tree, err := NewProfileTreeLoader("dev", nil).Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Profiles.Len())
	assert.Empty(t, tree.Missing)
}

func TestProfileTreeLoader_MissingDirectory(t *testing.T) {
	_, err := NewProfileTreeLoader("dev", nil).Load(context.Background(), filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open profile directory")
}

func TestProfileTreeLoader_Cancelled(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.yaml": "stat: []\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProfileTreeLoader("dev", nil).Load(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}
