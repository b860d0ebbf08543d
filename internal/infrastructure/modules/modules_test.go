package modules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/entities"
)

func request(tags string, profiles ...ports.ModuleProfile) ports.ModuleRequest {
	return ports.ModuleRequest{Tags: tags, Profiles: profiles}
}

func profile(key string, data entities.ProfileData) ports.ModuleProfile {
	return ports.ModuleProfile{Key: key, Name: filepath.Base(key), Data: data}
}

func writeFile(t *testing.T, dir, name, content string, perm os.FileMode) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), perm))
	require.NoError(t, os.Chmod(p, perm))
	return p
}
