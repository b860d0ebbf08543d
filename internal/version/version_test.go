package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, "v2017.9.0", info.ModuleContract)
}

func TestInfo_Full(t *testing.T) {
	info := Info{Version: "1.2.3", Commit: "abc", BuildDate: "today", GoVersion: "go1.25", Platform: "linux/amd64", ModuleContract: ModuleContract}

	full := info.Full()
	assert.True(t, strings.HasPrefix(full, "nova 1.2.3 (commit abc"))
	assert.Contains(t, full, ModuleContract)
	assert.Equal(t, "1.2.3", info.String())
}
