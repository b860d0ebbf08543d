// Package version reports the nova build and the module contract it speaks.
package version

import (
	"fmt"
	"runtime"
)

// ModuleContract is the version of the audit module contract. External
// modules receive it in their request so they can refuse unknown layouts.
const ModuleContract = "v2017.9.0"

var (
	// Version is the semantic version (set by build flags)
	Version = "dev"
	// Commit is the git commit hash (set by build flags)
	Commit = "unknown"
	// BuildDate is the build date (set by build flags)
	BuildDate = "unknown"
)

// Info describes a nova build.
type Info struct {
	Version        string `json:"version" yaml:"version"`
	Commit         string `json:"commit" yaml:"commit"`
	BuildDate      string `json:"build_date" yaml:"build_date"`
	GoVersion      string `json:"go_version" yaml:"go_version"`
	Platform       string `json:"platform" yaml:"platform"`
	ModuleContract string `json:"module_contract" yaml:"module_contract"`
}

// Get collects the build information of the running binary.
func Get() Info {
	return Info{
		Version:        Version,
		Commit:         Commit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
		ModuleContract: ModuleContract,
	}
}

func (i Info) String() string {
	return i.Version
}

// Full renders every field on one line.
func (i Info) Full() string {
	return fmt.Sprintf("nova %s (commit %s, built %s) %s %s, module contract %s",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform, i.ModuleContract)
}
