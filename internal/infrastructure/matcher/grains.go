package matcher

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cast"
)

// OSReleasePath is where Linux distributions describe themselves.
var OSReleasePath = "/etc/os-release"

// DetectGrains collects the host facts compound expressions match against.
// Values in overrides replace detected ones; id, when not empty, replaces
// the hostname as the host id.
func DetectGrains(id string, overrides map[string]any) map[string]any {
	grains := map[string]any{
		"kernel":  kernelName(runtime.GOOS),
		"cpuarch": runtime.GOARCH,
	}

	if host, err := os.Hostname(); err == nil {
		grains["host"] = host
		grains["id"] = host
	}

	if f, err := os.Open(OSReleasePath); err == nil {
		for k, v := range osGrains(parseOSRelease(f)) {
			grains[k] = v
		}
		_ = f.Close()
	}

	if id != "" {
		grains["id"] = id
	}
	for k, v := range overrides {
		grains[k] = v
	}
	return grains
}

func kernelName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	default:
		return goos
	}
}

// parseOSRelease reads KEY=value lines, unquoting values.
func parseOSRelease(r io.Reader) map[string]string {
	out := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[key] = strings.Trim(val, `"'`)
	}
	return out
}

func osGrains(release map[string]string) map[string]any {
	grains := make(map[string]any)
	if name := release["NAME"]; name != "" {
		grains["os"] = strings.Fields(name)[0]
	}
	if id := release["ID"]; id != "" {
		grains["os_id"] = id
		grains["os_family"] = id
	}
	if like := release["ID_LIKE"]; like != "" {
		grains["os_family"] = strings.Fields(like)[0]
	}
	if ver := release["VERSION_ID"]; ver != "" {
		grains["osrelease"] = ver
		grains["osmajorrelease"] = strings.SplitN(ver, ".", 2)[0]
	}
	return grains
}

// lookup resolves a colon-delimited grain path such as ec2:instance_type.
func lookup(grains map[string]any, path []string) (any, bool) {
	var cur any = grains
	for _, seg := range path {
		m, err := cast.ToStringMapE(cur)
		if err != nil {
			return nil, false
		}
		next, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// grainStrings flattens a grain value into the strings to match. Lists
// match when any element matches.
func grainStrings(v any) []string {
	switch t := v.(type) {
	case []any, []string:
		return cast.ToStringSlice(t)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil
		}
		return []string{s}
	}
}
