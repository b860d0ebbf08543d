// Package dto contains data transfer objects for application layer use cases.
package dto

import (
	"strings"
)

// DisplayOptions are the tri-state display flags of a request. A nil field
// falls back to configuration.
type DisplayOptions struct {
	Verbose        *bool
	ShowSuccess    *bool
	ShowCompliance *bool
	Debug          *bool
	// ShowProfile is accepted for compatibility and ignored.
	ShowProfile *bool
}

// AuditRequest asks for an audit of explicit profile requests.
type AuditRequest struct {
	Kwargs map[string]any
	// Tags is the tag glob; empty means "*".
	Tags string
	// Topfile is used when Configs is nil.
	Topfile string
	// Configs are dotted profile requests such as "cis.centos-7". A nil
	// slice delegates the run to the topfile.
	Configs []string
	Display DisplayOptions
}

// TopRequest asks for an audit driven by a topfile.
type TopRequest struct {
	// Topfile is relative to the profile directory; empty uses the
	// configured default.
	Topfile string
	Display DisplayOptions
}

// SplitConfigs splits a comma-separated configs argument. Items are trimmed
// but kept when blank; a blank item requests every profile.
func SplitConfigs(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, c := range parts {
		out = append(out, strings.TrimSpace(c))
	}
	return out
}

// Bool returns a pointer to b, for building DisplayOptions.
func Bool(b bool) *bool {
	return &b
}
