package services

import (
	"testing"

	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopfileResolver_GroupsByTag(t *testing.T) {
	top := &entities.Topfile{
		Path: "top.nova",
		Matches: []entities.TopMatch{
			{Expression: "*", Entries: []any{"cve_scan", "cis_gen"}},
			{Expression: "web*", Entries: []any{"firewall"}},
			{Expression: "G@os_family:debian", Entries: []any{
				"netstat",
				map[string]any{"cis-debian-7-l2-scored": "CIS*"},
				map[string]any{"cis-debian-7-mysql57-l1-scored": "CIS 2.1.2"},
				map[string]any{"cis-debian-extra": "CIS*"},
			}},
		},
	}
	matcher := mockMatcher{"*": true, "G@os_family:debian": true}

	groups, errs := NewTopfileResolver(matcher, discardLogger()).Resolve(top)

	assert.Empty(t, errs)
	assert.Equal(t, []TagGroup{
		{Tags: "*", Requests: []string{"cve_scan", "cis_gen", "netstat"}},
		{Tags: "CIS*", Requests: []string{"cis-debian-7-l2-scored", "cis-debian-extra"}},
		{Tags: "CIS 2.1.2", Requests: []string{"cis-debian-7-mysql57-l1-scored"}},
	}, groups)
}

func TestTopfileResolver_MalformedEntries(t *testing.T) {
	top := &entities.Topfile{
		Path: "/srv/profiles/top.nova",
		Matches: []entities.TopMatch{
			{Expression: "*", Entries: []any{"good", 42, []any{"nested"}}},
			{Expression: "!bad", Entries: []any{"never"}},
		},
	}

	groups, errs := NewTopfileResolver(mockMatcher{"*": true}, discardLogger()).Resolve(top)

	assert.Equal(t, []TagGroup{{Tags: "*", Requests: []string{"good"}}}, groups)
	require.Len(t, errs, 3)
	for _, e := range errs {
		assert.Equal(t, "/srv/profiles/top.nova", e.Source)
	}
	assert.Equal(t, "topfile malformed, list entries must be strings or dicts: 42", errs[0].Error)
	assert.Contains(t, errs[2].Error, "invalid match expression")
}

func TestTopfileResolver_NoMatches(t *testing.T) {
	top := &entities.Topfile{Path: "top.nova", Matches: []entities.TopMatch{{Expression: "db*", Entries: []any{"x"}}}}

	groups, errs := NewTopfileResolver(mockMatcher{}, discardLogger()).Resolve(top)

	assert.Empty(t, groups)
	assert.Empty(t, errs)
}
