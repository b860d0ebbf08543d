package entities

import (
	"fmt"
	"sort"
)

// DefaultTagFilter is the tag glob applied to top entries that name no filter.
const DefaultTagFilter = "*"

// Topfile maps host match expressions to the profile requests that apply to
// matching hosts.
type Topfile struct {
	Path    string
	Matches []TopMatch
}

// TopMatch is one match expression and its raw, unvalidated entries.
type TopMatch struct {
	Expression string
	Entries    []any
}

// TopEntry is a profile request with the tag filter to audit it under.
type TopEntry struct {
	Request string
	Tags    string
}

// ParseTopEntry normalizes one list entry of a topfile. A string entry uses
// the default tag filter; a mapping entry yields one request per key with
// its value as the filter.
func ParseTopEntry(raw any) ([]TopEntry, error) {
	switch v := raw.(type) {
	case string:
		return []TopEntry{{Request: v, Tags: DefaultTagFilter}}, nil
	case map[string]any:
		return topEntriesFromMap(v), nil
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = val
		}
		return topEntriesFromMap(m), nil
	default:
		return nil, fmt.Errorf("topfile malformed, list entries must be strings or dicts: %v", raw)
	}
}

func topEntriesFromMap(m map[string]any) []TopEntry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]TopEntry, 0, len(keys))
	for _, k := range keys {
		tags := DefaultTagFilter
		if m[k] != nil {
			tags = fmt.Sprint(m[k])
		}
		out = append(out, TopEntry{Request: k, Tags: tags})
	}
	return out
}
