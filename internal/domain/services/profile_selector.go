package services

import (
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/reglet-dev/nova/internal/domain/execution"
	"github.com/reglet-dev/nova/internal/domain/values"
)

// ProfileSelector resolves profile requests against a loaded ProfileSet.
type ProfileSelector struct{}

// NewProfileSelector creates a ProfileSelector.
func NewProfileSelector() *ProfileSelector {
	return &ProfileSelector{}
}

// Select returns every profile whose key has one of requests as a segment
// prefix, once each and in key order. Requests are rooted paths such as
// "/cis/centos-7"; the bare separator selects everything. A request that
// matches nothing yields one error entry keyed by the request.
func (s *ProfileSelector) Select(requests []string, set *entities.ProfileSet) ([]*entities.Profile, []execution.ErrorEntry) {
	keys := set.Keys()
	selected := make(map[values.ProfileKey]bool, len(keys))
	var errs []execution.ErrorEntry

	for _, req := range requests {
		found := false
		for _, k := range keys {
			if k.HasPrefix(req) {
				selected[k] = true
				found = true
			}
		}
		if !found {
			rec := &entities.SelectionError{Request: req}
			errs = append(errs, rec.Entry())
		}
	}

	profiles := make([]*entities.Profile, 0, len(selected))
	for _, k := range keys {
		if selected[k] {
			p, _ := set.Get(k)
			profiles = append(profiles, p)
		}
	}
	return profiles, errs
}
