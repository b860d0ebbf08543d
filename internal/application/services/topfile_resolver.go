package services

import (
	"log/slog"

	"github.com/reglet-dev/nova/internal/application/ports"
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/reglet-dev/nova/internal/domain/execution"
)

// TagGroup is a batch of profile requests audited under one tag filter.
type TagGroup struct {
	Tags     string
	Requests []string
}

// TopfileResolver turns a topfile into the tag groups that apply to this
// host.
type TopfileResolver struct {
	matcher ports.HostMatcher
	logger  *slog.Logger
}

// NewTopfileResolver creates a TopfileResolver.
func NewTopfileResolver(matcher ports.HostMatcher, logger *slog.Logger) *TopfileResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &TopfileResolver{matcher: matcher, logger: logger}
}

// Resolve evaluates each match expression in file order and groups the
// entries of matching expressions by tag filter. Groups and their requests
// keep first-seen order. Malformed entries and expressions the matcher
// rejects are returned as error entries keyed by the topfile path.
func (r *TopfileResolver) Resolve(top *entities.Topfile) ([]TagGroup, []execution.ErrorEntry) {
	var (
		groups []TagGroup
		errs   []execution.ErrorEntry
	)
	index := make(map[string]int)

	for _, m := range top.Matches {
		ok, err := r.matcher.Matches(m.Expression)
		if err != nil {
			rec := &entities.MalformedTopEntryError{Topfile: top.Path, Cause: err}
			r.logger.Error("topfile match expression failed", "expression", m.Expression, "error", err)
			errs = append(errs, rec.Entry())
			continue
		}
		if !ok {
			r.logger.Debug("topfile match skipped", "expression", m.Expression)
			continue
		}

		for _, raw := range m.Entries {
			entries, err := entities.ParseTopEntry(raw)
			if err != nil {
				rec := &entities.MalformedTopEntryError{Topfile: top.Path, Cause: err}
				r.logger.Error(err.Error())
				errs = append(errs, rec.Entry())
				continue
			}
			for _, e := range entries {
				i, seen := index[e.Tags]
				if !seen {
					i = len(groups)
					index[e.Tags] = i
					groups = append(groups, TagGroup{Tags: e.Tags})
				}
				groups[i].Requests = append(groups[i].Requests, e.Request)
			}
		}
	}
	return groups, errs
}
