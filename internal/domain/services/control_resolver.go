package services

import (
	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/reglet-dev/nova/internal/domain/execution"
)

// ControlConflict records a control redeclared with a different reason by a
// later profile.
type ControlConflict struct {
	Tag            string
	Profile        string
	PreviousReason string
	Reason         string
}

// ControlSet is the normalized control mapping built from selected profiles.
type ControlSet struct {
	specs     map[string]entities.ControlSpec
	conflicts []ControlConflict
	errors    []execution.ErrorEntry
}

// Lookup returns the control declared for tag.
func (s *ControlSet) Lookup(tag string) (entities.ControlSpec, bool) {
	spec, ok := s.specs[tag]
	return spec, ok
}

// Len returns the number of controlled tags.
func (s *ControlSet) Len() int {
	return len(s.specs)
}

// Specs returns the tag to spec mapping.
func (s *ControlSet) Specs() map[string]entities.ControlSpec {
	return s.specs
}

// Conflicts lists tags whose reason changed between declarations.
func (s *ControlSet) Conflicts() []ControlConflict {
	return s.conflicts
}

// Errors lists malformed control entries, keyed by profile name.
func (s *ControlSet) Errors() []execution.ErrorEntry {
	return s.errors
}

// ControlResolver turns profile control sections into a ControlSet and uses
// it to reclassify failures as controlled.
type ControlResolver struct{}

// NewControlResolver creates a ControlResolver.
func NewControlResolver() *ControlResolver {
	return &ControlResolver{}
}

// Collect walks the control sections of profiles in the given order.
// A later declaration for the same tag replaces the earlier one.
func (r *ControlResolver) Collect(profiles []*entities.Profile) *ControlSet {
	set := &ControlSet{specs: make(map[string]entities.ControlSpec)}

	for _, p := range profiles {
		entries, err := p.Data.ControlEntries()
		if err != nil {
			rec := &entities.MalformedControlError{Profile: p.Name(), Cause: err}
			set.errors = append(set.errors, rec.Entry())
			continue
		}

		for _, raw := range entries {
			controls, err := entities.ParseControlEntry(raw)
			if err != nil {
				rec := &entities.MalformedControlError{Profile: p.Name(), Cause: err}
				set.errors = append(set.errors, rec.Entry())
				continue
			}
			for _, c := range controls {
				if prev, ok := set.specs[c.Tag]; ok && prev.Reason() != c.Spec.Reason() {
					set.conflicts = append(set.conflicts, ControlConflict{
						Tag:            c.Tag,
						Profile:        p.Name(),
						PreviousReason: prev.Reason(),
						Reason:         c.Spec.Reason(),
					})
				}
				set.specs[c.Tag] = c.Spec
			}
		}
	}
	return set
}

// Apply moves every failure whose tag is controlled into the Controlled
// class, annotated with the control reason. The remaining failures keep
// their relative order, as do the moved ones.
func (r *ControlResolver) Apply(env *execution.Envelope, controls *ControlSet) {
	if controls == nil || controls.Len() == 0 || len(env.Failure) == 0 {
		return
	}

	kept := make([]execution.ResultEntry, 0, len(env.Failure))
	for _, f := range env.Failure {
		spec, ok := controls.Lookup(f.Tag)
		if !ok {
			kept = append(kept, f)
			continue
		}
		env.Controlled = append(env.Controlled, f.WithControl(spec.Reason()))
	}
	env.Failure = kept
}

// Resolve collects controls from profiles, records malformed entries in env
// and reclassifies env's failures.
func (r *ControlResolver) Resolve(env *execution.Envelope, profiles []*entities.Profile) *ControlSet {
	set := r.Collect(profiles)
	env.Errors = append(env.Errors, set.Errors()...)
	r.Apply(env, set)
	return set
}
