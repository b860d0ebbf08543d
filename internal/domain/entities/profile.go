// Package entities contains the profile, control and topfile types of the
// audit domain. They carry no infrastructure dependencies.
package entities

import (
	"fmt"
	"sort"

	"github.com/reglet-dev/nova/internal/domain/values"
)

// Reserved top-level keys of a profile document.
const (
	SectionControl  = "control"
	SectionRequires = "requires"
)

// ProfileData is a parsed profile document. Apart from the control and
// requires sections its content is opaque; each audit module reads the
// section it understands.
type ProfileData map[string]any

// Section returns the named top-level section.
func (d ProfileData) Section(name string) (any, bool) {
	v, ok := d[name]
	return v, ok
}

// ControlEntries returns the raw entries of the control section. A missing
// section yields nil; a section that is not a list is an error.
func (d ProfileData) ControlEntries() ([]any, error) {
	raw, ok := d[SectionControl]
	if !ok || raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("control section must be a list, got %T", raw)
	}
	return entries, nil
}

// Requires returns the version constraint the profile declares, if any.
func (d ProfileData) Requires() string {
	if v, ok := d[SectionRequires]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// Profile is one loaded profile document and the key it was loaded under.
type Profile struct {
	Data ProfileData
	Key  values.ProfileKey
}

// NewProfile pairs a key with its document.
func NewProfile(key values.ProfileKey, data ProfileData) *Profile {
	if data == nil {
		data = ProfileData{}
	}
	return &Profile{Key: key, Data: data}
}

// Name returns the short name modules see: the last key segment.
func (p *Profile) Name() string {
	return p.Key.ShortName()
}

// ProfileSet is the collection of profiles produced by one load.
// Keys are unique; putting an existing key replaces the previous profile.
type ProfileSet struct {
	profiles map[values.ProfileKey]*Profile
}

// NewProfileSet creates an empty set.
func NewProfileSet() *ProfileSet {
	return &ProfileSet{profiles: make(map[values.ProfileKey]*Profile)}
}

// Put adds or replaces a profile.
func (s *ProfileSet) Put(p *Profile) {
	s.profiles[p.Key] = p
}

// Get returns the profile loaded under key.
func (s *ProfileSet) Get(key values.ProfileKey) (*Profile, bool) {
	p, ok := s.profiles[key]
	return p, ok
}

// Len returns the number of profiles.
func (s *ProfileSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.profiles)
}

// Keys returns every key in lexical order.
func (s *ProfileSet) Keys() []values.ProfileKey {
	if s == nil {
		return nil
	}
	keys := make([]values.ProfileKey, 0, len(s.profiles))
	for k := range s.profiles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Clone returns a shallow snapshot. Profile documents are shared and must be
// treated as read-only.
func (s *ProfileSet) Clone() *ProfileSet {
	c := NewProfileSet()
	if s == nil {
		return c
	}
	for k, p := range s.profiles {
		c.profiles[k] = p
	}
	return c
}
