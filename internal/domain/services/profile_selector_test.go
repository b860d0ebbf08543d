package services

import (
	"testing"

	"github.com/reglet-dev/nova/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet(keys ...string) *entities.ProfileSet {
	set := entities.NewProfileSet()
	for _, k := range keys {
		set.Put(profile(k, entities.ProfileData{"key": k}))
	}
	return set
}

func names(profiles []*entities.Profile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Key.String())
	}
	return out
}

func TestProfileSelector_SegmentPrefix(t *testing.T) {
	set := testSet("a/b/c", "a/bx/c")

	selected, errs := NewProfileSelector().Select([]string{"/a/b"}, set)

	assert.Empty(t, errs)
	assert.Equal(t, []string{"/a/b/c"}, names(selected))
	assert.Equal(t, "c", selected[0].Name())
}

func TestProfileSelector_RootMatchesAll(t *testing.T) {
	set := testSet("z", "a/b", "m/n/o")

	selected, errs := NewProfileSelector().Select([]string{"/"}, set)

	assert.Empty(t, errs)
	assert.Equal(t, []string{"/a/b", "/m/n/o", "/z"}, names(selected))
}

func TestProfileSelector_UnmatchedContinues(t *testing.T) {
	set := testSet("cis/centos-7", "cis/debian-9", "stig/rhel")

	selected, errs := NewProfileSelector().Select([]string{"/missing", "/cis", "/stig/rhel", "/cis/debian-9"}, set)

	assert.Equal(t, []string{"/cis/centos-7", "/cis/debian-9", "/stig/rhel"}, names(selected), "union without duplicates")
	require.Len(t, errs, 1)
	assert.Equal(t, "/missing", errs[0].Source)
	assert.Equal(t, "No matching profiles found for /missing", errs[0].Error)
}

func TestProfileSelector_EmptySet(t *testing.T) {
	selected, errs := NewProfileSelector().Select([]string{"/a"}, entities.NewProfileSet())
	assert.Empty(t, selected)
	assert.Len(t, errs, 1)
}
