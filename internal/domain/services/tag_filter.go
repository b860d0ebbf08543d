package services

import (
	"github.com/reglet-dev/nova/internal/domain/values"
)

// TagFilter decides which checks a module evaluates for a tag glob.
type TagFilter struct {
	glob *values.Glob
}

// NewTagFilter compiles a tag glob. An empty glob selects every tag.
func NewTagFilter(pattern string) (*TagFilter, error) {
	if pattern == "" {
		pattern = "*"
	}
	g, err := values.CompileGlob(pattern)
	if err != nil {
		return nil, err
	}
	return &TagFilter{glob: g}, nil
}

// Matches reports whether a check with this tag should run.
func (f *TagFilter) Matches(tag string) bool {
	return f.glob.Match(tag)
}

func (f *TagFilter) String() string {
	return f.glob.String()
}
