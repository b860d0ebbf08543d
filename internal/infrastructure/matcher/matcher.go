// Package matcher evaluates compound host match expressions, the keys of a
// topfile, against the local host's grains.
//
// An expression is a whitespace separated sequence of terms and the
// operators and, or, not, ( and ). A term is one of:
//
//	web*            glob on the host id
//	G@os:CentOS     glob on a grain (nested grains use more colons)
//	P@os:(Cent|RH)  regular expression on a grain
//	E@web\d+        regular expression on the host id
//	L@web1,web2     host id in list
package matcher

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reglet-dev/nova/internal/domain/values"
)

const maxASTNodes = 200

// term is one leaf of a compound expression.
type term func(m *Matcher) (bool, error)

// compiled is a parsed expression: its boolean skeleton compiled with
// expr-lang and the terms feeding it.
type compiled struct {
	program *vm.Program
	terms   []term
}

// Matcher matches expressions against a fixed set of grains. It is safe for
// concurrent use.
type Matcher struct {
	grains       map[string]any
	programCache map[string]*compiled
	id           string
	cacheMu      sync.RWMutex
}

// New creates a matcher for grains. The host id is grains["id"].
func New(grains map[string]any) *Matcher {
	if grains == nil {
		grains = map[string]any{}
	}
	id, _ := grains["id"].(string)
	return &Matcher{
		grains:       grains,
		id:           id,
		programCache: make(map[string]*compiled),
	}
}

// ID returns the host id terms without an engine prefix match against.
func (m *Matcher) ID() string {
	return m.id
}

// Matches reports whether the host matches expression.
func (m *Matcher) Matches(expression string) (bool, error) {
	c, err := m.getOrCompile(expression)
	if err != nil {
		return false, err
	}

	results := make([]bool, len(c.terms))
	for i, t := range c.terms {
		ok, err := t(m)
		if err != nil {
			return false, fmt.Errorf("match %q: %w", expression, err)
		}
		results[i] = ok
	}

	out, err := expr.Run(c.program, map[string]any{"t": results})
	if err != nil {
		return false, fmt.Errorf("match %q: %w", expression, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("match %q did not evaluate to a boolean", expression)
	}
	return matched, nil
}

// getOrCompile retrieves a cached expression or compiles and caches a new one.
func (m *Matcher) getOrCompile(expression string) (*compiled, error) {
	m.cacheMu.RLock()
	c, found := m.programCache[expression]
	m.cacheMu.RUnlock()
	if found {
		return c, nil
	}

	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	// Double-check after acquiring write lock
	if c, found := m.programCache[expression]; found {
		return c, nil
	}

	c, err := compile(expression)
	if err != nil {
		return nil, err
	}
	m.programCache[expression] = c
	return c, nil
}

// compile rewrites expression into "t[0] and (t[1] or not t[2])" form. Only
// the operator words survive into the expr-lang source, so terms cannot
// inject code.
func compile(expression string) (*compiled, error) {
	fields := strings.Fields(expression)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty match expression")
	}

	c := &compiled{}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "and", "or", "not", "(", ")":
			parts = append(parts, strings.ToLower(f))
			continue
		}
		t, err := parseTerm(f)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", expression, err)
		}
		parts = append(parts, fmt.Sprintf("t[%d]", len(c.terms)))
		c.terms = append(c.terms, t)
	}

	program, err := expr.Compile(strings.Join(parts, " "),
		expr.Env(map[string]any{"t": []bool{}}),
		expr.AsBool(),
		expr.MaxNodes(maxASTNodes),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid match expression %q: %w", expression, err)
	}
	c.program = program
	return c, nil
}

func parseTerm(f string) (term, error) {
	engine, arg, ok := strings.Cut(f, "@")
	if !ok || len(engine) != 1 {
		g, err := values.CompileGlob(f)
		if err != nil {
			return nil, err
		}
		return func(m *Matcher) (bool, error) { return g.Match(m.id), nil }, nil
	}

	switch engine {
	case "G":
		path, pattern, err := splitGrain(arg)
		if err != nil {
			return nil, err
		}
		g, err := values.CompileGlob(pattern)
		if err != nil {
			return nil, err
		}
		return grainTerm(path, g.Match), nil
	case "P":
		path, pattern, err := splitGrain(arg)
		if err != nil {
			return nil, err
		}
		re, err := anchored(pattern)
		if err != nil {
			return nil, err
		}
		return grainTerm(path, re.MatchString), nil
	case "E":
		re, err := anchored(arg)
		if err != nil {
			return nil, err
		}
		return func(m *Matcher) (bool, error) { return re.MatchString(m.id), nil }, nil
	case "L":
		ids := strings.Split(arg, ",")
		return func(m *Matcher) (bool, error) {
			for _, id := range ids {
				if strings.TrimSpace(id) == m.id {
					return true, nil
				}
			}
			return false, nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported match engine %q", engine+"@")
	}
}

func grainTerm(path []string, match func(string) bool) term {
	return func(m *Matcher) (bool, error) {
		v, ok := lookup(m.grains, path)
		if !ok {
			return false, nil
		}
		for _, s := range grainStrings(v) {
			if match(s) {
				return true, nil
			}
		}
		return false, nil
	}
}

func splitGrain(arg string) ([]string, string, error) {
	i := strings.LastIndex(arg, ":")
	if i <= 0 {
		return nil, "", fmt.Errorf("grain match %q must be grain:pattern", arg)
	}
	return strings.Split(arg[:i], ":"), arg[i+1:], nil
}

func anchored(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	return re, nil
}
