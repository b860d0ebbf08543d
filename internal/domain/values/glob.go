package values

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// Glob is a shell-style pattern: '*' matches any run of characters
// (separators and newlines included), '?' one character, and '[...]' a character class
// with '!' or '^' negation.
type Glob struct {
	re      *regexp.Regexp
	pattern string
}

var globCache sync.Map // pattern -> *Glob

// CompileGlob compiles pattern, reusing earlier compilations.
func CompileGlob(pattern string) (*Glob, error) {
	if g, ok := globCache.Load(pattern); ok {
		return g.(*Glob), nil
	}

	re, err := regexp.Compile(globToRegexp(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
	}
	g := &Glob{pattern: pattern, re: re}
	globCache.Store(pattern, g)
	return g, nil
}

// Match reports whether s matches the whole pattern.
func (g *Glob) Match(s string) bool {
	return g.re.MatchString(s)
}

func (g *Glob) String() string {
	return g.pattern
}

// GlobMatch compiles pattern and matches s against it. An invalid pattern
// never matches.
func GlobMatch(pattern, s string) bool {
	g, err := CompileGlob(pattern)
	if err != nil {
		return false
	}
	return g.Match(s)
}

func globToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("(?s)^")
	for i := 0; i < len(pattern); {
		r, size := utf8.DecodeRuneInString(pattern[i:])
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			if j < len(pattern) && (pattern[j] == '!' || pattern[j] == '^') {
				j++
			}
			if j < len(pattern) && pattern[j] == ']' {
				j++
			}
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j >= len(pattern) {
				// Unterminated class is a literal bracket.
				b.WriteString(`\[`)
				break
			}
			class := pattern[i+1 : j]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			size = j + 1 - i
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
		i += size
	}
	b.WriteString("$")
	return b.String()
}
