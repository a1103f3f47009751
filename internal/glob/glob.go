// Package glob matches slash-separated paths against shell-style patterns.
//
// Patterns follow gobwas/glob syntax with '/' as the separator: '*' and '?'
// stop at a separator, '**' crosses separators, and '{a,b}' and '[abc]' sets
// are supported. A leading '!' negates a pattern.
package glob

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// compiled caches compiled patterns by their source text.
var compiled sync.Map // map[string]glob.Glob

// Matcher is a precompiled set of positive and negated patterns.
type Matcher struct {
	positive []glob.Glob
	negative []glob.Glob
}

// NewMatcher compiles patterns into a Matcher. Blank patterns are rejected.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		negated, body := splitNegation(p)
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("glob: blank pattern %q", p)
		}
		g, err := compile(body)
		if err != nil {
			return nil, err
		}
		if negated {
			m.negative = append(m.negative, g)
		} else {
			m.positive = append(m.positive, g)
		}
	}
	return m, nil
}

// Match reports whether path is selected by the matcher. A path is selected
// when it matches at least one positive pattern (or there are none) and no
// negated pattern. An empty matcher selects nothing.
func (m *Matcher) Match(path string) bool {
	if len(m.positive) == 0 && len(m.negative) == 0 {
		return false
	}
	path = Normalize(path)
	for _, g := range m.negative {
		if g.Match(path) {
			return false
		}
	}
	if len(m.positive) == 0 {
		return true
	}
	for _, g := range m.positive {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Match reports whether path matches patterns. Patterns that fail to compile
// never match.
func Match(path string, patterns []string) bool {
	m := &Matcher{}
	for _, p := range patterns {
		negated, body := splitNegation(p)
		g, err := compile(body)
		if err != nil || body == "" {
			continue
		}
		if negated {
			m.negative = append(m.negative, g)
		} else {
			m.positive = append(m.positive, g)
		}
	}
	return m.Match(path)
}

// Validate returns an error for the first pattern that does not compile.
func Validate(patterns []string) error {
	_, err := NewMatcher(patterns)
	return err
}

// Normalize converts OS separators to '/'.
func Normalize(path string) string {
	return filepath.ToSlash(path)
}

// HasMeta reports whether pattern contains any glob metacharacter.
func HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// StaticPrefix returns the leading directory of pattern that contains no
// metacharacters, e.g. "/repo/src" for "/repo/src/**/*.ts".
func StaticPrefix(pattern string) string {
	pattern = Normalize(pattern)
	if !HasMeta(pattern) {
		return pattern
	}
	idx := strings.IndexAny(pattern, "*?[{")
	prefix := pattern[:idx]
	if slash := strings.LastIndex(prefix, "/"); slash >= 0 {
		prefix = prefix[:slash]
	} else {
		prefix = ""
	}
	if prefix == "" && strings.HasPrefix(pattern, "/") {
		return "/"
	}
	return prefix
}

// Extensions derives file extensions (".ts") from extension patterns such as
// "**/*.ts" or "**/*.{ts,tsx}". Patterns without a literal extension suffix
// are skipped.
func Extensions(patterns []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(ext string) {
		if ext == "" || seen[ext] {
			return
		}
		seen[ext] = true
		out = append(out, ext)
	}
	for _, p := range patterns {
		if strings.HasPrefix(p, "!") {
			continue
		}
		base := p
		if slash := strings.LastIndex(base, "/"); slash >= 0 {
			base = base[slash+1:]
		}
		dot := strings.Index(base, ".")
		if dot < 0 {
			continue
		}
		suffix := base[dot:]
		if strings.HasPrefix(suffix, ".{") && strings.HasSuffix(suffix, "}") {
			for _, alt := range strings.Split(suffix[2:len(suffix)-1], ",") {
				if alt = strings.TrimSpace(alt); alt != "" && !HasMeta(alt) {
					add("." + alt)
				}
			}
			continue
		}
		if !HasMeta(suffix) {
			add(suffix)
		}
	}
	return out
}

func splitNegation(p string) (bool, string) {
	if strings.HasPrefix(p, "!") {
		return true, p[1:]
	}
	return false, p
}

func compile(pattern string) (glob.Glob, error) {
	pattern = Normalize(pattern)
	if g, ok := compiled.Load(pattern); ok {
		return g.(glob.Glob), nil
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("glob: compile %q: %w", pattern, err)
	}
	compiled.Store(pattern, g)
	return g, nil
}
