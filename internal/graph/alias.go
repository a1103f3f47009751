package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// PathAliases maps import prefixes to directories, as declared by a
// tsconfig/jsconfig "compilerOptions.paths" block.
type PathAliases struct {
	baseDir string
	entries []aliasEntry
}

type aliasEntry struct {
	prefix   string   // "@domain/" for "@domain/*", "@config" for an exact alias
	wildcard bool
	targets  []string // absolute, with "*" kept for wildcard targets
}

// tsConfig is a minimal representation for reading tsconfig.json files.
type tsConfig struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// comments strips // and /* */ comments outside of strings; tsconfig files
// are JSONC.
var comments = regexp.MustCompile(`("(?:\\.|[^"\\])*")|//[^\n]*|/\*[\s\S]*?\*/`)

// trailingCommas strips commas directly before a closing bracket.
var trailingCommas = regexp.MustCompile(`,(\s*[}\]])`)

// LoadPathAliases reads the alias configuration at configPath. Relative
// targets resolve against baseUrl, itself relative to the config file.
func LoadPathAliases(configPath string) (*PathAliases, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read path alias config: %w", err)
	}

	clean := comments.ReplaceAllFunc(data, func(m []byte) []byte {
		if len(m) > 0 && m[0] == '"' {
			return m
		}
		return nil
	})
	clean = trailingCommas.ReplaceAll(clean, []byte("$1"))

	var cfg tsConfig
	if err := json.Unmarshal(clean, &cfg); err != nil {
		return nil, fmt.Errorf("parse path alias config %s: %w", configPath, err)
	}

	base := filepath.Join(filepath.Dir(configPath), cfg.CompilerOptions.BaseURL)
	aliases := &PathAliases{baseDir: base}

	for pattern, targets := range cfg.CompilerOptions.Paths {
		entry := aliasEntry{prefix: pattern}
		if strings.HasSuffix(pattern, "*") {
			entry.prefix = strings.TrimSuffix(pattern, "*")
			entry.wildcard = true
		}
		for _, t := range targets {
			entry.targets = append(entry.targets, filepath.Join(base, t))
		}
		aliases.entries = append(aliases.entries, entry)
	}

	// Longest prefix wins, matching TypeScript's resolution.
	sort.Slice(aliases.entries, func(i, j int) bool {
		pi, pj := aliases.entries[i].prefix, aliases.entries[j].prefix
		if len(pi) != len(pj) {
			return len(pi) > len(pj)
		}
		return pi < pj
	})
	return aliases, nil
}

// Expand returns candidate absolute base paths for target, or nil when no
// alias applies.
func (a *PathAliases) Expand(target string) []string {
	if a == nil {
		return nil
	}
	for _, e := range a.entries {
		if e.wildcard {
			if !strings.HasPrefix(target, e.prefix) {
				continue
			}
			rest := strings.TrimPrefix(target, e.prefix)
			out := make([]string, 0, len(e.targets))
			for _, t := range e.targets {
				out = append(out, strings.Replace(t, "*", rest, 1))
			}
			return out
		}
		if target == e.prefix {
			return e.targets
		}
	}
	return nil
}

// BaseDir returns the directory non-relative imports resolve against.
func (a *PathAliases) BaseDir() string {
	if a == nil {
		return ""
	}
	return a.baseDir
}
