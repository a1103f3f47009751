// Package archcheck asserts architecture rules over a project's file
// dependency graph.
//
// A rule is built by chaining a Selector, a polarity and a predicate:
//
//	err := archcheck.NewSelector(root, archcheck.Options{}).
//		InDirectory("**/domain/**").
//		ShouldNot().
//		DependsOn("**/infra/**").
//		Check(ctx)
//
// Every value in the chain is immutable, so a base selector can be shared
// between rules. Each Check builds the dependency graph from scratch.
package archcheck

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dusk-indust/archcheck/internal/graph"
	"github.com/dusk-indust/archcheck/internal/rules"
)

// DefaultExtensions are the recognized file patterns when none are given.
var DefaultExtensions = []string{
	"**/*.ts", "**/*.tsx", "**/*.mts", "**/*.cts",
	"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs",
}

// DefaultIgnore is pruned from the walk when no ignore patterns are given.
var DefaultIgnore = []string{"**/node_modules/**", "**/.git/**"}

// Cache remembers extracted imports across builds keyed by path, mtime and
// size. Sharing one between checks only changes how fast they run.
type Cache = graph.ParseCache

// NewCache creates a Cache holding up to size files.
func NewCache(size int) (*Cache, error) {
	return graph.NewParseCache(size)
}

// Options selects which files make up the project graph.
type Options struct {
	// Extensions are the recognized file globs, e.g. "**/*.ts". Every
	// selected file must match one, and their suffixes are probed when
	// resolving imports.
	Extensions []string
	// Include lists start paths or globs; "<rootDir>" expands to the root.
	Include []string
	// Ignore prunes matching files and directories.
	Ignore []string
	// PathAliasConfig optionally names a tsconfig/jsconfig with
	// compilerOptions.paths.
	PathAliasConfig string

	Logger *slog.Logger
	Cache  *Cache
}

func (o Options) withDefaults() Options {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if len(o.Include) == 0 {
		o.Include = []string{graph.RootDirToken}
	}
	if o.Ignore == nil {
		o.Ignore = DefaultIgnore
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Selector picks the files a rule applies to.
type Selector struct {
	root         string
	opts         Options
	selections   []rules.Selection
	construction rules.Construction
}

// NewSelector starts a rule chain for the project at rootDir.
func NewSelector(rootDir string, opts Options) Selector {
	return Selector{root: rootDir, opts: opts.withDefaults()}
}

// InDirectory selects files matching a directory glob such as
// "**/domain/**", minus any exclude globs.
func (s Selector) InDirectory(pattern string, exclude ...string) Selector {
	return s.with("in directory", pattern, exclude)
}

// InFile selects files matching a file glob such as "**/src/index.ts",
// minus any exclude globs.
func (s Selector) InFile(pattern string, exclude ...string) Selector {
	return s.with("in file", pattern, exclude)
}

func (s Selector) with(label, pattern string, exclude []string) Selector {
	fragment := label + " '" + pattern + "'"
	if len(exclude) > 0 {
		fragment += " excluding " + rules.FormatPatterns(exclude)
	}
	return Selector{
		root:         s.root,
		opts:         s.opts,
		selections:   appendCopy(s.selections, rules.Selection{Pattern: pattern, Exclude: slices.Clone(exclude)}),
		construction: s.construction.With(fragment),
	}
}

// Should asserts the predicate that follows.
func (s Selector) Should() Condition {
	return Condition{sel: s, polarity: rules.Should}
}

// ShouldNot asserts the negation of the predicate that follows.
func (s Selector) ShouldNot() Condition {
	return Condition{sel: s, polarity: rules.ShouldNot}
}

// BuildGraph builds the project graph this selector's rules run against.
func (s Selector) BuildGraph(ctx context.Context) (Graph, error) {
	return buildGraph(ctx, s.root, s.opts)
}

func appendCopy[T any](base []T, more ...T) []T {
	out := make([]T, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}
