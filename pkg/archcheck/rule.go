package archcheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/dusk-indust/archcheck/internal/graph"
	"github.com/dusk-indust/archcheck/internal/rules"
)

// Graph is a built project graph keyed by absolute file path.
type Graph = graph.ProjectGraph

// Error classes returned by Check and Evaluate, matched with errors.Is.
var (
	ErrConfiguration  = rules.ErrConfiguration
	ErrNoFilesMatched = rules.ErrNoFilesMatched
	ErrFileQuality    = rules.ErrFileQuality
	ErrViolation      = rules.ErrViolation
)

// Condition is a selector with a polarity, waiting for a predicate.
type Condition struct {
	sel      Selector
	polarity rules.Polarity
}

// DependsOn asserts that every selected file has a dependency matching one
// of patterns.
func (c Condition) DependsOn(patterns ...string) Rule {
	return c.rule(rules.Predicate{Kind: rules.DependsOn, Patterns: patterns})
}

// OnlyDependsOn asserts that every dependency of every selected file
// matches one of patterns. Files without dependencies pass.
func (c Condition) OnlyDependsOn(patterns ...string) Rule {
	return c.rule(rules.Predicate{Kind: rules.OnlyDependsOn, Patterns: patterns})
}

// HaveName asserts that every selected file's base name matches pattern.
func (c Condition) HaveName(pattern string) Rule {
	return c.rule(rules.Predicate{Kind: rules.HaveName, Patterns: []string{pattern}})
}

// OnlyHaveName asserts that the selection as a whole is named like pattern.
func (c Condition) OnlyHaveName(pattern string) Rule {
	return c.rule(rules.Predicate{Kind: rules.OnlyHaveName, Patterns: []string{pattern}})
}

// HaveLocGreaterThan asserts that every selected file has more than n lines of code.
func (c Condition) HaveLocGreaterThan(n int) Rule {
	return c.rule(rules.Predicate{Kind: rules.HaveLocGreaterThan, Threshold: n})
}

// HaveLocGreaterOrEqualThan asserts that every selected file has at least n lines of code.
func (c Condition) HaveLocGreaterOrEqualThan(n int) Rule {
	return c.rule(rules.Predicate{Kind: rules.HaveLocGreaterOrEqualThan, Threshold: n})
}

// HaveLocLessThan asserts that every selected file has fewer than n lines of code.
func (c Condition) HaveLocLessThan(n int) Rule {
	return c.rule(rules.Predicate{Kind: rules.HaveLocLessThan, Threshold: n})
}

// HaveLocLessOrEqualThan asserts that every selected file has at most n lines of code.
func (c Condition) HaveLocLessOrEqualThan(n int) Rule {
	return c.rule(rules.Predicate{Kind: rules.HaveLocLessOrEqualThan, Threshold: n})
}

// HaveTotalProjectCodeLessThan asserts that each selected file's byte size
// is less than fraction of the whole graph's.
func (c Condition) HaveTotalProjectCodeLessThan(fraction float64) Rule {
	return c.rule(rules.Predicate{Kind: rules.HaveTotalProjectCodeLessThan, Fraction: fraction})
}

// HaveTotalProjectCodeLessOrEqualThan is HaveTotalProjectCodeLessThan with an
// inclusive bound.
func (c Condition) HaveTotalProjectCodeLessOrEqualThan(fraction float64) Rule {
	return c.rule(rules.Predicate{Kind: rules.HaveTotalProjectCodeLessOrEqualThan, Fraction: fraction})
}

// HaveCycles asserts that every selected file lies on an import cycle.
// It is almost always used negated.
func (c Condition) HaveCycles() Rule {
	return c.rule(rules.Predicate{Kind: rules.HaveCycles})
}

// BeImportedOrRequiredBy asserts that every selected file is imported by
// at least one file matching patterns.
func (c Condition) BeImportedOrRequiredBy(patterns ...string) Rule {
	return c.rule(rules.Predicate{Kind: rules.BeImportedOrRequiredBy, Patterns: patterns})
}

// Predicate finishes the chain with a predicate given by kind name, as read
// from a rule file.
func (c Condition) Predicate(kind string, patterns []string, threshold int, fraction float64) (Rule, error) {
	k, err := rules.ParseKind(kind)
	if err != nil {
		return Rule{}, err
	}
	return c.rule(rules.Predicate{Kind: k, Patterns: patterns, Threshold: threshold, Fraction: fraction}), nil
}

func (c Condition) rule(p rules.Predicate) Rule {
	return Rule{
		root: c.sel.root,
		opts: c.sel.opts,
		rule: rules.Rule{
			Selections:   c.sel.selections,
			Extensions:   c.sel.opts.Extensions,
			Polarity:     c.polarity,
			Predicate:    p,
			Construction: c.sel.construction.With(c.polarity.String(), p.Describe()),
		},
	}
}

// Rule is a complete rule ready to run.
type Rule struct {
	root string
	opts Options
	rule rules.Rule
}

// String returns the rule's construction trail.
func (r Rule) String() string {
	return r.rule.Construction.String()
}

// Check builds the project graph and runs the rule. It returns nil when the
// rule holds, and otherwise a single error: a configuration error, a
// no-files-matched error, an aggregated file-quality error, or an
// aggregated violation, in that priority.
func (r Rule) Check(ctx context.Context) error {
	if err := r.rule.Validate(); err != nil {
		return err
	}
	pg, err := buildGraph(ctx, r.root, r.opts)
	if err != nil {
		return err
	}
	return r.CheckGraph(pg)
}

// Evaluate is Check for boolean call sites: a violation yields false with
// a nil error; every other failure is returned as an error.
func (r Rule) Evaluate(ctx context.Context) (bool, error) {
	err := r.Check(ctx)
	if errors.Is(err, ErrViolation) {
		return false, nil
	}
	return err == nil, err
}

// CheckGraph runs the rule against an already built graph.
func (r Rule) CheckGraph(pg Graph) error {
	return rules.Check(pg, r.rule)
}

// BuildGraph builds the project graph for rootDir.
func BuildGraph(ctx context.Context, rootDir string, opts Options) (Graph, error) {
	return buildGraph(ctx, rootDir, opts.withDefaults())
}

func buildGraph(ctx context.Context, rootDir string, opts Options) (Graph, error) {
	builderOpts := []graph.BuilderOption{graph.WithLogger(opts.Logger)}
	if opts.Cache != nil {
		builderOpts = append(builderOpts, graph.WithCache(opts.Cache))
	}
	b := graph.NewBuilder(graph.NewTreeSitterExtractor(), builderOpts...)
	pg, err := b.Build(ctx, graph.BuildOptions{
		RootDir:         rootDir,
		Include:         opts.Include,
		Ignore:          opts.Ignore,
		Extensions:      opts.Extensions,
		PathAliasConfig: opts.PathAliasConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("build project graph: %w", err)
	}
	return pg, nil
}
