package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/archcheck/internal/glob"
	"github.com/dusk-indust/archcheck/internal/graph"
)

// Rule is a fully built rule: which files it selects, the polarity, the
// predicate, and the construction trail used in reports.
type Rule struct {
	// Selections pick the files the predicate is evaluated over. A file is
	// selected when any one selection keeps it.
	Selections []Selection
	// Extensions are the recognized file patterns every selected file must
	// match.
	Extensions []string

	Polarity     Polarity
	Predicate    Predicate
	Construction Construction
}

// Selection is one filtering pattern together with the excludes given
// alongside it. Excludes only narrow their own pattern.
type Selection struct {
	Pattern string
	Exclude []string
}

// Select builds one Selection per filtering pattern, none with excludes.
func Select(patterns ...string) []Selection {
	out := make([]Selection, len(patterns))
	for i, p := range patterns {
		out[i] = Selection{Pattern: p}
	}
	return out
}

// Result is the outcome of evaluating a rule that passed every validation.
type Result struct {
	Passed bool
	// Offending lists the files that make the assertion false, sorted.
	Offending   []string
	Explanation string
}

// Err returns the aggregated ViolationError for a failed result, or nil.
func (r *Result) Err(construction Construction) error {
	if r.Passed {
		return nil
	}
	return &ViolationError{Construction: construction, Paths: r.Offending, Explanation: r.Explanation}
}

// Run drives a rule through configuration checks, filtering, file-quality
// validation and predicate evaluation against pg. The first failing stage
// short-circuits the rest; a predicate that does not hold is reported in
// the Result, not as an error.
func Run(pg graph.ProjectGraph, rule Rule) (*Result, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	files, err := Filter(pg, rule.Selections, rule.Construction)
	if err != nil {
		return nil, err
	}
	if err := Validate(files, pg, rule.Extensions); err != nil {
		return nil, err
	}
	return evaluate(pg, files, rule.Polarity, rule.Predicate)
}

// Check is Run with a failed result turned into a ViolationError.
func Check(pg graph.ProjectGraph, rule Rule) error {
	res, err := Run(pg, rule)
	if err != nil {
		return err
	}
	return res.Err(rule.Construction)
}

// Validate reports configuration errors in the rule's arguments.
func (r Rule) Validate() error {
	if err := r.Predicate.Validate(); err != nil {
		return err
	}
	if _, err := ParsePolarity(string(r.Polarity)); err != nil {
		return err
	}
	if len(r.Selections) == 0 {
		return &ConfigError{Message: NoFilteringPatternMessage}
	}
	for _, sel := range r.Selections {
		if strings.TrimSpace(strings.TrimPrefix(sel.Pattern, "!")) == "" {
			return &ConfigError{Message: NoFilteringPatternMessage}
		}
	}
	for _, sel := range r.Selections {
		if err := glob.Validate([]string{sel.Pattern}); err != nil {
			return configErrorf("invalid filtering pattern: %v", err)
		}
		if err := glob.Validate(sel.Exclude); err != nil {
			return configErrorf("invalid exclude pattern: %v", err)
		}
	}
	return nil
}

// evaluate dispatches on the predicate kind. Per-file predicates list the
// files whose raw condition disagrees with the polarity; onlyHaveName is
// asserted over the selection as a whole.
func evaluate(pg graph.ProjectGraph, files Subset, pol Polarity, p Predicate) (*Result, error) {
	var patterns *glob.Matcher
	if kindArgs[p.Kind] == argPatterns {
		var err error
		if patterns, err = glob.NewMatcher(p.Patterns); err != nil {
			return nil, configErrorf("invalid checking pattern: %v", err)
		}
	}

	var holds func(f *graph.File) bool
	var detail string

	switch p.Kind {
	case DependsOn:
		holds = func(f *graph.File) bool {
			for _, dep := range f.Dependencies {
				if patterns.Match(dep.Name) {
					return true
				}
			}
			return false
		}

	case OnlyDependsOn:
		holds = func(f *graph.File) bool {
			for _, dep := range f.Dependencies {
				if !patterns.Match(dep.Name) {
					return false
				}
			}
			return true
		}

	case HaveName:
		holds = func(f *graph.File) bool { return patterns.Match(baseName(f)) }

	case OnlyHaveName:
		return evaluateOnlyHaveName(files, pol, p, patterns), nil

	case HaveLocGreaterThan:
		holds = func(f *graph.File) bool { return f.LOC > p.Threshold }
	case HaveLocGreaterOrEqualThan:
		holds = func(f *graph.File) bool { return f.LOC >= p.Threshold }
	case HaveLocLessThan:
		holds = func(f *graph.File) bool { return f.LOC < p.Threshold }
	case HaveLocLessOrEqualThan:
		holds = func(f *graph.File) bool { return f.LOC <= p.Threshold }

	case HaveTotalProjectCodeLessThan, HaveTotalProjectCodeLessOrEqualThan:
		total := pg.TotalSize()
		detail = fmt.Sprintf("%d bytes", total)
		holds = func(f *graph.File) bool {
			share := 0.0
			if total > 0 {
				share = float64(f.Size) / float64(total)
			}
			if p.Kind == HaveTotalProjectCodeLessThan {
				return share < p.Fraction
			}
			return share <= p.Fraction
		}

	case HaveCycles:
		report, err := graph.FindCycles(pg)
		if err != nil {
			return nil, fmt.Errorf("detect cycles: %w", err)
		}
		lines := make([]string, 0, len(report.Cycles))
		for _, c := range report.Cycles {
			if touches(c, files) {
				lines = append(lines, c.String())
			}
		}
		detail = strings.Join(lines, "\n")
		holds = func(f *graph.File) bool { return report.Members[f.Path] }

	case BeImportedOrRequiredBy:
		importers := pg.Importers()
		holds = func(f *graph.File) bool {
			for _, imp := range importers[f.Path] {
				if patterns.Match(imp) {
					return true
				}
			}
			return false
		}

	default:
		return nil, configErrorf("unknown predicate %q", p.Kind)
	}

	var offending []string
	for _, path := range files.Paths() {
		if holds(files[path]) != (pol == Should) {
			offending = append(offending, path)
		}
	}
	res := &Result{Passed: len(offending) == 0, Offending: offending}
	if !res.Passed {
		res.Explanation = explain(p, pol, detail)
	}
	return res, nil
}

func evaluateOnlyHaveName(files Subset, pol Polarity, p Predicate, patterns *glob.Matcher) *Result {
	paths := files.Paths()
	var mismatched []string
	for _, path := range paths {
		if !patterns.Match(baseName(files[path])) {
			mismatched = append(mismatched, path)
		}
	}

	res := &Result{}
	switch {
	case pol == Should:
		res.Offending = mismatched
	case len(mismatched) == 0:
		res.Offending = paths
	}
	res.Passed = len(res.Offending) == 0
	if !res.Passed {
		res.Explanation = explain(p, pol, "")
	}
	return res
}

func baseName(f *graph.File) string {
	if f.Name != "" {
		return f.Name
	}
	return filepath.Base(f.Path)
}

// touches reports whether any file of cycle is in files.
func touches(c graph.Cycle, files Subset) bool {
	for _, p := range c {
		if _, ok := files[p]; ok {
			return true
		}
	}
	return false
}

// explain returns the fixed suffix of a violation report.
func explain(p Predicate, pol Polarity, detail string) string {
	neg := pol == ShouldNot
	pats := FormatPatterns(p.Patterns)

	pick := func(should, shouldNot string) string {
		if neg {
			return shouldNot
		}
		return should
	}

	switch p.Kind {
	case DependsOn:
		return pick(
			"The files above do not depend on any of "+pats+".",
			"The files above depend on at least one of "+pats+".")
	case OnlyDependsOn:
		return pick(
			"The files above have dependencies outside of "+pats+".",
			"Every dependency of the files above matches "+pats+".")
	case HaveName:
		return pick(
			"The names of the files above do not match "+pats+".",
			"The names of the files above match "+pats+".")
	case OnlyHaveName:
		return pick(
			"Every selected file should be named like "+pats+"; the files above are not.",
			"Every selected file is named like "+pats+".")
	case HaveLocGreaterThan, HaveLocGreaterOrEqualThan, HaveLocLessThan, HaveLocLessOrEqualThan:
		cmp := locComparisons[p.Kind]
		return pick(
			fmt.Sprintf("The files above do not have a line count %s %d.", cmp, p.Threshold),
			fmt.Sprintf("The files above have a line count %s %d.", cmp, p.Threshold))
	case HaveTotalProjectCodeLessThan, HaveTotalProjectCodeLessOrEqualThan:
		cmp := "less than"
		if p.Kind == HaveTotalProjectCodeLessOrEqualThan {
			cmp = "less than or equal to"
		}
		return pick(
			fmt.Sprintf("The files above do not make up %s %s of the total project code (%s).", cmp, formatFraction(p.Fraction), detail),
			fmt.Sprintf("The files above make up %s %s of the total project code (%s).", cmp, formatFraction(p.Fraction), detail))
	case HaveCycles:
		if neg {
			return "The files above are part of import cycles:\n\n" + detail
		}
		return "The files above are not part of any import cycle."
	case BeImportedOrRequiredBy:
		return pick(
			"The files above are not imported or required by any file matching "+pats+".",
			"The files above are imported or required by files matching "+pats+".")
	}
	return ""
}

var locComparisons = map[Kind]string{
	HaveLocGreaterThan:        "greater than",
	HaveLocGreaterOrEqualThan: "greater than or equal to",
	HaveLocLessThan:           "less than",
	HaveLocLessOrEqualThan:    "less than or equal to",
}
