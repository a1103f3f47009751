package rules

import (
	"fmt"

	"github.com/dusk-indust/archcheck/internal/glob"
	"github.com/dusk-indust/archcheck/internal/graph"
)

// Subset is a filtered view of a ProjectGraph. It shares File records with
// the graph it was filtered from.
type Subset map[string]*graph.File

// Paths returns the subset keys in sorted order.
func (s Subset) Paths() []string {
	return graph.ProjectGraph(s).Paths()
}

// Filter returns the files of pg kept by at least one selection: the path
// matches that selection's pattern and none of its own excludes. An empty
// result is a NoFilesMatchedError carrying construction.
func Filter(pg graph.ProjectGraph, selections []Selection, construction Construction) (Subset, error) {
	type compiled struct {
		include, skip *glob.Matcher
	}
	matchers := make([]compiled, 0, len(selections))
	for _, sel := range selections {
		include, err := glob.NewMatcher([]string{sel.Pattern})
		if err != nil {
			return nil, configErrorf("invalid filtering pattern: %v", err)
		}
		c := compiled{include: include}
		if len(sel.Exclude) > 0 {
			if c.skip, err = glob.NewMatcher(sel.Exclude); err != nil {
				return nil, configErrorf("invalid exclude pattern: %v", err)
			}
		}
		matchers = append(matchers, c)
	}

	out := make(Subset)
	for path, f := range pg {
		for _, m := range matchers {
			if m.include.Match(path) && (m.skip == nil || !m.skip.Match(path)) {
				out[path] = f
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, &NoFilesMatchedError{Construction: construction}
	}
	return out, nil
}

// ValidateExtensions reports every file whose path matches none of the
// recognized extension patterns.
func ValidateExtensions(files Subset, recognized []string) error {
	var problems []Problem
	for _, path := range files.Paths() {
		if !glob.Match(path, recognized) {
			problems = append(problems, Problem{
				Path:    path,
				Message: fmt.Sprintf("file does not match the recognized extensions %s", FormatPatterns(recognized)),
			})
		}
	}
	return aggregate(ExtensionMismatch, problems)
}

// ValidateDependencies reports every Invalid dependency of every file.
func ValidateDependencies(files Subset) error {
	var problems []Problem
	for _, path := range files.Paths() {
		for _, dep := range files[path].Dependencies {
			if dep.Type == graph.DependencyInvalid {
				problems = append(problems, Problem{
					Path:    path,
					Message: dep.Name + " could not be resolved",
				})
			}
		}
	}
	return aggregate(UnresolvedDependency, problems)
}

// ValidateGraphMembership reports every ValidPath dependency whose target is
// not a key of the full graph pg: it exists on disk but lies outside the
// include set.
func ValidateGraphMembership(files Subset, pg graph.ProjectGraph) error {
	var problems []Problem
	for _, path := range files.Paths() {
		for _, dep := range files[path].Dependencies {
			if dep.Type != graph.DependencyValidPath {
				continue
			}
			if _, ok := pg[dep.Name]; !ok {
				problems = append(problems, Problem{
					Path:    path,
					Message: dep.Name + " - file path was not found",
				})
			}
		}
	}
	return aggregate(OutsideGraph, problems)
}

// Validate runs the three file-quality validations in order and returns the
// first that fails.
func Validate(files Subset, pg graph.ProjectGraph, recognized []string) error {
	if err := ValidateExtensions(files, recognized); err != nil {
		return err
	}
	if err := ValidateDependencies(files); err != nil {
		return err
	}
	return ValidateGraphMembership(files, pg)
}

func aggregate(kind ValidationKind, problems []Problem) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Kind: kind, Problems: problems}
}
