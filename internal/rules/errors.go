package rules

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the four failure classes, in priority order. Every
// error returned by Run matches exactly one of them via errors.Is, except
// system errors (I/O, parse), which are returned wrapped but unclassified.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrNoFilesMatched = errors.New("no files matched")
	ErrFileQuality    = errors.New("file quality error")
	ErrViolation      = errors.New("rule violation")
)

// NoPatternMessage is the configuration message for empty or blank pattern
// arguments.
const NoPatternMessage = "No pattern was provided for checking"

// NoFilteringPatternMessage is the configuration message for a rule that
// selects no files by pattern.
const NoFilteringPatternMessage = "No pattern was provided for filtering"

// ConfigError reports an invalid rule argument. It is never aggregated.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string        { return e.Message }
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// NoFilesMatchedError reports that the filtering patterns selected nothing.
type NoFilesMatchedError struct {
	Construction Construction
}

func (e *NoFilesMatchedError) Error() string {
	return "No files found - " + e.Construction.String()
}

func (e *NoFilesMatchedError) Is(target error) bool { return target == ErrNoFilesMatched }

// ValidationKind names one of the file-quality validations.
type ValidationKind string

const (
	ExtensionMismatch    ValidationKind = "extension-mismatch"
	UnresolvedDependency ValidationKind = "unresolved-dependency"
	OutsideGraph         ValidationKind = "outside-graph"
)

var validationHeaders = map[ValidationKind]string{
	ExtensionMismatch:    "Files not matching the recognized extensions",
	UnresolvedDependency: "Unresolved dependencies",
	OutsideGraph:         "Dependencies outside the project graph",
}

// Problem is one finding of a validation pass, attributed to a file.
type Problem struct {
	Path    string
	Message string
}

// ValidationError aggregates every problem found by one validation pass.
type ValidationError struct {
	Kind     ValidationKind
	Problems []Problem
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(validationHeaders[e.Kind])
	b.WriteString("\n")
	for _, p := range e.Problems {
		fmt.Fprintf(&b, "\n- '%s': %s", p.Path, p.Message)
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool { return target == ErrFileQuality }

// ViolationError reports a predicate that does not hold. Its message is:
//
//	Violation - <construction trail>
//
//	- '<path>'
//	...
//
//	<explanation>
type ViolationError struct {
	Construction Construction
	Paths        []string
	Explanation  string
}

func (e *ViolationError) Error() string {
	var b strings.Builder
	b.WriteString("Violation - ")
	b.WriteString(e.Construction.String())
	b.WriteString("\n")
	if len(e.Paths) > 0 {
		b.WriteString("\n")
		for _, p := range e.Paths {
			fmt.Fprintf(&b, "- '%s'\n", p)
		}
	}
	if e.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(e.Explanation)
	}
	return b.String()
}

func (e *ViolationError) Is(target error) bool { return target == ErrViolation }
