package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dusk-indust/archcheck/internal/glob"
)

// Polarity says whether a predicate is asserted as-is or negated.
type Polarity string

const (
	Should    Polarity = "should"
	ShouldNot Polarity = "shouldNot"
)

// String renders the polarity as it reads in a construction trail.
func (p Polarity) String() string {
	if p == ShouldNot {
		return "should not"
	}
	return "should"
}

// ParsePolarity accepts "should" and "shouldNot".
func ParsePolarity(s string) (Polarity, error) {
	switch Polarity(s) {
	case Should, ShouldNot:
		return Polarity(s), nil
	}
	return "", configErrorf("unknown polarity %q, want %q or %q", s, Should, ShouldNot)
}

// Kind names a predicate.
type Kind string

const (
	DependsOn                           Kind = "dependsOn"
	OnlyDependsOn                       Kind = "onlyDependsOn"
	HaveName                            Kind = "haveName"
	OnlyHaveName                        Kind = "onlyHaveName"
	HaveLocGreaterThan                  Kind = "haveLocGreaterThan"
	HaveLocGreaterOrEqualThan           Kind = "haveLocGreaterOrEqualThan"
	HaveLocLessThan                     Kind = "haveLocLessThan"
	HaveLocLessOrEqualThan              Kind = "haveLocLessOrEqualThan"
	HaveTotalProjectCodeLessThan        Kind = "haveTotalProjectCodeLessThan"
	HaveTotalProjectCodeLessOrEqualThan Kind = "haveTotalProjectCodeLessOrEqualThan"
	HaveCycles                          Kind = "haveCycles"
	BeImportedOrRequiredBy              Kind = "beImportedOrRequiredBy"
)

// argKind is the argument shape a predicate takes.
type argKind int

const (
	argNone argKind = iota
	argPatterns
	argThreshold
	argFraction
)

var kindArgs = map[Kind]argKind{
	DependsOn:                           argPatterns,
	OnlyDependsOn:                       argPatterns,
	HaveName:                            argPatterns,
	OnlyHaveName:                        argPatterns,
	HaveLocGreaterThan:                  argThreshold,
	HaveLocGreaterOrEqualThan:           argThreshold,
	HaveLocLessThan:                     argThreshold,
	HaveLocLessOrEqualThan:              argThreshold,
	HaveTotalProjectCodeLessThan:        argFraction,
	HaveTotalProjectCodeLessOrEqualThan: argFraction,
	HaveCycles:                          argNone,
	BeImportedOrRequiredBy:              argPatterns,
}

// Kinds returns every predicate kind.
func Kinds() []Kind {
	return []Kind{
		DependsOn, OnlyDependsOn, HaveName, OnlyHaveName,
		HaveLocGreaterThan, HaveLocGreaterOrEqualThan, HaveLocLessThan, HaveLocLessOrEqualThan,
		HaveTotalProjectCodeLessThan, HaveTotalProjectCodeLessOrEqualThan,
		HaveCycles, BeImportedOrRequiredBy,
	}
}

// ParseKind looks up a predicate kind by name.
func ParseKind(s string) (Kind, error) {
	if _, ok := kindArgs[Kind(s)]; ok {
		return Kind(s), nil
	}
	return "", configErrorf("unknown predicate %q", s)
}

// Predicate is one predicate kind with its arguments. Only the argument
// field matching the kind is meaningful.
type Predicate struct {
	Kind      Kind
	Patterns  []string
	Threshold int
	Fraction  float64
}

// Validate checks the arguments before any evaluation.
func (p Predicate) Validate() error {
	args, ok := kindArgs[p.Kind]
	if !ok {
		return configErrorf("unknown predicate %q", p.Kind)
	}
	switch args {
	case argPatterns:
		if len(p.Patterns) == 0 {
			return &ConfigError{Message: NoPatternMessage}
		}
		for _, pat := range p.Patterns {
			if strings.TrimSpace(strings.TrimPrefix(pat, "!")) == "" {
				return &ConfigError{Message: NoPatternMessage}
			}
		}
		if err := glob.Validate(p.Patterns); err != nil {
			return configErrorf("invalid checking pattern: %v", err)
		}
	case argThreshold:
		if p.Threshold <= 0 {
			return configErrorf("Threshold must be greater than 0, got %d", p.Threshold)
		}
	case argFraction:
		if p.Fraction <= 0 || p.Fraction > 1 {
			return configErrorf("Percentage must be in the range (0, 1], got %s", formatFraction(p.Fraction))
		}
	}
	return nil
}

// Describe renders the predicate as it reads in a construction trail.
func (p Predicate) Describe() string {
	switch p.Kind {
	case DependsOn:
		return "depend on " + FormatPatterns(p.Patterns)
	case OnlyDependsOn:
		return "only depend on " + FormatPatterns(p.Patterns)
	case HaveName:
		return "have name " + FormatPatterns(p.Patterns)
	case OnlyHaveName:
		return "only have name " + FormatPatterns(p.Patterns)
	case HaveLocGreaterThan:
		return fmt.Sprintf("have loc greater than %d", p.Threshold)
	case HaveLocGreaterOrEqualThan:
		return fmt.Sprintf("have loc greater or equal than %d", p.Threshold)
	case HaveLocLessThan:
		return fmt.Sprintf("have loc less than %d", p.Threshold)
	case HaveLocLessOrEqualThan:
		return fmt.Sprintf("have loc less or equal than %d", p.Threshold)
	case HaveTotalProjectCodeLessThan:
		return "have total project code less than " + formatFraction(p.Fraction)
	case HaveTotalProjectCodeLessOrEqualThan:
		return "have total project code less or equal than " + formatFraction(p.Fraction)
	case HaveCycles:
		return "have cycles"
	case BeImportedOrRequiredBy:
		return "be imported or required by " + FormatPatterns(p.Patterns)
	}
	return string(p.Kind)
}

func formatFraction(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
