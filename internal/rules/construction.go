package rules

import "strings"

// Construction is the ordered trail of human-readable fragments describing
// how a rule was built, e.g. "in directory '**/domain/**'", "should".
// Values are never mutated; With returns a new trail.
type Construction []string

// With returns a copy of c with fragments appended. Two trails extended
// from the same base never share backing storage.
func (c Construction) With(fragments ...string) Construction {
	out := make(Construction, len(c), len(c)+len(fragments))
	copy(out, c)
	return append(out, fragments...)
}

// String joins the trail with single spaces.
func (c Construction) String() string {
	return strings.Join(c, " ")
}

// FormatPatterns renders a pattern list as '[a, b]'.
func FormatPatterns(patterns []string) string {
	return "'[" + strings.Join(patterns, ", ") + "]'"
}
