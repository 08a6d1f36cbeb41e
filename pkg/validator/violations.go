package validator

import "fmt"

// Violations accumulates human-readable rule violations for one table.
// Checks append to it and the validator concatenates the per-check results;
// violations are values, never raised, so one pass reports everything.
type Violations []string

// Addf appends one formatted violation.
func (v *Violations) Addf(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

// Merge appends all violations from other.
func (v *Violations) Merge(other Violations) {
	*v = append(*v, other...)
}

// Empty reports whether no violations were recorded.
func (v Violations) Empty() bool {
	return len(v) == 0
}
