package schema

import "fmt"

// Rule categorizes the constraint a violation breaks.
type Rule uint8

const (
	// RuleRange indicates a numeric value outside its allowed range.
	RuleRange Rule = iota
	// RuleRequired indicates a value required by a cross-field invariant
	// is missing or empty.
	RuleRequired
	// RuleOrdering indicates a sequence that is not sorted as required.
	RuleOrdering
	// RuleUniqueness indicates a set containing duplicate entries.
	RuleUniqueness
	// RuleEnum indicates a value outside the allowed set.
	RuleEnum
)

// String returns a machine-readable rule name.
func (r Rule) String() string {
	switch r {
	case RuleRange:
		return "range"
	case RuleRequired:
		return "required"
	case RuleOrdering:
		return "ordering"
	case RuleUniqueness:
		return "uniqueness"
	case RuleEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Violation describes a single invalid field. Field is the dot-separated
// path into the configuration tree (e.g. "proxy.upstream_proxy.url"),
// suitable for driving a field-specific user-facing message.
type Violation struct {
	// Field is the dot-separated path to the offending value.
	Field string
	// Rule is the constraint that was broken.
	Rule Rule
	// Message describes the breach.
	Message string
	// Value is the offending value.
	Value any
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", v.Field, v.Message, v.Value)
}

// Correction records a load-mode repair for logging. Each entry names the
// repaired field and the value it was coerced to.
type Correction struct {
	// Field is the dot-separated path to the repaired value.
	Field string
	// From is the invalid value that was found.
	From any
	// To is the nearest valid value it was replaced with.
	To any
}

// String renders the correction for log output.
func (r Correction) String() string {
	return fmt.Sprintf("%s: %v -> %v", r.Field, r.From, r.To)
}
