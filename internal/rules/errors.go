// internal/rules/errors.go
package rules

import (
	"errors"
	"fmt"
)

// ValidationError reports a caller-supplied value with a bad shape or range
// (counts out of bounds, duplicate ids, unknown seats).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// RuleViolation reports a well-formed action the rules refuse
// (wrong turn, wrong phase, illegal card, discard not in hand).
type RuleViolation struct {
	Reason string
}

func (e *RuleViolation) Error() string {
	return e.Reason
}

// Invalid builds a ValidationError with a formatted reason.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Violation builds a RuleViolation with a formatted reason.
func Violation(format string, args ...interface{}) error {
	return &RuleViolation{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsRuleViolation reports whether err wraps a RuleViolation.
func IsRuleViolation(err error) bool {
	var v *RuleViolation
	return errors.As(err, &v)
}
