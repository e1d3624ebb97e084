// Package expand implements the word-expansion pipeline: brace expansion,
// tilde expansion, parameter/command/arithmetic expansion, field splitting,
// pathname expansion, and quote removal (spec.md §4.2).
package expand

import "fmt"

// Reason taxonomizes an expansion failure (spec.md §7, "a package-local
// Error type per subsystem carrying position and a taxonomy tag").
type Reason int

const (
	ReasonUnboundVariable Reason = iota
	ReasonBadSubstitution
	ReasonArithmeticError
	ReasonDivideByZero
	ReasonCommandSubstFailed
	ReasonUnsupportedPlatform
)

// Error is expand's package-local error type.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("expand: %s", e.Detail)
}

func newErr(r Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: r, Detail: fmt.Sprintf(format, args...)}
}
