// Package executor walks the AST and runs it: simple commands, pipelines,
// control flow, functions, and subshells, dispatching through a strategy
// chain and a process launcher (spec.md §4.3, §4.4).
package executor

import "fmt"

// Reason taxonomizes an executor failure (spec.md §7).
type Reason int

const (
	ReasonNotFound Reason = iota
	ReasonNotExecutable
	ReasonForkFailed
	ReasonRedirectFailed
	ReasonSyntax
	ReasonUnsupportedPlatform
)

// Error is executor's package-local error type.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string { return fmt.Sprintf("executor: %s", e.Detail) }

func newErr(r Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: r, Detail: fmt.Sprintf(format, args...)}
}
