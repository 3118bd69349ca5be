// Package diagnostics defines the coded errors the lowering stages report.
//
// Capture and arity errors (F- and C-codes) are user-facing: they name the
// offending function or call site and compilation of other functions
// continues. T- and M-codes are internal invariant violations; the stages
// panic on those instead of returning them, since they indicate a compiler
// defect and must never produce miscompiled output.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/liftc/internal/token"
)

type Code string

const (
	// ErrF001: a free variable cannot be traced to any enclosing scope.
	ErrF001 Code = "F001"
	// ErrC001: a call supplies more arguments than the callee's remaining arity.
	ErrC001 Code = "C001"
	// ErrC002: the callee expression is not a function value.
	ErrC002 Code = "C002"
	// ErrT001: two different bodies claim the same structural identity.
	ErrT001 Code = "T001"
	// ErrM001: an argument slot write falls outside the closure record.
	ErrM001 Code = "M001"
)

var messages = map[Code]string{
	ErrF001: "unresolved capture: variable '%s' is not bound in any enclosing scope",
	ErrC001: "arity mismatch: %d argument(s) supplied but callee accepts at most %d",
	ErrC002: "cannot call a value of type %s",
	ErrT001: "function table conflict: identity %s already registered with a different body",
	ErrM001: "closure record overflow: slot %d outside record of arity %d",
}

// DiagnosticError is an error with a stable code and a source location.
type DiagnosticError struct {
	Code    Code
	Token   token.Token
	Message string
}

// NewError builds a DiagnosticError from a code's message template.
func NewError(code Code, tok token.Token, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Token:   tok,
		Message: fmt.Sprintf(messages[code], args...),
	}
}

func (e *DiagnosticError) Error() string {
	if pos := e.Token.Pos(); pos != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, pos, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
