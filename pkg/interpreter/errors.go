// Package interpreter - runtime errors and loop-control signals
package interpreter

import (
	"errors"

	"github.com/kristofer/lox/pkg/lexer"
)

// RuntimeError represents a runtime error with the token whose line is
// reported: an operand type mismatch, an undefined variable, and so on.
// It unwinds execution to the top-level driver.
type RuntimeError struct {
	Token   lexer.Token
	Message string
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return e.Message
}

// newRuntimeError creates a RuntimeError attributed to the given token.
func newRuntimeError(token lexer.Token, message string) *RuntimeError {
	return &RuntimeError{Token: token, Message: message}
}

// break and continue are not errors. They ride the error return path as
// distinguished sentinels that unwind statement execution until the
// nearest enclosing while catches them; everything else re-raises them.
// The parser forbids them outside a loop, so one escaping to the top
// level is an interpreter bug.
var (
	errBreak    = errors.New("break")
	errContinue = errors.New("continue")
)
