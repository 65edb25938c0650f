package interpreter

import (
	"fmt"

	"github.com/kristofer/lox/pkg/lexer"
)

// Environment is a mutable mapping from variable name to value with an
// optional enclosing scope. Lookup and assignment walk the chain toward
// the root; definition always writes the innermost scope, which is what
// permits shadowing.
type Environment struct {
	values    map[string]Value
	enclosing *Environment
}

// NewEnvironment creates a root scope with no parent.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// NewEnclosedEnvironment creates a child scope. The parent link is fixed
// at construction and never reassigned.
func NewEnclosedEnvironment(enclosing *Environment) *Environment {
	return &Environment{values: make(map[string]Value), enclosing: enclosing}
}

// Define unconditionally binds name in this scope, overwriting any
// existing binding at this level.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get returns the value bound to the name in the innermost scope that
// has it. The token is the variable reference, used for error
// attribution.
func (e *Environment) Get(name lexer.Token) (Value, error) {
	if value, ok := e.values[name.Lexeme]; ok {
		return value, nil
	}
	if e.enclosing != nil {
		return e.enclosing.Get(name)
	}
	return nil, newRuntimeError(name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}

// Assign updates the binding in the innermost scope that has it. Unlike
// Define it never creates a binding.
func (e *Environment) Assign(name lexer.Token, value Value) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = value
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.Assign(name, value)
	}
	return newRuntimeError(name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}

// Bindings returns a copy of the bindings in this scope only. Used by
// the REPL's :env command.
func (e *Environment) Bindings() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}
