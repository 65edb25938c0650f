// Package lox wires the scanner, parser, and interpreter into the
// end-to-end pipeline shared by script mode and the REPL, and owns
// error reporting.
//
// Diagnostics use two fixed formats:
//
//	parse/lex errors:  [line N] Error <where>: <message>
//	runtime errors:    <message>
//	                   [line N]
//
// where <where> is "at end" for EOF tokens and "at '<lexeme>'" otherwise.
// Lex errors have no token, so their <where> is empty.
package lox

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/kristofer/lox/pkg/ast"
	"github.com/kristofer/lox/pkg/interpreter"
	"github.com/kristofer/lox/pkg/lexer"
	"github.com/kristofer/lox/pkg/parser"
)

// Lox is the driver. It carries the persistent interpreter plus the
// had-error flags the caller inspects to pick an exit status. A REPL
// reuses one Lox across inputs, clearing HadError between prompts.
type Lox struct {
	interp *interpreter.Interpreter
	stdout io.Writer
	stderr io.Writer

	// HadError is set by any lex or parse error; HadRuntimeError by a
	// runtime error. Both stay set until cleared by the caller.
	HadError        bool
	HadRuntimeError bool

	// PrintTokens dumps the token stream before parsing; PrintAST
	// prints the parsed program instead of executing it.
	PrintTokens bool
	PrintAST    bool

	// Echo prints the value of a lone expression statement. REPL-only
	// affordance; the core never auto-prints.
	Echo bool
}

// New creates a driver bound to stdout/stderr.
func New() *Lox {
	return NewWithStreams(os.Stdout, os.Stderr)
}

// NewWithStreams creates a driver with explicit output streams.
func NewWithStreams(stdout, stderr io.Writer) *Lox {
	return &Lox{
		interp: interpreter.NewWithOutput(stdout),
		stdout: stdout,
		stderr: stderr,
	}
}

// RunFile reads and runs a script. The error reports only I/O failure;
// program failures are reported on stderr and flagged on the receiver.
func (l *Lox) RunFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	l.Run(string(source))
	return nil
}

// Run scans, parses, and interprets one program. Lex errors do not stop
// parsing; lex and parse errors are all reported and the program is then
// not executed. A runtime error is reported and halts execution.
func (l *Lox) Run(source string) {
	lx := lexer.New(source)
	tokens := lx.Tokenize()
	for _, scanErr := range lx.Errors() {
		l.report(scanErr.Line, "", scanErr.Message)
	}

	if l.PrintTokens {
		for _, tok := range tokens {
			fmt.Fprintf(l.stdout, "%s '%s' [line %d]\n", tok.Type, tok.Lexeme, tok.Line)
		}
	}

	p := parser.New(tokens)
	program, _ := p.Parse()
	for _, parseErr := range p.Errors() {
		l.tokenError(parseErr.Token, parseErr.Message)
	}

	if l.HadError {
		return
	}

	if l.PrintAST {
		fmt.Fprintln(l.stdout, ast.PrintProgram(program))
		return
	}

	if l.Echo && l.echo(program) {
		return
	}

	if err := l.interp.Interpret(program); err != nil {
		l.runtimeError(err)
	}
}

// echo handles a program consisting of a single bare expression
// statement: the expression is evaluated and its value printed, unless
// it is nil. Returns false when the program isn't echo-shaped so Run
// executes it normally. A runtime error during the echo is reported the
// same way as one during normal execution.
func (l *Lox) echo(program *ast.Program) bool {
	if len(program.Statements) != 1 {
		return false
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	value, err := l.interp.Evaluate(stmt.Expression)
	if err != nil {
		l.runtimeError(err)
		return true
	}
	if value != nil {
		fmt.Fprintln(l.stdout, "=> "+interpreter.Stringify(value))
	}
	return true
}

// GlobalBindings returns the interpreter's global bindings, stringified
// and sorted by name. Used by the REPL's :env command.
func (l *Lox) GlobalBindings() []string {
	bindings := l.interp.Globals().Bindings()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, fmt.Sprintf("%s = %s", name, interpreter.Stringify(bindings[name])))
	}
	return out
}

// report emits a lex or parse diagnostic and sets the error flag.
func (l *Lox) report(line int, where, message string) {
	fmt.Fprintf(l.stderr, "[line %d] Error %s: %s\n", line, where, message)
	l.HadError = true
}

// tokenError formats the <where> clause from the offending token.
func (l *Lox) tokenError(token lexer.Token, message string) {
	if token.Type == lexer.TokenEOF {
		l.report(token.Line, "at end", message)
	} else {
		l.report(token.Line, fmt.Sprintf("at '%s'", token.Lexeme), message)
	}
}

// runtimeError reports a runtime error in its two-line format.
func (l *Lox) runtimeError(err error) {
	if rte, ok := err.(*interpreter.RuntimeError); ok {
		fmt.Fprintf(l.stderr, "%s\n[line %d]\n", rte.Message, rte.Token.Line)
	} else {
		fmt.Fprintln(l.stderr, err)
	}
	l.HadRuntimeError = true
}
