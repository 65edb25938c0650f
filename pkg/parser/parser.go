// Package parser implements the lox language parser.
//
// The parser converts the token vector produced by the lexer into an
// Abstract Syntax Tree (AST) of statements and expressions. It is a
// classic recursive descent parser: each grammar rule corresponds to a
// parsing function, and precedence is encoded by having each level call
// the next-tighter level for its operands.
//
// Grammar (precedence from low to high):
//
//	program     → declaration* EOF
//	declaration → varDecl | statement
//	varDecl     → "var" IDENT ( "=" expression )? ";"
//	statement   → exprStmt | printStmt | block
//	            | ifStmt | whileStmt | forStmt
//	            | "break" ";" | "continue" ";"
//	block       → "{" declaration* "}"
//	ifStmt      → "if" "(" expression ")" statement ( "else" statement )?
//	whileStmt   → "while" "(" expression ")" statement
//	forStmt     → "for" "(" ( varDecl | exprStmt | ";" )
//	                         expression? ";" expression? ")" statement
//	exprStmt    → expression ";"
//	printStmt   → "print" expression ";"
//
//	expression  → assignment
//	assignment  → ternary ( "=" assignment )?
//	ternary     → logic_or ( "?" logic_or ":" logic_or )?
//	logic_or    → logic_and ( "or" logic_and )*
//	logic_and   → equality ( "and" equality )*
//	equality    → comparison ( ( "!=" | "==" ) comparison )*
//	comparison  → term ( ( ">" | ">=" | "<" | "<=" ) term )*
//	term        → factor ( ( "-" | "+" ) factor )*
//	factor      → unary ( ( "/" | "*" ) unary )*
//	unary       → ( "!" | "-" ) unary | primary
//	primary     → NUMBER | STRING | "true" | "false" | "nil"
//	            | IDENT | "(" expression ")"
//
// All binary levels are left-associative; assignment is right-associative.
//
// A for loop has no AST node of its own. It is desugared at parse time
// into an equivalent block+while so the interpreter never sees it:
//
//	for (init; cond; incr) body
//	  =>  { init; while (cond) { body; incr; } }
//
// with "true" substituted for a missing condition and the missing pieces
// simply omitted.
//
// Error Handling:
//
// The parser accumulates errors in the errors slice rather than stopping
// at the first one. After recording an error it synchronizes: it discards
// tokens until it passes a semicolon or lands on a token that can begin a
// new statement, then resumes parsing. One pass can therefore surface
// multiple syntax errors.
package parser

import (
	"fmt"

	"github.com/kristofer/lox/pkg/ast"
	"github.com/kristofer/lox/pkg/lexer"
)

// ParseError records a syntax error: the offending token and a message.
// The token carries the line, and an EOF token is rendered as "at end"
// by the driver.
type ParseError struct {
	Token   lexer.Token
	Message string
}

// Error implements the error interface.
func (e ParseError) Error() string {
	if e.Token.Type == lexer.TokenEOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

// Parser represents the lox parser.
//
// The parser walks the token vector with a single current index. It is
// stateful and single-use: create a new parser for each token vector.
// loopDepth tracks how many enclosing loop bodies the parser is inside,
// which is what makes break and continue outside a loop a parse error
// rather than a runtime surprise.
type Parser struct {
	tokens    []lexer.Token
	current   int
	errors    []ParseError
	loopDepth int
}

// New creates a new parser for the given token vector. The vector must be
// terminated by an EOF token, which the lexer guarantees.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the token vector and returns the program.
//
// Statements that fail to parse are dropped after their error is
// recorded, so the returned program contains every statement that did
// parse. If any errors were recorded they are summarized in the returned
// error; Errors gives the full list.
func (p *Parser) Parse() (*ast.Program, error) {
	program := &ast.Program{Statements: []ast.Statement{}}

	for !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}

	if len(p.errors) > 0 {
		return program, fmt.Errorf("parser errors: %v", p.errors)
	}
	return program, nil
}

// Errors returns the list of accumulated parse errors.
func (p *Parser) Errors() []ParseError {
	return p.errors
}

// declaration parses a single declaration, recovering from any parse
// error by synchronizing to the next statement boundary. This is the
// only place errors are caught; every other parsing function just
// propagates them upward.
func (p *Parser) declaration() ast.Statement {
	var stmt ast.Statement
	var err error

	if p.match(lexer.TokenVar) {
		stmt, err = p.varDeclaration()
	} else {
		stmt, err = p.statement()
	}

	if err != nil {
		p.record(err)
		p.synchronize()
		return nil
	}
	return stmt
}

// varDeclaration parses: "var" IDENT ( "=" expression )? ";"
//
// A declaration without an initializer gets a Literal(nil) sentinel so
// the interpreter can bind the variable to nil without a special case.
func (p *Parser) varDeclaration() (ast.Statement, error) {
	name, err := p.consume(lexer.TokenIdentifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}

	var initializer ast.Expression = &ast.Literal{Value: nil}
	if p.match(lexer.TokenEqual) {
		initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.VarStatement{Name: name, Initializer: initializer}, nil
}

// statement parses a single statement, dispatching on the leading token.
func (p *Parser) statement() (ast.Statement, error) {
	switch {
	case p.match(lexer.TokenPrint):
		return p.printStatement()
	case p.match(lexer.TokenLeftBrace):
		return p.block()
	case p.match(lexer.TokenIf):
		return p.ifStatement()
	case p.match(lexer.TokenWhile):
		return p.whileStatement()
	case p.match(lexer.TokenFor):
		return p.forStatement()
	case p.match(lexer.TokenBreak):
		return p.breakStatement()
	case p.match(lexer.TokenContinue):
		return p.continueStatement()
	case p.check(lexer.TokenClass), p.check(lexer.TokenFun), p.check(lexer.TokenReturn):
		// Recognized by the scanner but carrying no semantics here.
		tok := p.peek()
		return nil, ParseError{Token: tok, Message: fmt.Sprintf("'%s' is not supported.", tok.Lexeme)}
	default:
		return p.expressionStatement()
	}
}

// printStatement parses: "print" expression ";"
func (p *Parser) printStatement() (ast.Statement, error) {
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.PrintStatement{Expression: value}, nil
}

// block parses: "{" declaration* "}"
//
// Each statement inside the block goes through declaration so a parse
// error inside a block recovers without abandoning the whole block.
func (p *Parser) block() (ast.Statement, error) {
	var statements []ast.Statement
	for !p.check(lexer.TokenRightBrace) && !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}
	if _, err := p.consume(lexer.TokenRightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return &ast.BlockStatement{Statements: statements}, nil
}

// ifStatement parses: "if" "(" expression ")" statement ( "else" statement )?
//
// The else clause binds to the nearest if, which falls out of the
// recursion for free: the inner statement call consumes the else first.
func (p *Parser) ifStatement() (ast.Statement, error) {
	if _, err := p.consume(lexer.TokenLeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}

	thenBranch, err := p.statement()
	if err != nil {
		return nil, err
	}

	var elseBranch ast.Statement
	if p.match(lexer.TokenElse) {
		elseBranch, err = p.statement()
		if err != nil {
			return nil, err
		}
	}

	return &ast.IfStatement{Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}, nil
}

// whileStatement parses: "while" "(" expression ")" statement
//
// The body is parsed with loopDepth raised so break and continue inside
// it are accepted.
func (p *Parser) whileStatement() (ast.Statement, error) {
	if _, err := p.consume(lexer.TokenLeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}

	p.loopDepth++
	body, err := p.statement()
	p.loopDepth--
	if err != nil {
		return nil, err
	}

	return &ast.WhileStatement{Condition: condition, Body: body}, nil
}

// forStatement parses a for loop and desugars it into block+while:
//
//	for (init; cond; incr) body  =>  { init; while (cond) { body; incr; } }
//
// A missing condition becomes a true literal. A missing initializer or
// increment is simply omitted from the rewrite. The interpreter never
// sees a for loop.
func (p *Parser) forStatement() (ast.Statement, error) {
	if _, err := p.consume(lexer.TokenLeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var initializer ast.Statement
	var err error
	switch {
	case p.match(lexer.TokenSemicolon):
		initializer = nil
	case p.match(lexer.TokenVar):
		initializer, err = p.varDeclaration()
		if err != nil {
			return nil, err
		}
	default:
		initializer, err = p.expressionStatement()
		if err != nil {
			return nil, err
		}
	}

	var condition ast.Expression
	if !p.check(lexer.TokenSemicolon) {
		condition, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var increment ast.Expression
	if !p.check(lexer.TokenRightParen) {
		increment, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokenRightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	p.loopDepth++
	body, err := p.statement()
	p.loopDepth--
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &ast.BlockStatement{Statements: []ast.Statement{
			body,
			&ast.ExpressionStatement{Expression: increment},
		}}
	}

	if condition == nil {
		condition = &ast.Literal{Value: true}
	}
	var loop ast.Statement = &ast.WhileStatement{Condition: condition, Body: body}

	if initializer != nil {
		loop = &ast.BlockStatement{Statements: []ast.Statement{initializer, loop}}
	}

	return loop, nil
}

// breakStatement parses: "break" ";" — legal only inside a loop body.
func (p *Parser) breakStatement() (ast.Statement, error) {
	keyword := p.previous()
	if p.loopDepth == 0 {
		return nil, ParseError{Token: keyword, Message: "Use of 'break' not allowed outside a loop."}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after 'break'."); err != nil {
		return nil, err
	}
	return &ast.BreakStatement{Keyword: keyword}, nil
}

// continueStatement parses: "continue" ";" — legal only inside a loop body.
func (p *Parser) continueStatement() (ast.Statement, error) {
	keyword := p.previous()
	if p.loopDepth == 0 {
		return nil, ParseError{Token: keyword, Message: "Use of 'continue' not allowed outside a loop."}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after 'continue'."); err != nil {
		return nil, err
	}
	return &ast.ContinueStatement{Keyword: keyword}, nil
}

// expressionStatement parses: expression ";"
func (p *Parser) expressionStatement() (ast.Statement, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Expression: expr}, nil
}

// expression parses the lowest-precedence level
func (p *Parser) expression() (ast.Expression, error) {
	return p.assignment()
}

// assignment parses: ternary ( "=" assignment )?
//
// Assignment is right-associative, so the right-hand side recurses into
// assignment itself. The left-hand side is parsed as an ordinary
// expression first and then checked: only a plain variable is a valid
// assignment target.
func (p *Parser) assignment() (ast.Expression, error) {
	expr, err := p.ternary()
	if err != nil {
		return nil, err
	}

	if p.match(lexer.TokenEqual) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}

		if variable, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: variable.Name, Value: value}, nil
		}
		return nil, ParseError{Token: equals, Message: "Invalid assignment target."}
	}

	return expr, nil
}

// ternary parses: logic_or ( "?" logic_or ":" logic_or )?
//
// Both branches sit at logic_or precedence, so chaining ternaries
// requires parentheses.
func (p *Parser) ternary() (ast.Expression, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}

	if p.match(lexer.TokenQuestion) {
		thenBranch, err := p.or()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenColon, "Expect ':' in ternary expression."); err != nil {
			return nil, err
		}
		elseBranch, err := p.or()
		if err != nil {
			return nil, err
		}
		return &ast.Ternary{Condition: expr, ThenBranch: thenBranch, ElseBranch: elseBranch}, nil
	}

	return expr, nil
}

// or parses: logic_and ( "or" logic_and )*
func (p *Parser) or() (ast.Expression, error) {
	expr, err := p.and()
	if err != nil {
		return nil, err
	}

	for p.match(lexer.TokenOr) {
		operator := p.previous()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

// and parses: equality ( "and" equality )*
func (p *Parser) and() (ast.Expression, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}

	for p.match(lexer.TokenAnd) {
		operator := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

// equality parses: comparison ( ( "!=" | "==" ) comparison )*
func (p *Parser) equality() (ast.Expression, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}

	for p.match(lexer.TokenBangEqual, lexer.TokenEqualEqual) {
		operator := p.previous()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

// comparison parses: term ( ( ">" | ">=" | "<" | "<=" ) term )*
func (p *Parser) comparison() (ast.Expression, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}

	for p.match(lexer.TokenGreater, lexer.TokenGreaterEqual, lexer.TokenLess, lexer.TokenLessEqual) {
		operator := p.previous()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

// term parses: factor ( ( "-" | "+" ) factor )*
func (p *Parser) term() (ast.Expression, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}

	for p.match(lexer.TokenMinus, lexer.TokenPlus) {
		operator := p.previous()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

// factor parses: unary ( ( "/" | "*" ) unary )*
func (p *Parser) factor() (ast.Expression, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}

	for p.match(lexer.TokenSlash, lexer.TokenStar) {
		operator := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

// unary parses: ( "!" | "-" ) unary | primary
func (p *Parser) unary() (ast.Expression, error) {
	if p.match(lexer.TokenBang, lexer.TokenMinus) {
		operator := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Operator: operator, Right: right}, nil
	}
	return p.primary()
}

// primary parses literals, variables, and parenthesized expressions
func (p *Parser) primary() (ast.Expression, error) {
	switch {
	case p.match(lexer.TokenFalse):
		return &ast.Literal{Value: false}, nil
	case p.match(lexer.TokenTrue):
		return &ast.Literal{Value: true}, nil
	case p.match(lexer.TokenNil):
		return &ast.Literal{Value: nil}, nil
	case p.match(lexer.TokenNumber, lexer.TokenString):
		return &ast.Literal{Value: p.previous().Literal}, nil
	case p.match(lexer.TokenIdentifier):
		return &ast.Variable{Name: p.previous()}, nil
	case p.match(lexer.TokenLeftParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenRightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Expression: expr}, nil
	case p.check(lexer.TokenSuper), p.check(lexer.TokenThis):
		tok := p.peek()
		return nil, ParseError{Token: tok, Message: fmt.Sprintf("'%s' is not supported.", tok.Lexeme)}
	default:
		return nil, ParseError{Token: p.peek(), Message: "Expect expression."}
	}
}

// match consumes the current token if its type is one of the given types
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances past the current token if it has the expected type,
// otherwise it returns a ParseError at the current token.
func (p *Parser) consume(tt lexer.TokenType, message string) (lexer.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return lexer.Token{}, ParseError{Token: p.peek(), Message: message}
}

// check reports whether the current token has the given type
func (p *Parser) check(tt lexer.TokenType) bool {
	if p.isAtEnd() {
		return tt == lexer.TokenEOF
	}
	return p.peek().Type == tt
}

// advance consumes and returns the current token
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}

// peek returns the current token without consuming it
func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

// record adds a parse error to the error list, converting any stray
// error type into a ParseError at the current token.
func (p *Parser) record(err error) {
	if pe, ok := err.(ParseError); ok {
		p.errors = append(p.errors, pe)
		return
	}
	p.errors = append(p.errors, ParseError{Token: p.peek(), Message: err.Error()})
}

// synchronize discards tokens until a likely statement boundary: just
// past a semicolon, or just before a keyword that begins a declaration
// or statement. Called after a parse error so subsequent statements can
// still be checked.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == lexer.TokenSemicolon {
			return
		}
		switch p.peek().Type {
		case lexer.TokenClass, lexer.TokenFun, lexer.TokenVar, lexer.TokenFor,
			lexer.TokenIf, lexer.TokenWhile, lexer.TokenPrint, lexer.TokenReturn:
			return
		}
		p.advance()
	}
}
