package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders an expression in parenthesized prefix form, e.g.
// "1 + 2 * 3" becomes "(+ 1 (* 2 3))". Useful for debugging the parser.
func Print(expr Expression) string {
	switch e := expr.(type) {
	case *Literal:
		return printLiteral(e.Value)
	case *Grouping:
		return parenthesize("group", e.Expression)
	case *Unary:
		return parenthesize(e.Operator.Lexeme, e.Right)
	case *Binary:
		return parenthesize(e.Operator.Lexeme, e.Left, e.Right)
	case *Logical:
		return parenthesize(e.Operator.Lexeme, e.Left, e.Right)
	case *Ternary:
		return parenthesize("?:", e.Condition, e.ThenBranch, e.ElseBranch)
	case *Variable:
		return e.Name.Lexeme
	case *Assign:
		return fmt.Sprintf("(= %s %s)", e.Name.Lexeme, Print(e.Value))
	default:
		return fmt.Sprintf("<unknown expr %T>", expr)
	}
}

// PrintStmt renders a statement in the same prefix form.
func PrintStmt(stmt Statement) string {
	switch s := stmt.(type) {
	case *ExpressionStatement:
		return fmt.Sprintf("(; %s)", Print(s.Expression))
	case *PrintStatement:
		return fmt.Sprintf("(print %s)", Print(s.Expression))
	case *VarStatement:
		return fmt.Sprintf("(var %s %s)", s.Name.Lexeme, Print(s.Initializer))
	case *BlockStatement:
		var b strings.Builder
		b.WriteString("(block")
		for _, inner := range s.Statements {
			b.WriteString(" ")
			b.WriteString(PrintStmt(inner))
		}
		b.WriteString(")")
		return b.String()
	case *IfStatement:
		if s.ElseBranch == nil {
			return fmt.Sprintf("(if %s %s)", Print(s.Condition), PrintStmt(s.ThenBranch))
		}
		return fmt.Sprintf("(if %s %s %s)",
			Print(s.Condition), PrintStmt(s.ThenBranch), PrintStmt(s.ElseBranch))
	case *WhileStatement:
		return fmt.Sprintf("(while %s %s)", Print(s.Condition), PrintStmt(s.Body))
	case *BreakStatement:
		return "(break)"
	case *ContinueStatement:
		return "(continue)"
	default:
		return fmt.Sprintf("<unknown stmt %T>", stmt)
	}
}

// PrintProgram renders every statement of a program, one per line.
func PrintProgram(program *Program) string {
	lines := make([]string, 0, len(program.Statements))
	for _, stmt := range program.Statements {
		lines = append(lines, PrintStmt(stmt))
	}
	return strings.Join(lines, "\n")
}

func parenthesize(name string, exprs ...Expression) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	for _, expr := range exprs {
		b.WriteString(" ")
		b.WriteString(Print(expr))
	}
	b.WriteString(")")
	return b.String()
}

func printLiteral(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
