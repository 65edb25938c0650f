package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kristofer/lox/pkg/ast"
	"github.com/kristofer/lox/pkg/lexer"
)

// parse scans and parses source, failing the test on any parse error.
func parse(t *testing.T, source string) *ast.Program {
	t.Helper()

	l := lexer.New(source)
	tokens := l.Tokenize()
	if len(l.Errors()) != 0 {
		t.Fatalf("scan errors: %v", l.Errors())
	}

	p := New(tokens)
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	return program
}

// parseWithErrors scans and parses source, expecting at least one error.
func parseWithErrors(t *testing.T, source string) []ParseError {
	t.Helper()

	l := lexer.New(source)
	p := New(l.Tokenize())
	if _, err := p.Parse(); err == nil {
		t.Fatalf("expected parse errors for %q, got none", source)
	}
	return p.Errors()
}

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1 + 2 * 3;", "(; (+ 1 (* 2 3)))"},
		{"1 * 2 + 3;", "(; (+ (* 1 2) 3))"},
		{"(1 + 2) * 3;", "(; (* (group (+ 1 2)) 3))"},
		{"1 + 2 < 3 + 4;", "(; (< (+ 1 2) (+ 3 4)))"},
		{"1 < 2 == true;", "(; (== (< 1 2) true))"},
		{"!true == false;", "(; (== (! true) false))"},
		{"-1 - -2;", "(; (- (- 1) (- 2)))"},
		{"!!x;", "(; (! (! x)))"},
		{"a or b and c;", "(; (or a (and b c)))"},
		{"a == b or c;", "(; (or (== a b) c))"},
		{"a ? b : c;", "(; (?: a b c))"},
		{"a or b ? 1 : 2;", "(; (?: (or a b) 1 2))"},
		{"x = y = 1;", "(; (= x (= y 1)))"},
		{"1 / 2 / 3;", "(; (/ (/ 1 2) 3))"},
		{"1 - 2 - 3;", "(; (- (- 1 2) 3))"},
	}

	for _, tt := range tests {
		program := parse(t, tt.source)
		got := ast.PrintProgram(program)
		if got != tt.want {
			t.Errorf("%q parsed wrong.\nexpected=%s\ngot=%s", tt.source, tt.want, got)
		}
	}
}

func TestParse_Statements(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print 1;", "(print 1)"},
		{"var a = 1;", "(var a 1)"},
		{"var a;", "(var a nil)"},
		{"{ var a = 1; print a; }", "(block (var a 1) (print a))"},
		{"if (x) print 1;", "(if x (print 1))"},
		{"if (x) print 1; else print 2;", "(if x (print 1) (print 2))"},
		{"while (x) print 1;", "(while x (print 1))"},
		{"while (x) { break; }", "(while x (block (break)))"},
		{"while (x) { continue; }", "(while x (block (continue)))"},
	}

	for _, tt := range tests {
		program := parse(t, tt.source)
		got := ast.PrintProgram(program)
		if got != tt.want {
			t.Errorf("%q parsed wrong.\nexpected=%s\ngot=%s", tt.source, tt.want, got)
		}
	}
}

func TestParse_DanglingElse(t *testing.T) {
	program := parse(t, "if (a) if (b) print 1; else print 2;")
	want := "(if a (if b (print 1) (print 2)))"
	if got := ast.PrintProgram(program); got != want {
		t.Fatalf("else bound wrong.\nexpected=%s\ngot=%s", want, got)
	}
}

func TestParse_ForDesugaring(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{
			"for (var i = 0; i < 3; i = i + 1) print i;",
			"(block (var i 0) (while (< i 3) (block (print i) (; (= i (+ i 1))))))",
		},
		{
			"for (; x < 3;) print x;",
			"(while (< x 3) (print x))",
		},
		{
			"for (;;) print 1;",
			"(while true (print 1))",
		},
		{
			"for (x = 0;; x = x + 1) print x;",
			"(block (; (= x 0)) (while true (block (print x) (; (= x (+ x 1))))))",
		},
	}

	for _, tt := range tests {
		program := parse(t, tt.source)
		got := ast.PrintProgram(program)
		if got != tt.want {
			t.Errorf("%q desugared wrong.\nexpected=%s\ngot=%s", tt.source, tt.want, got)
		}
	}
}

func TestParse_Determinism(t *testing.T) {
	source := `var a = 1;
for (var i = 0; i < 10; i = i + 1) {
	if (i == 3 and a > 0) continue;
	print i ? "y" : "n";
}`

	l := lexer.New(source)
	tokens := l.Tokenize()

	first, err := New(tokens).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	second, err := New(tokens).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("same tokens produced different ASTs (-first +second):\n%s", diff)
	}
}

func TestParse_AssignmentTargets(t *testing.T) {
	// A plain variable is the only valid assignment target
	program := parse(t, "a = 1;")
	if got := ast.PrintProgram(program); got != "(; (= a 1))" {
		t.Fatalf("assignment parsed wrong: %s", got)
	}

	errs := parseWithErrors(t, "1 + 2 = 3;")
	if errs[0].Message != "Invalid assignment target." {
		t.Fatalf("wrong message: %q", errs[0].Message)
	}
	if errs[0].Token.Lexeme != "=" {
		t.Fatalf("error attributed to wrong token: %q", errs[0].Token.Lexeme)
	}
}

func TestParse_BreakContinueOutsideLoop(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"break;", "Use of 'break' not allowed outside a loop."},
		{"continue;", "Use of 'continue' not allowed outside a loop."},
		{"if (x) break;", "Use of 'break' not allowed outside a loop."},
		{"while (x) print 1; continue;", "Use of 'continue' not allowed outside a loop."},
	}

	for _, tt := range tests {
		errs := parseWithErrors(t, tt.source)
		found := false
		for _, e := range errs {
			if e.Message == tt.want {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: expected error %q, got %v", tt.source, tt.want, errs)
		}
	}
}

func TestParse_BreakInsideNestedBlock(t *testing.T) {
	// Loop depth survives block nesting
	parse(t, "while (x) { { if (y) { break; } } }")
	parse(t, "for (;;) { { continue; } }")
}

func TestParse_UnsupportedKeywords(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"class Foo {}", "'class' is not supported."},
		{"fun foo() {}", "'fun' is not supported."},
		{"return 1;", "'return' is not supported."},
		{"print this;", "'this' is not supported."},
		{"print super.x;", "'super' is not supported."},
	}

	for _, tt := range tests {
		errs := parseWithErrors(t, tt.source)
		if errs[0].Message != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.source, tt.want, errs[0].Message)
		}
	}
}

func TestParse_SynchronizeReportsMultipleErrors(t *testing.T) {
	source := `var = 1;
print 2;
var b = ;
print 3;`

	l := lexer.New(source)
	p := New(l.Tokenize())
	program, err := p.Parse()
	if err == nil {
		t.Fatal("expected parse errors")
	}

	if len(p.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", p.Errors())
	}
	// The good statements still parse
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 surviving statements, got %d", len(program.Statements))
	}
}

func TestParse_ErrorFormats(t *testing.T) {
	errs := parseWithErrors(t, "print 1")
	msg := errs[0].Error()
	if !strings.Contains(msg, "Error at end:") {
		t.Fatalf("EOF error rendered wrong: %q", msg)
	}

	errs = parseWithErrors(t, "print ;")
	msg = errs[0].Error()
	if !strings.Contains(msg, "Error at ';':") {
		t.Fatalf("token error rendered wrong: %q", msg)
	}
}

func TestParse_MissingSemicolon(t *testing.T) {
	errs := parseWithErrors(t, "var a = 1")
	if errs[0].Message != "Expect ';' after variable declaration." {
		t.Fatalf("wrong message: %q", errs[0].Message)
	}
}

func TestParse_TernaryRequiresColon(t *testing.T) {
	errs := parseWithErrors(t, "print a ? b;")
	if errs[0].Message != "Expect ':' in ternary expression." {
		t.Fatalf("wrong message: %q", errs[0].Message)
	}
}
