package parser

import (
	"testing"

	"github.com/tipy-lang/tipc/pkg/ast"
	"github.com/tipy-lang/tipc/pkg/diag"
	"github.com/tipy-lang/tipc/pkg/lexer"
	"github.com/tipy-lang/tipc/pkg/token"
)

func parse(t *testing.T, source string) (*ast.Node, []*diag.Error) {
	t.Helper()
	p := NewParser(lexer.NewLexer([]rune(source)))
	return p.ParseProgram()
}

// helper: parse a program with no errors expected
func parseOK(t *testing.T, source string) *ast.Node {
	t.Helper()
	program, errs := parse(t, source)
	for _, err := range errs {
		t.Errorf("unexpected parse error: %v", err)
	}
	if t.Failed() {
		t.FailNow()
	}
	return program
}

// helper: dig the first statement out of the first function's body
func firstStatement(t *testing.T, program *ast.Node) *ast.Node {
	t.Helper()
	prog := program.Data.(ast.ProgramNode)
	if len(prog.Funcs) == 0 {
		t.Fatal("program has no functions")
	}
	fn := prog.Funcs[0].Data.(ast.FuncDeclNode)
	body := fn.Body.Data.(ast.BlockNode)
	if len(body.Stmts) == 0 {
		t.Fatal("function body is empty")
	}
	return body.Stmts[0]
}

func firstExpression(t *testing.T, program *ast.Node) *ast.Node {
	t.Helper()
	stmt := firstStatement(t, program)
	es, ok := stmt.Data.(ast.ExprStmtNode)
	if !ok {
		t.Fatalf("expected an expression statement, got %T", stmt.Data)
	}
	return es.Expr
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"5 + 2 * 10", "(5 + (2 * 10))"},
		{"2 * 3 + 4 * 5", "((2 * 3) + (4 * 5))"},
		{"-5 + f(2, 3 + 4) * 10", "((-5) + (f(2, (3 + 4)) * 10))"},
		{"!true == false", "((!true) == false)"},
		{"1 + 2 < 3 * 4", "((1 + 2) < (3 * 4))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a - b - c", "((a - b) - c)"},
		{"a = b = 1", "(a = (b = 1))"},
	}
	for _, tt := range tests {
		program := parseOK(t, "main() { "+tt.input+"; }")
		expr := firstExpression(t, program)
		if got := ast.ExprString(expr); got != tt.want {
			t.Errorf("%q: got %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestFunctionDecl(t *testing.T) {
	program := parseOK(t, "add(a: i64, b: i64) -> i64 { ret a + b; }")
	prog := program.Data.(ast.ProgramNode)
	fn := prog.Funcs[0].Data.(ast.FuncDeclNode)
	if fn.Name != "add" {
		t.Errorf("expected name add, got %s", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[0].Type.Name != "i64" {
		t.Errorf("unexpected first param: %s %s", fn.Params[0].Name, fn.Params[0].Type)
	}
	if fn.ReturnType.Name != "i64" {
		t.Errorf("expected return type i64, got %s", fn.ReturnType)
	}
}

func TestFunctionDeclDefaultsToVoid(t *testing.T) {
	program := parseOK(t, "noop() { }")
	prog := program.Data.(ast.ProgramNode)
	fn := prog.Funcs[0].Data.(ast.FuncDeclNode)
	if fn.ReturnType.Name != "void" {
		t.Errorf("expected void return type, got %s", fn.ReturnType)
	}
}

func TestVarDecl(t *testing.T) {
	program := parseOK(t, "main() { x: ~ i64 = 5; }")
	stmt := firstStatement(t, program)
	decl, ok := stmt.Data.(ast.VarDeclNode)
	if !ok {
		t.Fatalf("expected a variable declaration, got %T", stmt.Data)
	}
	if decl.Name != "x" {
		t.Errorf("expected name x, got %s", decl.Name)
	}
	if !decl.IsMutable {
		t.Error("expected a mutable binding")
	}
	if decl.DeclType.Name != "i64" {
		t.Errorf("expected type i64, got %s", decl.DeclType)
	}
	if decl.Init == nil {
		t.Fatal("expected an initializer")
	}
	if got := ast.ExprString(decl.Init); got != "5" {
		t.Errorf("expected initializer 5, got %s", got)
	}
}

func TestVarDeclWithoutInit(t *testing.T) {
	program := parseOK(t, "main() { x: i64; }")
	decl := firstStatement(t, program).Data.(ast.VarDeclNode)
	if decl.IsMutable {
		t.Error("expected an immutable binding")
	}
	if decl.Init != nil {
		t.Errorf("expected no initializer, got %s", ast.ExprString(decl.Init))
	}
}

func TestPointerTypeRef(t *testing.T) {
	program := parseOK(t, "f(p: ~^~i64) { }")
	prog := program.Data.(ast.ProgramNode)
	fn := prog.Funcs[0].Data.(ast.FuncDeclNode)
	ref := fn.Params[0].Type
	if !ref.IsPointer || !ref.MutPtr || !ref.MutPointee {
		t.Fatalf("expected a mutable pointer to mutable i64, got %s", ref)
	}
	if ref.Elem == nil || ref.Elem.Name != "i64" {
		t.Errorf("expected element i64, got %s", ref.Elem)
	}
}

func TestIfElifElse(t *testing.T) {
	program := parseOK(t, "main() { if a { 1 } elif b { 2 } else { 3 }; }")
	expr := firstExpression(t, program)
	ifNode, ok := expr.Data.(ast.IfNode)
	if !ok {
		t.Fatalf("expected an if expression, got %T", expr.Data)
	}
	// elif parses as a nested if in the else slot
	nested, ok := ifNode.Else.Data.(ast.IfNode)
	if !ok {
		t.Fatalf("expected elif to nest an if, got %T", ifNode.Else.Data)
	}
	if nested.Else == nil {
		t.Fatal("expected the final else branch")
	}
	if nested.Else.Kind != ast.Block {
		t.Errorf("expected a block in the final else, got %v", nested.Else.Kind)
	}
}

func TestLoopWithBreakValue(t *testing.T) {
	program := parseOK(t, "main() { loop { break 5; }; }")
	expr := firstExpression(t, program)
	loopNode, ok := expr.Data.(ast.LoopNode)
	if !ok {
		t.Fatalf("expected a loop expression, got %T", expr.Data)
	}
	body := loopNode.Body.Data.(ast.BlockNode)
	brk, ok := body.Stmts[0].Data.(ast.BreakNode)
	if !ok {
		t.Fatalf("expected a break statement, got %T", body.Stmts[0].Data)
	}
	if brk.Value == nil {
		t.Fatal("expected a break value")
	}
	if got := ast.ExprString(brk.Value); got != "5" {
		t.Errorf("expected break value 5, got %s", got)
	}
}

func TestWhileStatement(t *testing.T) {
	program := parseOK(t, "main() { while x < 10 { x = x + 1; } }")
	stmt := firstStatement(t, program)
	wh, ok := stmt.Data.(ast.WhileNode)
	if !ok {
		t.Fatalf("expected a while statement, got %T", stmt.Data)
	}
	if got := ast.ExprString(wh.Cond); got != "(x < 10)" {
		t.Errorf("unexpected condition: %s", got)
	}
}

func TestReturnWithoutValue(t *testing.T) {
	program := parseOK(t, "main() { ret; }")
	ret, ok := firstStatement(t, program).Data.(ast.ReturnNode)
	if !ok {
		t.Fatal("expected a return statement")
	}
	if ret.Value != nil {
		t.Errorf("expected no return value, got %s", ast.ExprString(ret.Value))
	}
}

func TestErrorRecoveryKeepsParsing(t *testing.T) {
	// The bad return expression must not swallow the declaration after it.
	program, errs := parse(t, "main() { ret +; x: i64 = 1; x; }")
	if len(errs) == 0 {
		t.Fatal("expected at least one parse error")
	}
	prog := program.Data.(ast.ProgramNode)
	if len(prog.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Funcs))
	}
	body := prog.Funcs[0].Data.(ast.FuncDeclNode).Body.Data.(ast.BlockNode)
	found := false
	for _, stmt := range body.Stmts {
		if decl, ok := stmt.Data.(ast.VarDeclNode); ok && decl.Name == "x" {
			found = true
		}
	}
	if !found {
		t.Error("expected the declaration of x to survive recovery")
	}
}

func TestGarbageInputTerminates(t *testing.T) {
	_, errs := parse(t, ")))) } { ;;; ==")
	if len(errs) == 0 {
		t.Error("expected parse errors")
	}
}

func TestUnexpectedEOF(t *testing.T) {
	_, errs := parse(t, "main() { if x {")
	if len(errs) == 0 {
		t.Fatal("expected parse errors")
	}
	sawEOF := false
	for _, err := range errs {
		if err.Kind == diag.UnexpectedEOF || err.Kind == diag.UnexpectedToken {
			sawEOF = true
		}
	}
	if !sawEOF {
		t.Errorf("expected an unexpected-token or EOF error, got %v", errs)
	}
}

func TestLexerErrorsSurface(t *testing.T) {
	_, errs := parse(t, "main() { @ }")
	if len(errs) == 0 {
		t.Fatal("expected errors")
	}
	if errs[0].Stage != diag.StageLexer {
		t.Errorf("expected a lexer-stage error first, got %v", errs[0])
	}
}

func TestBlockExpression(t *testing.T) {
	program := parseOK(t, "main() { x: i64 = { 1; 2 }; }")
	decl := firstStatement(t, program).Data.(ast.VarDeclNode)
	if decl.Init.Kind != ast.Block {
		t.Fatalf("expected a block initializer, got %v", decl.Init.Kind)
	}
	block := decl.Init.Data.(ast.BlockNode)
	if len(block.Stmts) != 2 {
		t.Errorf("expected 2 statements in the block, got %d", len(block.Stmts))
	}
}

func TestStatementStringer(t *testing.T) {
	program := parseOK(t, "main() { x: ~ i64 = 5; }")
	got := ast.StmtString(firstStatement(t, program))
	want := "x: ~i64 = 5;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCallArguments(t *testing.T) {
	program := parseOK(t, "main() { f(); g(1); h(1, 2, 3); }")
	body := program.Data.(ast.ProgramNode).Funcs[0].Data.(ast.FuncDeclNode).Body.Data.(ast.BlockNode)
	wantArgs := []int{0, 1, 3}
	for i, stmt := range body.Stmts {
		call := stmt.Data.(ast.ExprStmtNode).Expr.Data.(ast.CallNode)
		if len(call.Args) != wantArgs[i] {
			t.Errorf("call %d: expected %d args, got %d", i, wantArgs[i], len(call.Args))
		}
	}
}

func TestTokenDisplay(t *testing.T) {
	tok := token.Token{Type: token.Ident, Value: "foo", Line: 3, Column: 7}
	if got := tok.Display(); got != "foo" {
		t.Errorf("Display: got %q", got)
	}
	eof := token.Token{Type: token.EOF}
	if got := eof.Display(); got != "end of input" {
		t.Errorf("Display EOF: got %q", got)
	}
}
