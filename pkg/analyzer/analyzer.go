// Package analyzer implements semantic analysis: name resolution, type
// checking, and loop/return context validation. It runs in two passes
// so functions can call each other regardless of declaration order.
package analyzer

import (
	"github.com/tipy-lang/tipc/pkg/ast"
	"github.com/tipy-lang/tipc/pkg/config"
	"github.com/tipy-lang/tipc/pkg/diag"
	"github.com/tipy-lang/tipc/pkg/scope"
	"github.com/tipy-lang/tipc/pkg/token"
	"github.com/tipy-lang/tipc/pkg/types"
)

type Analyzer struct {
	cfg           *config.Config
	symtab        *scope.SymbolTable
	errors        []*diag.Error
	warnings      []*diag.Warning
	currentReturn *types.Type
	loopDepth     int
	locals        []map[string]*declInfo
}

// declInfo backs the unused-variable warning.
type declInfo struct {
	span diag.Span
	used bool
}

func NewAnalyzer(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Analyzer{cfg: cfg, symtab: scope.NewSymbolTable()}
}

// Warnings returns the non-fatal diagnostics collected so far.
func (a *Analyzer) Warnings() []*diag.Warning { return a.warnings }

func (a *Analyzer) warnf(w *diag.Warning) { a.warnings = append(a.warnings, w) }

// enterLocals/leaveLocals bracket a scope for warning bookkeeping.
func (a *Analyzer) enterLocals() {
	a.locals = append(a.locals, map[string]*declInfo{})
}

func (a *Analyzer) leaveLocals() {
	frame := a.locals[len(a.locals)-1]
	a.locals = a.locals[:len(a.locals)-1]
	if !a.cfg.IsWarningEnabled(config.WarnUnusedVariable) {
		return
	}
	for name, info := range frame {
		if !info.used {
			a.warnf(diag.NewWarning(info.span, "binding '%s' is never read", name))
		}
	}
}

func (a *Analyzer) trackDecl(name string, span diag.Span) {
	if len(a.locals) == 0 {
		return
	}
	if a.cfg.IsWarningEnabled(config.WarnShadow) {
		if _, shadowed := a.symtab.Lookup(name); shadowed {
			a.warnf(diag.NewWarning(span, "binding '%s' shadows an outer binding", name))
		}
	}
	a.locals[len(a.locals)-1][name] = &declInfo{span: span}
}

func (a *Analyzer) trackUse(name string) {
	for i := len(a.locals) - 1; i >= 0; i-- {
		if info, ok := a.locals[i][name]; ok {
			info.used = true
			return
		}
	}
}

// Analyze checks the program and annotates expression nodes with their
// types. The returned symbol table holds the global function signatures
// the code generator consumes. Pass 1 registers every signature; if it
// produced any error, pass 2 does not run at all.
func (a *Analyzer) Analyze(program *ast.Node) (*scope.SymbolTable, []*diag.Error) {
	prog, ok := program.Data.(ast.ProgramNode)
	if !ok {
		a.errorf(diag.NewInternal(program.Tok.Span(), "analyzer invoked on a non-program node"))
		return a.symtab, a.errors
	}

	for _, fn := range prog.Funcs {
		a.registerFunctionSignature(fn)
	}
	if len(a.errors) > 0 {
		return a.symtab, a.errors
	}

	for _, fn := range prog.Funcs {
		a.analyzeFunctionBody(fn)
	}
	return a.symtab, a.errors
}

func (a *Analyzer) errorf(err *diag.Error) {
	a.errors = append(a.errors, err)
}

// resolveTypeRef turns a syntactic type reference into a type, reporting
// unknown spellings.
func (a *Analyzer) resolveTypeRef(ref *ast.TypeRef) *types.Type {
	if ref == nil {
		return types.Void
	}
	if ref.IsPointer {
		pointee := a.resolveTypeRef(ref.Elem)
		if pointee.Kind == types.KindError {
			return types.Error
		}
		return types.NewPointer(ref.MutPtr, ref.MutPointee, pointee)
	}
	if t, ok := types.FromName(ref.Name); ok {
		return t
	}
	a.errorf(diag.NewSymbolNotFound(ref.Name, ref.Tok.Span()))
	return types.Error
}

func (a *Analyzer) registerFunctionSignature(fn *ast.Node) {
	d, ok := fn.Data.(ast.FuncDeclNode)
	if !ok {
		a.errorf(diag.NewInternal(fn.Tok.Span(), "top-level node is not a function declaration"))
		return
	}
	params := make([]*types.Type, len(d.Params))
	for i, p := range d.Params {
		params[i] = a.resolveTypeRef(p.Type)
	}
	ret := a.resolveTypeRef(d.ReturnType)
	sig := types.NewFunction(params, ret)
	if err := a.symtab.Define(scope.Symbol{Name: d.Name, Type: sig, IsMutable: false}, fn.Tok.Span()); err != nil {
		a.errorf(err)
	}
}

func (a *Analyzer) analyzeFunctionBody(fn *ast.Node) {
	d := fn.Data.(ast.FuncDeclNode)

	a.symtab.Enter()
	defer a.symtab.Leave()
	a.currentReturn = a.resolveTypeRef(d.ReturnType)
	defer func() { a.currentReturn = nil }()
	a.enterLocals()
	defer a.leaveLocals()

	// Parameters are immutable bindings in the function's outer scope;
	// the body block may shadow them.
	for _, p := range d.Params {
		sym := scope.Symbol{Name: p.Name, Type: a.resolveTypeRef(p.Type), IsMutable: false}
		if err := a.symtab.Define(sym, p.Tok.Span()); err != nil {
			a.errorf(err)
		}
	}
	// A body ending in a bare expression returns that value, so its type
	// must agree with the declared return type. A Void body may still
	// return on every path via explicit ret; divergence is settled later.
	bodyType := a.analyzeBlock(d.Body)
	if a.currentReturn.Kind != types.KindVoid && bodyType.Kind != types.KindVoid &&
		!isError(bodyType, a.currentReturn) && !types.Equal(bodyType, a.currentReturn) {
		a.errorf(diag.NewTypeMismatch(a.currentReturn.String(), bodyType.String(), d.Body.Tok.Span()))
	}
}

// analyzeBlock opens a scope, checks every statement, and gives the
// block the type of its final statement when that statement is a bare
// expression, Void otherwise.
func (a *Analyzer) analyzeBlock(block *ast.Node) *types.Type {
	d, ok := block.Data.(ast.BlockNode)
	if !ok {
		a.errorf(diag.NewInternal(block.Tok.Span(), "expected a block node"))
		return types.Error
	}

	a.symtab.Enter()
	defer a.symtab.Leave()
	a.enterLocals()
	defer a.leaveLocals()

	result := types.Void
	diverged := false
	for i, stmt := range d.Stmts {
		if diverged {
			if a.cfg.IsWarningEnabled(config.WarnUnreachableCode) {
				a.warnf(diag.NewWarning(stmt.Tok.Span(), "unreachable code"))
			}
			diverged = false // one report per dead region
		}
		t := a.analyzeStatement(stmt)
		switch stmt.Kind {
		case ast.Return, ast.Break, ast.Continue:
			diverged = true
		}
		if i == len(d.Stmts)-1 && stmt.Kind == ast.ExprStmt {
			result = t
		}
	}
	block.Typ = result
	return result
}

func (a *Analyzer) analyzeStatement(stmt *ast.Node) *types.Type {
	switch d := stmt.Data.(type) {
	case ast.VarDeclNode:
		declared := a.resolveTypeRef(d.DeclType)
		if d.Init != nil {
			initType := a.analyzeExpression(d.Init)
			if !isError(declared, initType) && !types.Equal(declared, initType) {
				a.errorf(diag.NewTypeMismatch(declared.String(), initType.String(), d.Init.Tok.Span()))
			}
		}
		a.trackDecl(d.Name, stmt.Tok.Span())
		sym := scope.Symbol{Name: d.Name, Type: declared, IsMutable: d.IsMutable}
		if err := a.symtab.Define(sym, stmt.Tok.Span()); err != nil {
			a.errorf(err)
		}
		return types.Void

	case ast.ReturnNode:
		actual := types.Void
		if d.Value != nil {
			actual = a.analyzeExpression(d.Value)
		}
		expected := a.currentReturn
		if expected == nil {
			expected = types.Error
		}
		if !isError(actual, expected) && !types.Equal(actual, expected) {
			a.errorf(diag.NewTypeMismatch(expected.String(), actual.String(), stmt.Tok.Span()))
		}
		return types.Void

	case ast.WhileNode:
		cond := a.analyzeExpression(d.Cond)
		if cond.Kind != types.KindError && !types.Equal(cond, types.Bool) {
			a.errorf(diag.NewConditionNotBoolean(cond.String(), d.Cond.Tok.Span()))
		}
		a.loopDepth++
		a.analyzeBlock(d.Body)
		a.loopDepth--
		return types.Void

	case ast.BreakNode:
		if a.loopDepth == 0 {
			a.errorf(diag.NewIllegalBreak(stmt.Tok.Span()))
		}
		if d.Value != nil {
			a.analyzeExpression(d.Value)
		}
		return types.Void

	case ast.ContinueNode:
		if a.loopDepth == 0 {
			a.errorf(diag.NewIllegalContinue(stmt.Tok.Span()))
		}
		return types.Void

	case ast.ExprStmtNode:
		t := a.analyzeExpression(d.Expr)
		stmt.Typ = t
		return t
	}

	a.errorf(diag.NewInternal(stmt.Tok.Span(), "unhandled statement kind %d", stmt.Kind))
	return types.Error
}

func (a *Analyzer) analyzeExpression(expr *ast.Node) *types.Type {
	t := a.expressionType(expr)
	expr.Typ = t
	return t
}

func (a *Analyzer) expressionType(expr *ast.Node) *types.Type {
	switch d := expr.Data.(type) {
	case ast.IdentNode:
		sym, ok := a.symtab.Lookup(d.Name)
		if !ok {
			a.errorf(diag.NewSymbolNotFound(d.Name, expr.Tok.Span()))
			return types.Error
		}
		a.trackUse(d.Name)
		return sym.Type

	case ast.IntNode:
		return types.I64
	case ast.FloatNode:
		return types.F64
	case ast.BoolNode:
		return types.Bool
	case ast.CharNode:
		return types.Char
	case ast.StringNode:
		return types.Str

	case ast.PrefixNode:
		operand := a.analyzeExpression(d.Operand)
		if operand.Kind == types.KindError {
			return types.Error
		}
		switch d.Op {
		case token.Minus:
			if operand.IsSignedInteger() || operand.IsFloat() {
				return operand
			}
			a.errorf(diag.NewInvalidOperatorForType("-", operand.String(), expr.Tok.Span()))
		case token.Bang:
			if types.Equal(operand, types.Bool) {
				return types.Bool
			}
			a.errorf(diag.NewInvalidOperatorForType("!", operand.String(), expr.Tok.Span()))
		}
		return types.Error

	case ast.InfixNode:
		left := a.analyzeExpression(d.Left)
		right := a.analyzeExpression(d.Right)
		if isError(left, right) {
			return types.Error
		}
		if !types.Equal(left, right) {
			a.errorf(diag.NewTypeMismatch(left.String(), right.String(), expr.Tok.Span()))
			return types.Error
		}
		switch d.Op {
		case token.Equal, token.NotEqual, token.LessThan, token.LessEqual,
			token.GreaterThan, token.GreaterEqual:
			return types.Bool
		}
		return left

	case ast.AssignNode:
		value := a.analyzeExpression(d.Value)
		ident, ok := d.Target.Data.(ast.IdentNode)
		if !ok {
			a.errorf(diag.NewInvalidAssignmentTarget(diag.StageSemantic, d.Target.Tok.Span()))
			return types.Error
		}
		sym, found := a.symtab.Lookup(ident.Name)
		if !found {
			a.errorf(diag.NewSymbolNotFound(ident.Name, d.Target.Tok.Span()))
			return types.Error
		}
		d.Target.Typ = sym.Type
		if !sym.IsMutable {
			a.errorf(diag.NewImmutableAssignment(ident.Name, d.Target.Tok.Span()))
		}
		if !isError(sym.Type, value) && !types.Equal(sym.Type, value) {
			a.errorf(diag.NewTypeMismatch(sym.Type.String(), value.String(), d.Value.Tok.Span()))
			return types.Error
		}
		return value

	case ast.CallNode:
		callee := a.analyzeExpression(d.Callee)
		argTypes := make([]*types.Type, len(d.Args))
		for i, arg := range d.Args {
			argTypes[i] = a.analyzeExpression(arg)
		}
		if callee.Kind == types.KindError {
			return types.Error
		}
		if callee.Kind != types.KindFunction {
			a.errorf(diag.NewNotAFunction(callee.String(), d.Callee.Tok.Span()))
			return types.Error
		}
		if len(argTypes) != len(callee.Params) {
			a.errorf(diag.NewArityMismatch(len(callee.Params), len(argTypes), expr.Tok.Span()))
			return types.Error
		}
		for i, at := range argTypes {
			if !isError(at, callee.Params[i]) && !types.Equal(at, callee.Params[i]) {
				a.errorf(diag.NewTypeMismatch(callee.Params[i].String(), at.String(), d.Args[i].Tok.Span()))
			}
		}
		return callee.Return

	case ast.IfNode:
		cond := a.analyzeExpression(d.Cond)
		if cond.Kind != types.KindError && !types.Equal(cond, types.Bool) {
			a.errorf(diag.NewConditionNotBoolean(cond.String(), d.Cond.Tok.Span()))
		}
		thenType := a.analyzeBlock(d.Then)
		if d.Else == nil {
			// Without an else there is no value on the false path.
			return types.Void
		}
		var elseType *types.Type
		if d.Else.Kind == ast.Block {
			elseType = a.analyzeBlock(d.Else)
		} else {
			elseType = a.analyzeExpression(d.Else)
		}
		if isError(thenType, elseType) {
			return types.Error
		}
		if !types.Equal(thenType, elseType) {
			a.errorf(diag.NewTypeMismatch(thenType.String(), elseType.String(), d.Else.Tok.Span()))
			return types.Error
		}
		return thenType

	case ast.LoopNode:
		a.loopDepth++
		a.analyzeBlock(d.Body)
		a.loopDepth--
		// A loop's value would come from its breaks; that inference does
		// not happen at this layer, so the expression types as void.
		return types.Void

	case ast.BlockNode:
		return a.analyzeBlock(expr)
	}

	a.errorf(diag.NewInternal(expr.Tok.Span(), "unhandled expression kind %d", expr.Kind))
	return types.Error
}

func isError(ts ...*types.Type) bool {
	for _, t := range ts {
		if t.Kind == types.KindError {
			return true
		}
	}
	return false
}
