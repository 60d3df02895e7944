// Package codegen lowers the analyzed AST into the IR and hands it to a
// backend. Every "cannot happen" condition becomes an explicit Backend
// diagnostic; this package never panics on malformed input.
package codegen

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/tipy-lang/tipc/pkg/ast"
	"github.com/tipy-lang/tipc/pkg/config"
	"github.com/tipy-lang/tipc/pkg/diag"
	"github.com/tipy-lang/tipc/pkg/ir"
	"github.com/tipy-lang/tipc/pkg/scope"
	"github.com/tipy-lang/tipc/pkg/token"
	"github.com/tipy-lang/tipc/pkg/types"
)

// symbol is one storage binding in the codegen scope chain.
type symbol struct {
	Name   string
	Slot   *ir.Temporary
	Typ    *types.Type
	IRType ir.Type
	Next   *symbol
}

type scopeFrame struct {
	head   *symbol
	parent *scopeFrame
}

type breakKind int

const (
	breakUnknown breakKind = iota
	breakBare
	breakValue
)

// loopContext records where continue and break jump inside the active
// loop, and the result slot when the loop can yield a value. The kind
// pins down the first break's shape; the two shapes cannot mix.
type loopContext struct {
	continueLabel string
	breakLabel    string
	resultSlot    *ir.Temporary
	kind          breakKind
}

type Context struct {
	cfg    *config.Config
	prog   *ir.Program
	fn     *ir.Func
	block  *ir.BasicBlock
	scopes *scopeFrame
	loops  []*loopContext
	sigs   map[string]*types.Type

	currentName string
	currentRet  *types.Type

	tempID  int
	labelID int
	strings map[string]string
}

func NewContext(cfg *config.Config) *Context {
	return &Context{
		cfg:     cfg,
		prog:    &ir.Program{},
		sigs:    make(map[string]*types.Type),
		strings: make(map[string]string),
	}
}

// Generate lowers a whole program. It declares every function signature
// before emitting any body so call sites never depend on source order.
func (c *Context) Generate(program *ast.Node, symtab *scope.SymbolTable) (*ir.Program, *diag.Error) {
	prog, ok := program.Data.(ast.ProgramNode)
	if !ok {
		return nil, diag.NewInternal(program.Tok.Span(), "code generator invoked on a non-program node")
	}

	for _, fn := range prog.Funcs {
		if err := c.declareFunction(fn, symtab); err != nil {
			return nil, err
		}
	}
	for _, fn := range prog.Funcs {
		if err := c.genFunction(fn); err != nil {
			return nil, err
		}
	}
	return c.prog, nil
}

func (c *Context) declareFunction(fn *ast.Node, symtab *scope.SymbolTable) *diag.Error {
	d, ok := fn.Data.(ast.FuncDeclNode)
	if !ok {
		return diag.NewInternal(fn.Tok.Span(), "top-level node is not a function declaration")
	}
	sym, found := symtab.Lookup(d.Name)
	if !found {
		return diag.NewInternal(fn.Tok.Span(), "function '%s' missing from the symbol table", d.Name)
	}
	if sym.Type.Kind != types.KindFunction {
		return diag.NewInternal(fn.Tok.Span(), "symbol '%s' is not a function", d.Name)
	}
	c.sigs[d.Name] = sym.Type
	return nil
}

func (c *Context) genFunction(fn *ast.Node) *diag.Error {
	d := fn.Data.(ast.FuncDeclNode)
	sig := c.sigs[d.Name]

	f := &ir.Func{
		Name:       d.Name,
		ReturnType: ir.TypeOf(sig.Return),
		IsExported: true,
	}
	c.fn = f
	c.block = nil
	c.currentName = d.Name
	c.currentRet = sig.Return
	defer func() { c.fn, c.currentName, c.currentRet = nil, "", nil }()

	c.startBlock("start")
	c.enterScope()
	defer c.exitScope()

	for i, p := range d.Params {
		pt := sig.Params[i]
		irType := ir.TypeOf(pt)
		arg := c.newTemp()
		f.Params = append(f.Params, arg)
		f.ParamTypes = append(f.ParamTypes, irType)
		slot := c.entryAlloca(irType)
		c.addInstr(&ir.Instruction{Op: ir.OpStore, Typ: irType, Args: []ir.Value{arg, slot}})
		c.addSymbol(p.Name, slot, pt, irType)
	}

	bodyVal, err := c.genBlock(d.Body)
	if err != nil {
		return err
	}

	if !c.block.Terminated() {
		switch {
		case sig.Return.Kind == types.KindVoid:
			c.addInstr(&ir.Instruction{Op: ir.OpRet})
		case bodyVal != nil:
			// The body is an expression; its value is the return value.
			c.addInstr(&ir.Instruction{Op: ir.OpRet, Typ: f.ReturnType, Args: []ir.Value{bodyVal}})
		case d.Name == "main" && c.cfg.IsFeatureEnabled(config.FeatMainReturnZero):
			c.addInstr(&ir.Instruction{Op: ir.OpRet, Typ: f.ReturnType, Args: []ir.Value{&ir.Const{Value: 0}}})
		default:
			return diag.NewInternal(fn.Tok.Span(), "function '%s' must return a value on all code paths", d.Name)
		}
	}

	c.prog.Funcs = append(c.prog.Funcs, f)
	return nil
}

// --- scope and block plumbing ---

func (c *Context) enterScope() { c.scopes = &scopeFrame{parent: c.scopes} }

func (c *Context) exitScope() {
	if c.scopes != nil {
		c.scopes = c.scopes.parent
	}
}

func (c *Context) addSymbol(name string, slot *ir.Temporary, typ *types.Type, irType ir.Type) {
	c.scopes.head = &symbol{Name: name, Slot: slot, Typ: typ, IRType: irType, Next: c.scopes.head}
}

func (c *Context) findSymbol(name string) *symbol {
	for frame := c.scopes; frame != nil; frame = frame.parent {
		for s := frame.head; s != nil; s = s.Next {
			if s.Name == name {
				return s
			}
		}
	}
	return nil
}

func (c *Context) newTemp() *ir.Temporary {
	t := &ir.Temporary{ID: c.tempID}
	c.tempID++
	return t
}

func (c *Context) newLabel(prefix string) string {
	l := fmt.Sprintf("%s.%d", prefix, c.labelID)
	c.labelID++
	return l
}

func (c *Context) startBlock(label string) *ir.BasicBlock {
	b := &ir.BasicBlock{Label: label}
	c.fn.Blocks = append(c.fn.Blocks, b)
	c.block = b
	return b
}

func (c *Context) addInstr(instr *ir.Instruction) {
	c.block.Instructions = append(c.block.Instructions, instr)
}

// entryAlloca reserves a stack slot in the function's entry region, so
// every local lives before any control flow splits.
func (c *Context) entryAlloca(irType ir.Type) *ir.Temporary {
	slot := c.newTemp()
	align := 4
	if ir.SizeOf(irType) == 8 {
		align = 8
	}
	instr := &ir.Instruction{
		Op:     ir.OpAlloc,
		Typ:    ir.TypeL,
		Result: slot,
		Args:   []ir.Value{&ir.Const{Value: int64(ir.SizeOf(irType))}},
		Align:  align,
	}
	entry := c.fn.EntryBlock()
	i := 0
	for i < len(entry.Instructions) && entry.Instructions[i].Op == ir.OpAlloc {
		i++
	}
	entry.Instructions = append(entry.Instructions, nil)
	copy(entry.Instructions[i+1:], entry.Instructions[i:])
	entry.Instructions[i] = instr
	return slot
}

// --- statements ---

// genBlock emits a block's statements in a fresh scope and returns the
// block's value: the last statement's value when it is a bare
// expression, nil otherwise. Emission stops after a terminator.
func (c *Context) genBlock(block *ast.Node) (ir.Value, *diag.Error) {
	d, ok := block.Data.(ast.BlockNode)
	if !ok {
		return nil, diag.NewInternal(block.Tok.Span(), "expected a block node")
	}
	c.enterScope()
	defer c.exitScope()

	var lastVal ir.Value
	for i, stmt := range d.Stmts {
		if c.block.Terminated() {
			break
		}
		val, err := c.genStatement(stmt)
		if err != nil {
			return nil, err
		}
		if i == len(d.Stmts)-1 && stmt.Kind == ast.ExprStmt {
			lastVal = val
		}
	}
	return lastVal, nil
}

func (c *Context) genStatement(stmt *ast.Node) (ir.Value, *diag.Error) {
	switch d := stmt.Data.(type) {
	case ast.VarDeclNode:
		sym, irType, err := c.declareLocal(stmt, d)
		if err != nil {
			return nil, err
		}
		if d.Init != nil {
			val, err := c.genValueExpr(d.Init)
			if err != nil {
				return nil, err
			}
			c.addInstr(&ir.Instruction{Op: ir.OpStore, Typ: irType, Args: []ir.Value{val, sym.Slot}})
		}
		return nil, nil

	case ast.ExprStmtNode:
		return c.genExpr(d.Expr)

	case ast.ReturnNode:
		if d.Value == nil {
			c.addInstr(&ir.Instruction{Op: ir.OpRet})
			return nil, nil
		}
		val, err := c.genValueExpr(d.Value)
		if err != nil {
			return nil, err
		}
		c.addInstr(&ir.Instruction{Op: ir.OpRet, Typ: c.fn.ReturnType, Args: []ir.Value{val}})
		return nil, nil

	case ast.WhileNode:
		return nil, c.genWhile(d)

	case ast.BreakNode:
		return nil, c.genBreak(stmt, d)

	case ast.ContinueNode:
		if len(c.loops) == 0 {
			return nil, diag.NewInternal(stmt.Tok.Span(), "'continue' outside of a loop reached code generation")
		}
		ctx := c.loops[len(c.loops)-1]
		c.addInstr(&ir.Instruction{Op: ir.OpJmp, Args: []ir.Value{&ir.Label{Name: ctx.continueLabel}}})
		return nil, nil
	}

	return nil, diag.NewInternal(stmt.Tok.Span(), "unhandled statement kind %d", stmt.Kind)
}

func (c *Context) declareLocal(stmt *ast.Node, d ast.VarDeclNode) (*symbol, ir.Type, *diag.Error) {
	typ := c.resolveDeclType(d.DeclType)
	if typ == nil {
		return nil, ir.TypeNone, diag.NewInternal(stmt.Tok.Span(), "unresolved type for '%s' reached code generation", d.Name)
	}
	irType := ir.TypeOf(typ)
	slot := c.entryAlloca(irType)
	c.addSymbol(d.Name, slot, typ, irType)
	return c.findSymbol(d.Name), irType, nil
}

// resolveDeclType mirrors the analyzer's resolution; by this stage every
// name is known to be valid.
func (c *Context) resolveDeclType(ref *ast.TypeRef) *types.Type {
	if ref == nil {
		return types.Void
	}
	if ref.IsPointer {
		pointee := c.resolveDeclType(ref.Elem)
		if pointee == nil {
			return nil
		}
		return types.NewPointer(ref.MutPtr, ref.MutPointee, pointee)
	}
	t, ok := types.FromName(ref.Name)
	if !ok {
		return nil
	}
	return t
}

func (c *Context) genWhile(d ast.WhileNode) *diag.Error {
	condLabel := c.newLabel("while.cond")
	bodyLabel := c.newLabel("while.body")
	afterLabel := c.newLabel("while.after")

	c.addInstr(&ir.Instruction{Op: ir.OpJmp, Args: []ir.Value{&ir.Label{Name: condLabel}}})
	c.startBlock(condLabel)
	cond, err := c.genValueExpr(d.Cond)
	if err != nil {
		return err
	}
	c.addInstr(&ir.Instruction{Op: ir.OpJnz, Args: []ir.Value{
		cond, &ir.Label{Name: bodyLabel}, &ir.Label{Name: afterLabel},
	}})

	c.startBlock(bodyLabel)
	c.pushLoop(&loopContext{continueLabel: condLabel, breakLabel: afterLabel})
	_, err = c.genBlock(d.Body)
	c.popLoop()
	if err != nil {
		return err
	}
	if !c.block.Terminated() {
		c.addInstr(&ir.Instruction{Op: ir.OpJmp, Args: []ir.Value{&ir.Label{Name: condLabel}}})
	}
	c.startBlock(afterLabel)
	return nil
}

func (c *Context) pushLoop(ctx *loopContext) { c.loops = append(c.loops, ctx) }
func (c *Context) popLoop()                  { c.loops = c.loops[:len(c.loops)-1] }

func (c *Context) genBreak(stmt *ast.Node, d ast.BreakNode) *diag.Error {
	if len(c.loops) == 0 {
		return diag.NewInternal(stmt.Tok.Span(), "'break' outside of a loop reached code generation")
	}
	ctx := c.loops[len(c.loops)-1]

	if d.Value != nil {
		if ctx.resultSlot == nil {
			return diag.NewInternal(stmt.Tok.Span(), "'break' with a value is not allowed in this loop")
		}
		if ctx.kind == breakBare {
			return diag.NewInternal(stmt.Tok.Span(), "cannot mix 'break' with and without a value in the same loop")
		}
		// The result slot is a fixed 64-bit cell; a narrower or float
		// class would store and reload as the wrong QBE type.
		if ir.BaseType(ir.TypeOf(d.Value.Typ)) != ir.TypeL {
			return diag.NewInternal(stmt.Tok.Span(), "'break' value of type %s does not fit the 64-bit loop slot", d.Value.Typ)
		}
		ctx.kind = breakValue
		val, err := c.genValueExpr(d.Value)
		if err != nil {
			return err
		}
		c.addInstr(&ir.Instruction{Op: ir.OpStore, Typ: ir.TypeL, Args: []ir.Value{val, ctx.resultSlot}})
	} else {
		if ctx.kind == breakValue {
			return diag.NewInternal(stmt.Tok.Span(), "cannot mix 'break' with and without a value in the same loop")
		}
		if ctx.resultSlot != nil {
			ctx.kind = breakBare
		}
	}
	c.addInstr(&ir.Instruction{Op: ir.OpJmp, Args: []ir.Value{&ir.Label{Name: ctx.breakLabel}}})
	return nil
}

// --- expressions ---

// genValueExpr is genExpr for positions that need a value.
func (c *Context) genValueExpr(expr *ast.Node) (ir.Value, *diag.Error) {
	val, err := c.genExpr(expr)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, diag.NewInternal(expr.Tok.Span(), "expression produces no value")
	}
	return val, nil
}

func (c *Context) genExpr(expr *ast.Node) (ir.Value, *diag.Error) {
	switch d := expr.Data.(type) {
	case ast.IdentNode:
		sym := c.findSymbol(d.Name)
		if sym == nil {
			// Function references resolve straight to globals.
			if _, ok := c.sigs[d.Name]; ok {
				return &ir.Global{Name: d.Name}, nil
			}
			return nil, diag.NewInternal(expr.Tok.Span(), "symbol '%s' missing from the codegen scope", d.Name)
		}
		result := c.newTemp()
		c.addInstr(&ir.Instruction{Op: ir.OpLoad, Typ: sym.IRType, Result: result, Args: []ir.Value{sym.Slot}})
		return result, nil

	case ast.IntNode:
		return &ir.Const{Value: d.Value}, nil
	case ast.FloatNode:
		return &ir.FloatConst{Value: d.Value, Typ: ir.TypeD}, nil
	case ast.BoolNode:
		if d.Value {
			return &ir.Const{Value: 1}, nil
		}
		return &ir.Const{Value: 0}, nil
	case ast.CharNode:
		return &ir.Const{Value: int64(d.Value)}, nil
	case ast.StringNode:
		return c.internString(d.Value), nil

	case ast.PrefixNode:
		return c.genPrefix(expr, d)
	case ast.InfixNode:
		return c.genInfix(expr, d)
	case ast.AssignNode:
		return c.genAssign(expr, d)
	case ast.CallNode:
		return c.genCall(expr, d)
	case ast.IfNode:
		return c.genIf(expr, d)
	case ast.LoopNode:
		return c.genLoop(d)
	case ast.BlockNode:
		return c.genBlock(expr)
	}

	return nil, diag.NewInternal(expr.Tok.Span(), "unhandled expression kind %d", expr.Kind)
}

// internString returns the global for a string literal, creating the
// data symbol on first sight. The label is the content hash, so equal
// literals share storage.
func (c *Context) internString(s string) *ir.Global {
	if label, ok := c.strings[s]; ok {
		return &ir.Global{Name: label}
	}
	label := fmt.Sprintf("str.%016x", xxhash.Sum64String(s))
	c.strings[s] = label
	c.prog.Strings = append(c.prog.Strings, ir.StringLit{Label: label, Value: s})
	return &ir.Global{Name: label}
}

func (c *Context) classOf(expr *ast.Node) ir.Type {
	return ir.BaseType(ir.TypeOf(expr.Typ))
}

func (c *Context) genPrefix(expr *ast.Node, d ast.PrefixNode) (ir.Value, *diag.Error) {
	operand, err := c.genValueExpr(d.Operand)
	if err != nil {
		return nil, err
	}
	result := c.newTemp()
	switch d.Op {
	case token.Minus:
		c.addInstr(&ir.Instruction{Op: ir.OpNeg, Typ: c.classOf(d.Operand), Result: result, Args: []ir.Value{operand}})
	case token.Bang:
		c.addInstr(&ir.Instruction{
			Op: ir.OpCEq, Typ: ir.TypeW, Result: result,
			Args:     []ir.Value{operand, &ir.Const{Value: 0}},
			ArgTypes: []ir.Type{ir.TypeW},
		})
	default:
		return nil, diag.NewInternal(expr.Tok.Span(), "unhandled prefix operator '%s'", d.Op)
	}
	return result, nil
}

var infixOps = map[token.Type]ir.Op{
	token.Plus:         ir.OpAdd,
	token.Minus:        ir.OpSub,
	token.Star:         ir.OpMul,
	token.Slash:        ir.OpDiv,
	token.Equal:        ir.OpCEq,
	token.NotEqual:     ir.OpCNe,
	token.LessThan:     ir.OpCLt,
	token.LessEqual:    ir.OpCLe,
	token.GreaterThan:  ir.OpCGt,
	token.GreaterEqual: ir.OpCGe,
}

func (c *Context) genInfix(expr *ast.Node, d ast.InfixNode) (ir.Value, *diag.Error) {
	left, err := c.genValueExpr(d.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.genValueExpr(d.Right)
	if err != nil {
		return nil, err
	}
	op, ok := infixOps[d.Op]
	if !ok {
		return nil, diag.NewInternal(expr.Tok.Span(), "unhandled infix operator '%s'", d.Op)
	}
	result := c.newTemp()
	operandClass := c.classOf(d.Left)
	instr := &ir.Instruction{Op: op, Result: result, Args: []ir.Value{left, right}}
	if op >= ir.OpCEq && op <= ir.OpCGe {
		// Comparisons produce a word regardless of operand class.
		instr.Typ = ir.TypeW
		instr.ArgTypes = []ir.Type{operandClass}
	} else {
		instr.Typ = operandClass
	}
	c.addInstr(instr)
	return result, nil
}

func (c *Context) genAssign(expr *ast.Node, d ast.AssignNode) (ir.Value, *diag.Error) {
	val, err := c.genValueExpr(d.Value)
	if err != nil {
		return nil, err
	}
	ident, ok := d.Target.Data.(ast.IdentNode)
	if !ok {
		return nil, diag.NewInternal(d.Target.Tok.Span(), "non-identifier assignment target reached code generation")
	}
	sym := c.findSymbol(ident.Name)
	if sym == nil {
		return nil, diag.NewInternal(d.Target.Tok.Span(), "symbol '%s' missing from the codegen scope", ident.Name)
	}
	c.addInstr(&ir.Instruction{Op: ir.OpStore, Typ: sym.IRType, Args: []ir.Value{val, sym.Slot}})
	return val, nil
}

func (c *Context) genCall(expr *ast.Node, d ast.CallNode) (ir.Value, *diag.Error) {
	ident, ok := d.Callee.Data.(ast.IdentNode)
	if !ok {
		return nil, diag.NewInternal(d.Callee.Tok.Span(), "indirect calls are not supported")
	}
	sig, found := c.sigs[ident.Name]
	if !found {
		return nil, diag.NewInternal(d.Callee.Tok.Span(), "call to unknown function '%s'", ident.Name)
	}

	args := make([]ir.Value, 0, len(d.Args)+1)
	argTypes := make([]ir.Type, 0, len(d.Args))
	args = append(args, &ir.Global{Name: ident.Name})
	for i, argNode := range d.Args {
		val, err := c.genValueExpr(argNode)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
		argTypes = append(argTypes, ir.TypeOf(sig.Params[i]))
	}

	instr := &ir.Instruction{Op: ir.OpCall, Args: args, ArgTypes: argTypes}
	if sig.Return.Kind != types.KindVoid {
		instr.Result = c.newTemp()
		instr.Typ = ir.BaseType(ir.TypeOf(sig.Return))
	}
	c.addInstr(instr)
	if instr.Result == nil {
		return nil, nil
	}
	return instr.Result, nil
}

// genIf lowers an if-expression to then/else/merge blocks. When the
// expression carries a value both arms feed a phi at the merge point.
func (c *Context) genIf(expr *ast.Node, d ast.IfNode) (ir.Value, *diag.Error) {
	cond, err := c.genValueExpr(d.Cond)
	if err != nil {
		return nil, err
	}

	thenLabel := c.newLabel("if.then")
	mergeLabel := c.newLabel("if.merge")
	elseLabel := mergeLabel
	if d.Else != nil {
		elseLabel = c.newLabel("if.else")
	}
	c.addInstr(&ir.Instruction{Op: ir.OpJnz, Args: []ir.Value{
		cond, &ir.Label{Name: thenLabel}, &ir.Label{Name: elseLabel},
	}})

	hasValue := expr.Typ != nil && expr.Typ.Kind != types.KindVoid && expr.Typ.Kind != types.KindError

	c.startBlock(thenLabel)
	thenVal, err := c.genBlock(d.Then)
	if err != nil {
		return nil, err
	}
	thenEnd := c.block
	thenFalls := !c.block.Terminated()
	if thenFalls {
		c.addInstr(&ir.Instruction{Op: ir.OpJmp, Args: []ir.Value{&ir.Label{Name: mergeLabel}}})
	}

	var elseVal ir.Value
	var elseEnd *ir.BasicBlock
	elseFalls := true
	if d.Else != nil {
		c.startBlock(elseLabel)
		if d.Else.Kind == ast.Block {
			elseVal, err = c.genBlock(d.Else)
		} else {
			elseVal, err = c.genExpr(d.Else)
		}
		if err != nil {
			return nil, err
		}
		elseEnd = c.block
		elseFalls = !c.block.Terminated()
		if elseFalls {
			c.addInstr(&ir.Instruction{Op: ir.OpJmp, Args: []ir.Value{&ir.Label{Name: mergeLabel}}})
		}
	}

	if !thenFalls && !elseFalls && d.Else != nil {
		// Both arms already left; there is no merge point.
		return nil, nil
	}

	c.startBlock(mergeLabel)
	if !hasValue {
		return nil, nil
	}

	if d.Else == nil {
		return nil, diag.NewInternal(expr.Tok.Span(), "'if' expression used as a value must have an 'else' branch")
	}

	// An arm that returned or broke never reaches the merge point; only
	// the surviving arms feed the result.
	cls := ir.BaseType(ir.TypeOf(expr.Typ))
	switch {
	case thenFalls && elseFalls:
		if thenVal == nil || elseVal == nil {
			return nil, diag.NewInternal(expr.Tok.Span(), "'if' expression arm produced no value")
		}
		result := c.newTemp()
		c.addInstr(&ir.Instruction{
			Op: ir.OpPhi, Typ: cls, Result: result,
			Args: []ir.Value{
				&ir.Label{Name: thenEnd.Label}, thenVal,
				&ir.Label{Name: elseEnd.Label}, elseVal,
			},
		})
		return result, nil
	case thenFalls:
		if thenVal == nil {
			return nil, diag.NewInternal(expr.Tok.Span(), "'if' expression arm produced no value")
		}
		result := c.newTemp()
		c.addInstr(&ir.Instruction{Op: ir.OpCopy, Typ: cls, Result: result, Args: []ir.Value{thenVal}})
		return result, nil
	default:
		if elseVal == nil {
			return nil, diag.NewInternal(expr.Tok.Span(), "'if' expression arm produced no value")
		}
		result := c.newTemp()
		c.addInstr(&ir.Instruction{Op: ir.OpCopy, Typ: cls, Result: result, Args: []ir.Value{elseVal}})
		return result, nil
	}
}

// genLoop lowers `loop { ... }`. The loop's value travels through a
// 64-bit slot allocated in the entry region: each valued break stores
// into it, and the after block loads it back out.
func (c *Context) genLoop(d ast.LoopNode) (ir.Value, *diag.Error) {
	slot := c.entryAlloca(ir.TypeL)
	bodyLabel := c.newLabel("loop.body")
	afterLabel := c.newLabel("loop.after")

	c.addInstr(&ir.Instruction{Op: ir.OpJmp, Args: []ir.Value{&ir.Label{Name: bodyLabel}}})
	c.startBlock(bodyLabel)

	ctx := &loopContext{continueLabel: bodyLabel, breakLabel: afterLabel, resultSlot: slot}
	c.pushLoop(ctx)
	_, err := c.genBlock(d.Body)
	c.popLoop()
	if err != nil {
		return nil, err
	}
	if !c.block.Terminated() {
		c.addInstr(&ir.Instruction{Op: ir.OpJmp, Args: []ir.Value{&ir.Label{Name: bodyLabel}}})
	}

	c.startBlock(afterLabel)
	if ctx.kind != breakValue {
		return nil, nil
	}
	result := c.newTemp()
	c.addInstr(&ir.Instruction{Op: ir.OpLoad, Typ: ir.TypeL, Result: result, Args: []ir.Value{slot}})
	return result, nil
}
