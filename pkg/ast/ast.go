// Package ast defines the types used to represent the abstract syntax tree.
package ast

import (
	"fmt"
	"strings"

	"github.com/tipy-lang/tipc/pkg/token"
	"github.com/tipy-lang/tipc/pkg/types"
)

// NodeType defines the kind of a node in the AST.
type NodeType int

const (
	// Expressions
	Ident NodeType = iota
	IntLit
	FloatLit
	BoolLit
	CharLit
	StringLit
	Prefix
	Infix
	Assign
	Call
	If
	Loop
	Block

	// Statements
	VarDecl
	ExprStmt
	Return
	While
	Break
	Continue

	// Declarations
	FuncDecl
	Program
)

// Node is the uniform AST node. Data holds the kind-specific payload;
// Typ is filled in by semantic analysis.
type Node struct {
	Kind NodeType
	Tok  token.Token
	Typ  *types.Type
	Data any
}

type IdentNode struct{ Name string }
type IntNode struct{ Value int64 }
type FloatNode struct{ Value float64 }
type BoolNode struct{ Value bool }
type CharNode struct{ Value rune }
type StringNode struct{ Value string }

type PrefixNode struct {
	Op      token.Type
	Operand *Node
}

type InfixNode struct {
	Op    token.Type
	Left  *Node
	Right *Node
}

type AssignNode struct {
	Target *Node
	Value  *Node
}

type CallNode struct {
	Callee *Node
	Args   []*Node
}

// IfNode is an expression. Else is nil, a Block, or a nested If (elif).
type IfNode struct {
	Cond *Node
	Then *Node
	Else *Node
}

type LoopNode struct{ Body *Node }

type BlockNode struct{ Stmts []*Node }

// TypeRef is a syntactic type reference. Names are resolved during
// semantic analysis so that unknown spellings report there.
type TypeRef struct {
	Name       string
	IsPointer  bool
	MutPtr     bool
	MutPointee bool
	Elem       *TypeRef
	Tok        token.Token
}

func (t *TypeRef) String() string {
	if t == nil {
		return "void"
	}
	if t.IsPointer {
		s := "^"
		if t.MutPtr {
			s = "~^"
		}
		if t.MutPointee {
			s += "~"
		}
		return s + t.Elem.String()
	}
	return t.Name
}

type VarDeclNode struct {
	Name      string
	DeclType  *TypeRef
	IsMutable bool
	Init      *Node // may be nil
}

type ExprStmtNode struct{ Expr *Node }

type ReturnNode struct{ Value *Node } // nil for bare ret

type WhileNode struct {
	Cond *Node
	Body *Node
}

type BreakNode struct{ Value *Node } // nil for bare break

type ContinueNode struct{}

type Param struct {
	Name string
	Type *TypeRef
	Tok  token.Token
}

type FuncDeclNode struct {
	Name       string
	Params     []Param
	ReturnType *TypeRef
	Body       *Node
}

type ProgramNode struct{ Funcs []*Node }

func newNode(kind NodeType, tok token.Token, data any) *Node {
	return &Node{Kind: kind, Tok: tok, Data: data}
}

func NewIdent(tok token.Token, name string) *Node { return newNode(Ident, tok, IdentNode{name}) }
func NewInt(tok token.Token, v int64) *Node       { return newNode(IntLit, tok, IntNode{v}) }
func NewFloat(tok token.Token, v float64) *Node   { return newNode(FloatLit, tok, FloatNode{v}) }
func NewBool(tok token.Token, v bool) *Node       { return newNode(BoolLit, tok, BoolNode{v}) }
func NewChar(tok token.Token, v rune) *Node       { return newNode(CharLit, tok, CharNode{v}) }
func NewString(tok token.Token, v string) *Node   { return newNode(StringLit, tok, StringNode{v}) }

func NewPrefix(tok token.Token, op token.Type, operand *Node) *Node {
	return newNode(Prefix, tok, PrefixNode{op, operand})
}

func NewInfix(tok token.Token, op token.Type, left, right *Node) *Node {
	return newNode(Infix, tok, InfixNode{op, left, right})
}

func NewAssign(tok token.Token, target, value *Node) *Node {
	return newNode(Assign, tok, AssignNode{target, value})
}

func NewCall(tok token.Token, callee *Node, args []*Node) *Node {
	return newNode(Call, tok, CallNode{callee, args})
}

func NewIf(tok token.Token, cond, then, els *Node) *Node {
	return newNode(If, tok, IfNode{cond, then, els})
}

func NewLoop(tok token.Token, body *Node) *Node { return newNode(Loop, tok, LoopNode{body}) }

func NewBlock(tok token.Token, stmts []*Node) *Node { return newNode(Block, tok, BlockNode{stmts}) }

func NewVarDecl(tok token.Token, name string, declType *TypeRef, mutable bool, init *Node) *Node {
	return newNode(VarDecl, tok, VarDeclNode{name, declType, mutable, init})
}

func NewExprStmt(expr *Node) *Node { return newNode(ExprStmt, expr.Tok, ExprStmtNode{expr}) }

func NewReturn(tok token.Token, value *Node) *Node { return newNode(Return, tok, ReturnNode{value}) }

func NewWhile(tok token.Token, cond, body *Node) *Node {
	return newNode(While, tok, WhileNode{cond, body})
}

func NewBreak(tok token.Token, value *Node) *Node { return newNode(Break, tok, BreakNode{value}) }

func NewContinue(tok token.Token) *Node { return newNode(Continue, tok, ContinueNode{}) }

func NewFuncDecl(tok token.Token, name string, params []Param, ret *TypeRef, body *Node) *Node {
	return newNode(FuncDecl, tok, FuncDeclNode{name, params, ret, body})
}

func NewProgram(funcs []*Node) *Node {
	return newNode(Program, token.Token{}, ProgramNode{funcs})
}

// ExprString renders an expression fully parenthesized, e.g.
// "(5 + (2 * 10))". Used by tests and --dump-ast.
func ExprString(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	switch d := n.Data.(type) {
	case IdentNode:
		return d.Name
	case IntNode:
		return fmt.Sprintf("%d", d.Value)
	case FloatNode:
		return fmt.Sprintf("%g", d.Value)
	case BoolNode:
		return fmt.Sprintf("%t", d.Value)
	case CharNode:
		return fmt.Sprintf("'%c'", d.Value)
	case StringNode:
		return fmt.Sprintf("%q", d.Value)
	case PrefixNode:
		return fmt.Sprintf("(%s%s)", d.Op, ExprString(d.Operand))
	case InfixNode:
		return fmt.Sprintf("(%s %s %s)", ExprString(d.Left), d.Op, ExprString(d.Right))
	case AssignNode:
		return fmt.Sprintf("(%s = %s)", ExprString(d.Target), ExprString(d.Value))
	case CallNode:
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = ExprString(a)
		}
		return fmt.Sprintf("%s(%s)", ExprString(d.Callee), strings.Join(args, ", "))
	case IfNode:
		if d.Else != nil {
			return fmt.Sprintf("if %s %s else %s", ExprString(d.Cond), ExprString(d.Then), ExprString(d.Else))
		}
		return fmt.Sprintf("if %s %s", ExprString(d.Cond), ExprString(d.Then))
	case LoopNode:
		return "loop " + ExprString(d.Body)
	case BlockNode:
		parts := make([]string, len(d.Stmts))
		for i, s := range d.Stmts {
			parts[i] = StmtString(s)
		}
		return "{ " + strings.Join(parts, " ") + " }"
	}
	return StmtString(n)
}

// StmtString renders a statement on one line.
func StmtString(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	switch d := n.Data.(type) {
	case ExprStmtNode:
		return ExprString(d.Expr)
	case VarDeclNode:
		mut := ""
		if d.IsMutable {
			mut = "~"
		}
		if d.Init != nil {
			return fmt.Sprintf("%s: %s%s = %s;", d.Name, mut, d.DeclType, ExprString(d.Init))
		}
		return fmt.Sprintf("%s: %s%s;", d.Name, mut, d.DeclType)
	case ReturnNode:
		if d.Value != nil {
			return "ret " + ExprString(d.Value) + ";"
		}
		return "ret;"
	case WhileNode:
		return fmt.Sprintf("while %s %s", ExprString(d.Cond), ExprString(d.Body))
	case BreakNode:
		if d.Value != nil {
			return "break " + ExprString(d.Value) + ";"
		}
		return "break;"
	case ContinueNode:
		return "continue;"
	case FuncDeclNode:
		params := make([]string, len(d.Params))
		for i, p := range d.Params {
			params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
		}
		return fmt.Sprintf("%s(%s) -> %s %s", d.Name, strings.Join(params, ", "), d.ReturnType, ExprString(d.Body))
	case ProgramNode:
		parts := make([]string, len(d.Funcs))
		for i, f := range d.Funcs {
			parts[i] = StmtString(f)
		}
		return strings.Join(parts, "\n")
	}
	return ExprString(n)
}
