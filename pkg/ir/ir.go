// Package ir defines the typed intermediate representation: a list of
// functions, each a control-flow graph of basic blocks over SSA-style
// temporaries, memory slots, and phi joins. The shapes map directly
// onto QBE's instruction set.
package ir

import (
	"fmt"

	"github.com/tipy-lang/tipc/pkg/types"
)

type Op int

const (
	OpAlloc Op = iota
	OpLoad
	OpStore
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpCEq
	OpCNe
	OpCLt
	OpCLe
	OpCGt
	OpCGe
	OpJmp
	OpJnz
	OpRet
	OpCall
	OpPhi
	OpCopy
)

// Type is the QBE storage class of a value. The extended classes
// (SB/UB/SH/UH) only appear on loads, stores, and signatures; sub-word
// values compute as words.
type Type int

const (
	TypeNone Type = iota
	TypeB
	TypeH
	TypeW
	TypeL
	TypeS
	TypeD
	TypeSB
	TypeUB
	TypeSH
	TypeUH
)

// TypeOf maps a source type to its IR class.
func TypeOf(t *types.Type) Type {
	if t == nil {
		return TypeNone
	}
	switch t.Kind {
	case types.KindVoid:
		return TypeNone
	case types.KindI8:
		return TypeSB
	case types.KindU8:
		return TypeUB
	case types.KindI16:
		return TypeSH
	case types.KindU16:
		return TypeUH
	case types.KindI32, types.KindU32, types.KindBool, types.KindChar:
		return TypeW
	case types.KindF32:
		return TypeS
	case types.KindF64:
		return TypeD
	}
	// 64-bit integers, sizes, pointers, strings, functions.
	return TypeL
}

// BaseType widens an extended class to the class it computes in.
func BaseType(t Type) Type {
	switch t {
	case TypeSB, TypeUB, TypeSH, TypeUH, TypeB, TypeH:
		return TypeW
	}
	return t
}

// SizeOf returns the byte size of a class when stored.
func SizeOf(t Type) int {
	switch t {
	case TypeB, TypeSB, TypeUB:
		return 1
	case TypeH, TypeSH, TypeUH:
		return 2
	case TypeW, TypeS:
		return 4
	}
	return 8
}

func (t Type) IsFloat() bool { return t == TypeS || t == TypeD }

type Value interface {
	isValue()
	String() string
}

type Const struct{ Value int64 }

func (*Const) isValue()         {}
func (c *Const) String() string { return fmt.Sprintf("%d", c.Value) }

type FloatConst struct {
	Value float64
	Typ   Type // TypeS or TypeD
}

func (*FloatConst) isValue()         {}
func (c *FloatConst) String() string { return fmt.Sprintf("%g", c.Value) }

type Global struct{ Name string }

func (*Global) isValue()         {}
func (g *Global) String() string { return "$" + g.Name }

type Temporary struct {
	Name string
	ID   int
}

func (*Temporary) isValue() {}
func (t *Temporary) String() string {
	if t.Name != "" {
		return fmt.Sprintf("%%%s.%d", t.Name, t.ID)
	}
	return fmt.Sprintf("%%t%d", t.ID)
}

type Label struct{ Name string }

func (*Label) isValue()         {}
func (l *Label) String() string { return "@" + l.Name }

// Instruction is one IR operation.
//
//	OpAlloc: Result = slot, Align = size class, Args[0] = byte size
//	OpLoad/OpStore: memory traffic through a slot
//	OpJnz: Args = cond, true label, false label
//	OpPhi: Args = label, value, label, value, ...
//	OpCall: Args[0] = callee, Args[1:] = arguments (classes in ArgTypes)
type Instruction struct {
	Op       Op
	Typ      Type
	Result   *Temporary
	Args     []Value
	ArgTypes []Type
	Align    int
}

func (i *Instruction) IsTerminator() bool {
	switch i.Op {
	case OpJmp, OpJnz, OpRet:
		return true
	}
	return false
}

type BasicBlock struct {
	Label        string
	Instructions []*Instruction
}

// Terminated reports whether the block already ends in a jump or ret.
func (b *BasicBlock) Terminated() bool {
	n := len(b.Instructions)
	return n > 0 && b.Instructions[n-1].IsTerminator()
}

type Func struct {
	Name       string
	Params     []*Temporary
	ParamTypes []Type
	ReturnType Type
	Blocks     []*BasicBlock
	IsExported bool
}

// EntryBlock returns the first block; allocas live there.
func (f *Func) EntryBlock() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

type StringLit struct {
	Label string
	Value string
}

type Program struct {
	Funcs   []*Func
	Strings []StringLit
}
