package ir

import (
	"testing"

	"github.com/tipy-lang/tipc/pkg/types"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		src  *types.Type
		want Type
	}{
		{types.I8, TypeSB},
		{types.U8, TypeUB},
		{types.I16, TypeSH},
		{types.U16, TypeUH},
		{types.I32, TypeW},
		{types.Bool, TypeW},
		{types.Char, TypeW},
		{types.I64, TypeL},
		{types.Usize, TypeL},
		{types.F32, TypeS},
		{types.F64, TypeD},
		{types.Str, TypeL},
		{types.NewPointer(false, false, types.I64), TypeL},
		{types.Void, TypeNone},
		{nil, TypeNone},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.src); got != tt.want {
			t.Errorf("TypeOf(%s): got %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestBaseType(t *testing.T) {
	for _, sub := range []Type{TypeB, TypeH, TypeSB, TypeUB, TypeSH, TypeUH} {
		if got := BaseType(sub); got != TypeW {
			t.Errorf("BaseType(%d): got %d, want TypeW", sub, got)
		}
	}
	for _, full := range []Type{TypeW, TypeL, TypeS, TypeD} {
		if got := BaseType(full); got != full {
			t.Errorf("BaseType(%d): got %d, want itself", full, got)
		}
	}
}

func TestSizeOf(t *testing.T) {
	tests := []struct {
		typ  Type
		want int
	}{
		{TypeSB, 1}, {TypeUH, 2}, {TypeW, 4}, {TypeS, 4}, {TypeL, 8}, {TypeD, 8},
	}
	for _, tt := range tests {
		if got := SizeOf(tt.typ); got != tt.want {
			t.Errorf("SizeOf(%d): got %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestTerminators(t *testing.T) {
	term := []*Instruction{
		{Op: OpRet},
		{Op: OpJmp},
		{Op: OpJnz},
	}
	for _, instr := range term {
		if !instr.IsTerminator() {
			t.Errorf("op %d should terminate a block", instr.Op)
		}
	}
	if (&Instruction{Op: OpAdd}).IsTerminator() {
		t.Error("add must not terminate a block")
	}

	b := &BasicBlock{}
	if b.Terminated() {
		t.Error("an empty block is not terminated")
	}
	b.Instructions = append(b.Instructions, &Instruction{Op: OpRet})
	if !b.Terminated() {
		t.Error("a block ending in ret is terminated")
	}
}

func TestValueStrings(t *testing.T) {
	tests := []struct {
		val  Value
		want string
	}{
		{&Const{Value: 42}, "42"},
		{&Const{Value: -1}, "-1"},
		{&Global{Name: "main"}, "$main"},
		{&Temporary{ID: 3}, "%t3"},
		{&Label{Name: "loop.body.0"}, "@loop.body.0"},
	}
	for _, tt := range tests {
		if got := tt.val.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
