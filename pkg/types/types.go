// Package types implements the closed type algebra of the language.
// There is no widening and no inference; equality is structural.
package types

import "strings"

type Kind int

const (
	KindI8 Kind = iota
	KindI16
	KindI32
	KindI64
	KindI128
	KindIsize
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindUsize
	KindF32
	KindF64
	KindBool
	KindChar
	KindStr
	KindPointer
	KindFunction
	KindStruct
	KindEnum
	KindVoid
	// KindError marks a type that already produced a diagnostic; it is
	// propagated silently so one mistake reports once.
	KindError
)

type Type struct {
	Kind Kind

	// Pointer
	MutPtr     bool
	MutPointee bool
	Pointee    *Type

	// Function
	Params []*Type
	Return *Type

	// Struct / Enum placeholders
	Name string
}

// Shared singletons for the parameterless kinds.
var (
	I8    = &Type{Kind: KindI8}
	I16   = &Type{Kind: KindI16}
	I32   = &Type{Kind: KindI32}
	I64   = &Type{Kind: KindI64}
	I128  = &Type{Kind: KindI128}
	Isize = &Type{Kind: KindIsize}
	U8    = &Type{Kind: KindU8}
	U16   = &Type{Kind: KindU16}
	U32   = &Type{Kind: KindU32}
	U64   = &Type{Kind: KindU64}
	U128  = &Type{Kind: KindU128}
	Usize = &Type{Kind: KindUsize}
	F32   = &Type{Kind: KindF32}
	F64   = &Type{Kind: KindF64}
	Bool  = &Type{Kind: KindBool}
	Char  = &Type{Kind: KindChar}
	Str   = &Type{Kind: KindStr}
	Void  = &Type{Kind: KindVoid}
	Error = &Type{Kind: KindError}
)

var primitives = map[string]*Type{
	"i8": I8, "i16": I16, "i32": I32, "i64": I64, "i128": I128, "isize": Isize,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64, "u128": U128, "usize": Usize,
	"f32": F32, "f64": F64,
	"bool": Bool, "char": Char, "str": Str, "void": Void,
}

// FromName resolves a primitive type spelling.
func FromName(name string) (*Type, bool) {
	t, ok := primitives[name]
	return t, ok
}

func NewPointer(mutPtr, mutPointee bool, pointee *Type) *Type {
	return &Type{Kind: KindPointer, MutPtr: mutPtr, MutPointee: mutPointee, Pointee: pointee}
}

func NewFunction(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFunction, Params: params, Return: ret}
}

// Equal reports structural equality.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPointer:
		return a.MutPtr == b.MutPtr && a.MutPointee == b.MutPointee && Equal(a.Pointee, b.Pointee)
	case KindFunction:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(a.Return, b.Return)
	case KindStruct, KindEnum:
		return a.Name == b.Name
	}
	return true
}

func (t *Type) IsSignedInteger() bool {
	switch t.Kind {
	case KindI8, KindI16, KindI32, KindI64, KindI128, KindIsize:
		return true
	}
	return false
}

func (t *Type) IsFloat() bool {
	return t.Kind == KindF32 || t.Kind == KindF64
}

func (t *Type) IsNumeric() bool {
	switch t.Kind {
	case KindF32, KindF64:
		return true
	case KindI8, KindI16, KindI32, KindI64, KindI128, KindIsize,
		KindU8, KindU16, KindU32, KindU64, KindU128, KindUsize:
		return true
	}
	return false
}

var kindNames = map[Kind]string{
	KindI8: "i8", KindI16: "i16", KindI32: "i32", KindI64: "i64",
	KindI128: "i128", KindIsize: "isize",
	KindU8: "u8", KindU16: "u16", KindU32: "u32", KindU64: "u64",
	KindU128: "u128", KindUsize: "usize",
	KindF32: "f32", KindF64: "f64",
	KindBool: "bool", KindChar: "char", KindStr: "str", KindVoid: "void",
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindPointer:
		var sb strings.Builder
		if t.MutPtr {
			sb.WriteByte('~')
		}
		sb.WriteByte('^')
		if t.MutPointee {
			sb.WriteByte('~')
		}
		sb.WriteString(t.Pointee.String())
		return sb.String()
	case KindFunction:
		var sb strings.Builder
		sb.WriteString("fn(")
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteString(") -> ")
		sb.WriteString(t.Return.String())
		return sb.String()
	case KindStruct:
		return "struct " + t.Name
	case KindEnum:
		return "enum " + t.Name
	case KindError:
		return "<type error>"
	}
	return kindNames[t.Kind]
}
