package types

import "testing"

func TestFromName(t *testing.T) {
	if typ, ok := FromName("i64"); !ok || typ != I64 {
		t.Errorf("FromName(i64): got %v %v", typ, ok)
	}
	if typ, ok := FromName("void"); !ok || typ != Void {
		t.Errorf("FromName(void): got %v %v", typ, ok)
	}
	if _, ok := FromName("banana"); ok {
		t.Error("FromName(banana): expected a miss")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b *Type
		want bool
	}{
		{I64, I64, true},
		{I64, U64, false},
		{I64, Bool, false},
		{NewPointer(false, false, I64), NewPointer(false, false, I64), true},
		{NewPointer(true, false, I64), NewPointer(false, false, I64), false},
		{NewPointer(false, true, I64), NewPointer(false, false, I64), false},
		{NewPointer(false, false, I64), NewPointer(false, false, F64), false},
		{NewFunction([]*Type{I64, I64}, I64), NewFunction([]*Type{I64, I64}, I64), true},
		{NewFunction([]*Type{I64}, I64), NewFunction([]*Type{I64, I64}, I64), false},
		{NewFunction([]*Type{I64}, I64), NewFunction([]*Type{I64}, Void), false},
		{nil, nil, true},
		{I64, nil, false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%s, %s): got %t, want %t", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		typ  *Type
		want string
	}{
		{I64, "i64"},
		{Bool, "bool"},
		{Void, "void"},
		{Error, "<type error>"},
		{NewPointer(false, false, I64), "^i64"},
		{NewPointer(true, true, I64), "~^~i64"},
		{NewFunction([]*Type{I64, I64}, I64), "fn(i64, i64) -> i64"},
		{NewFunction(nil, Void), "fn() -> void"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestPredicates(t *testing.T) {
	if !I8.IsSignedInteger() || U8.IsSignedInteger() || F32.IsSignedInteger() {
		t.Error("IsSignedInteger misclassifies")
	}
	if !F32.IsFloat() || !F64.IsFloat() || I64.IsFloat() {
		t.Error("IsFloat misclassifies")
	}
	if !U64.IsNumeric() || !F64.IsNumeric() || Bool.IsNumeric() || Str.IsNumeric() {
		t.Error("IsNumeric misclassifies")
	}
}
