package scope

import (
	"testing"

	"github.com/tipy-lang/tipc/pkg/diag"
	"github.com/tipy-lang/tipc/pkg/types"
)

func TestDefineAndLookup(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Define(Symbol{Name: "x", Type: types.I64}, diag.Span{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym, ok := st.Lookup("x")
	if !ok {
		t.Fatal("expected to find x")
	}
	if !types.Equal(sym.Type, types.I64) {
		t.Errorf("expected i64, got %s", sym.Type)
	}
	if _, ok := st.Lookup("y"); ok {
		t.Error("expected y to be undefined")
	}
}

func TestSameScopeRedefinition(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Define(Symbol{Name: "x", Type: types.I64}, diag.Span{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := st.Define(Symbol{Name: "x", Type: types.Bool}, diag.Span{})
	if err == nil {
		t.Fatal("expected a redefinition error")
	}
	if err.Kind != diag.SymbolAlreadyDefined {
		t.Errorf("expected SymbolAlreadyDefined, got %v", err)
	}
}

func TestShadowingIsLegal(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Define(Symbol{Name: "x", Type: types.I64}, diag.Span{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st.Enter()
	if err := st.Define(Symbol{Name: "x", Type: types.Bool}, diag.Span{}); err != nil {
		t.Fatalf("shadowing should be legal, got: %v", err)
	}
	// Innermost binding wins while the scope is live.
	sym, _ := st.Lookup("x")
	if !types.Equal(sym.Type, types.Bool) {
		t.Errorf("expected the inner bool binding, got %s", sym.Type)
	}
	st.Leave()
	sym, _ = st.Lookup("x")
	if !types.Equal(sym.Type, types.I64) {
		t.Errorf("expected the outer i64 binding after Leave, got %s", sym.Type)
	}
}

func TestGlobalScopeSurvivesLeave(t *testing.T) {
	st := NewSymbolTable()
	if err := st.Define(Symbol{Name: "f", Type: types.NewFunction(nil, types.Void)}, diag.Span{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st.Leave()
	st.Leave()
	if st.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", st.Depth())
	}
	if _, ok := st.Lookup("f"); !ok {
		t.Error("expected the global binding to survive")
	}
}

func TestDepth(t *testing.T) {
	st := NewSymbolTable()
	if st.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", st.Depth())
	}
	st.Enter()
	st.Enter()
	if st.Depth() != 3 {
		t.Fatalf("expected depth 3, got %d", st.Depth())
	}
	st.Leave()
	if st.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", st.Depth())
	}
}
