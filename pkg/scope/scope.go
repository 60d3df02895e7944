// Package scope implements the lexical symbol table shared by the
// semantic analyzer.
package scope

import (
	"github.com/tipy-lang/tipc/pkg/diag"
	"github.com/tipy-lang/tipc/pkg/types"
)

type Symbol struct {
	Name      string
	Type      *types.Type
	IsMutable bool
}

// SymbolTable is a stack of scopes, innermost last. It is constructed
// with a global scope that Leave never removes.
type SymbolTable struct {
	scopes []map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: []map[string]Symbol{{}}}
}

func (st *SymbolTable) Enter() {
	st.scopes = append(st.scopes, map[string]Symbol{})
}

func (st *SymbolTable) Leave() {
	if len(st.scopes) > 1 {
		st.scopes = st.scopes[:len(st.scopes)-1]
	}
}

// Define binds a symbol in the innermost scope. Shadowing an outer scope
// is legal; redefining within the same scope is an error.
func (st *SymbolTable) Define(sym Symbol, span diag.Span) *diag.Error {
	current := st.scopes[len(st.scopes)-1]
	if _, exists := current[sym.Name]; exists {
		return diag.NewSymbolAlreadyDefined(sym.Name, span)
	}
	current[sym.Name] = sym
	return nil
}

// Lookup resolves a name from the innermost scope outward.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i][name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Depth reports the number of live scopes, global included.
func (st *SymbolTable) Depth() int { return len(st.scopes) }
