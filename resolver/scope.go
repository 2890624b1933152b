package resolver

import (
	"fmt"

	"github.com/akrennmair/pseudo/parser"
)

// SymbolKind says what a name in a scope denotes.
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolConstant
	SymbolParameter
	SymbolProcedure
	SymbolFunction
	SymbolType
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolConstant:
		return "constant"
	case SymbolParameter:
		return "parameter"
	case SymbolProcedure:
		return "procedure"
	case SymbolFunction:
		return "function"
	case SymbolType:
		return "type"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// Symbol is an entry in a scope's symbol table.
type Symbol struct {
	Name string
	Kind SymbolKind
	// Type is the declared type of a variable, constant or parameter, or the
	// record type a type symbol names.
	Type parser.DataType
	// Slot is the frame slot of a variable, constant or parameter.
	Slot int
	// Routine is the declaration of a procedure or function symbol.
	Routine *parser.RoutineDecl
	At      parser.Position
}

func (s *Symbol) hasSlot() bool {
	return s.Kind == SymbolVariable || s.Kind == SymbolConstant || s.Kind == SymbolParameter
}

// Scope is the global scope or the scope of one procedure or function body.
// Parent is the scope the routine was declared in; the global scope has no
// parent.
type Scope struct {
	Parent *Scope

	// Routine is the routine whose body this scope belongs to, nil for the
	// global scope.
	Routine *parser.RoutineDecl

	symbols []*Symbol
	slots   []*parser.FrameSlot

	// later holds names declared further down in this scope that are not
	// visible yet.
	later map[string]parser.Position
}

func newScope(parent *Scope, routine *parser.RoutineDecl) *Scope {
	return &Scope{
		Parent:  parent,
		Routine: routine,
		later:   map[string]parser.Position{},
	}
}

func (s *Scope) findLocal(name string) *Symbol {
	for _, sym := range s.symbols {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// lookup walks the scope chain outwards. It returns the symbol and the number
// of hops to its scope. If the name is not visible yet but declared further
// down in one of the scopes passed on the way, declaredLater is true.
func (s *Scope) lookup(name string) (sym *Symbol, depth int, declaredLater bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym := scope.findLocal(name); sym != nil {
			return sym, depth, false
		}
		if _, ok := scope.later[name]; ok {
			return nil, depth, true
		}
		depth++
	}
	return nil, -1, false
}

func (s *Scope) declareLater(name string, at parser.Position) {
	if _, ok := s.later[name]; !ok {
		s.later[name] = at
	}
}

func (s *Scope) add(sym *Symbol) error {
	if prev := s.findLocal(sym.Name); prev != nil {
		return fmt.Errorf("duplicate declaration of %s: %s %s already declared at %s", sym.Name, prev.Kind, prev.Name, prev.At)
	}
	delete(s.later, sym.Name)
	s.symbols = append(s.symbols, sym)
	return nil
}

// allocate assigns the next frame slot to sym.
func (s *Scope) allocate(sym *Symbol, constant *parser.LiteralExpr) {
	sym.Slot = len(s.slots)
	s.slots = append(s.slots, &parser.FrameSlot{Name: sym.Name, Type: sym.Type, Constant: constant})
}
