// Package resolver binds every name in a parsed program to its declaration.
// It builds the scope tree (the global scope plus one scope per procedure
// or function body), assigns frame slots, and annotates the AST with the
// scope distance of every reference so the interpreter never searches for
// names at runtime.
package resolver

import (
	"fmt"
	"io"
	"log"

	"github.com/akrennmair/pseudo/diag"
	"github.com/akrennmair/pseudo/parser"
)

type Resolver struct {
	logger *log.Logger
	diags  *diag.List
	scope  *Scope
}

// New creates a resolver that reports to diags.
func New(diags *diag.List) *Resolver {
	if diags == nil {
		diags = diag.New()
	}
	return &Resolver{
		logger: log.New(io.Discard, "resolver ", log.LstdFlags|log.Lshortfile),
		diags:  diags,
	}
}

func (r *Resolver) SetLogOutput(w io.Writer) {
	r.logger.SetOutput(w)
}

// Resolve resolves prog and returns an error summarising all resolution
// errors, if any.
func Resolve(prog *parser.Program) error {
	diags := diag.New()
	New(diags).Resolve(prog)
	return diags.Err()
}

// Resolve annotates prog in place. Errors are reported to the resolver's
// diagnostics list.
func (r *Resolver) Resolve(prog *parser.Program) {
	r.scope = newScope(nil, nil)
	r.declareAhead(prog.Body)
	r.resolveStatements(prog.Body)
	prog.Slots = r.scope.slots
	r.logger.Printf("resolved %s: %d global slots", prog.Name, len(prog.Slots))
	r.scope = nil
}

func (r *Resolver) errorf(pos parser.Position, format string, args ...interface{}) {
	r.diags.Errorf(diag.Resolution, pos.Line, pos.Column, format, args...)
}

// declareAhead hoists the procedures and functions of a scope and records
// which variables, constants and types it will declare.
func (r *Resolver) declareAhead(stmts []parser.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *parser.RoutineDecl:
			kind := SymbolProcedure
			if s.IsFunction() {
				kind = SymbolFunction
			}
			if err := r.scope.add(&Symbol{Name: s.Name, Kind: kind, Routine: s, At: s.At}); err != nil {
				r.errorf(s.At, "%v", err)
			}
		case *parser.DeclareStmt:
			r.scope.declareLater(s.Name, s.At)
		case *parser.ConstantStmt:
			r.scope.declareLater(s.Name, s.At)
		case *parser.TypeStmt:
			r.scope.declareLater(s.Record.Name, s.At)
		case *parser.BlockStmt:
			r.declareAhead(s.Statements)
		case *parser.IfStmt:
			r.declareAhead(s.Then.Statements)
			if s.Else != nil {
				r.declareAhead(s.Else.Statements)
			}
		case *parser.CaseStmt:
			for _, b := range s.Branches {
				r.declareAhead(b.Body.Statements)
			}
			if s.Otherwise != nil {
				r.declareAhead(s.Otherwise.Statements)
			}
		case *parser.WhileStmt:
			r.declareAhead(s.Body.Statements)
		case *parser.RepeatStmt:
			r.declareAhead(s.Body.Statements)
		case *parser.ForStmt:
			r.declareAhead(s.Body.Statements)
		}
	}
}

func (r *Resolver) resolveStatements(stmts []parser.Statement) {
	for _, stmt := range stmts {
		r.resolveStatement(stmt)
	}
}

func (r *Resolver) resolveStatement(stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.DeclareStmt:
		r.resolveType(s.DeclType)
		sym := &Symbol{Name: s.Name, Kind: SymbolVariable, Type: s.DeclType, At: s.At}
		if err := r.scope.add(sym); err != nil {
			r.errorf(s.At, "%v", err)
			return
		}
		r.scope.allocate(sym, nil)
		s.Slot = sym.Slot
	case *parser.ConstantStmt:
		sym := &Symbol{Name: s.Name, Kind: SymbolConstant, Type: s.Value.LiteralType(), At: s.At}
		if err := r.scope.add(sym); err != nil {
			r.errorf(s.At, "%v", err)
			return
		}
		r.scope.allocate(sym, s.Value)
		s.Slot = sym.Slot
	case *parser.TypeStmt:
		for _, f := range s.Record.Fields {
			r.resolveType(f.Type)
		}
		if err := r.scope.add(&Symbol{Name: s.Record.Name, Kind: SymbolType, Type: s.Record, At: s.At}); err != nil {
			r.errorf(s.At, "%v", err)
		}
	case *parser.AssignStmt:
		r.resolveExpr(s.Value)
		r.resolveTarget(s.Target, "assign to")
	case *parser.BlockStmt:
		r.resolveStatements(s.Statements)
	case *parser.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStatements(s.Then.Statements)
		if s.Else != nil {
			r.resolveStatements(s.Else.Statements)
		}
	case *parser.CaseStmt:
		r.resolveExpr(s.Selector)
		for _, b := range s.Branches {
			r.resolveStatements(b.Body.Statements)
		}
		if s.Otherwise != nil {
			r.resolveStatements(s.Otherwise.Statements)
		}
	case *parser.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStatements(s.Body.Statements)
	case *parser.RepeatStmt:
		r.resolveStatements(s.Body.Statements)
		r.resolveExpr(s.Condition)
	case *parser.ForStmt:
		r.resolveExpr(s.From)
		r.resolveExpr(s.To)
		if s.Step != nil {
			r.resolveExpr(s.Step)
		}
		if sym, _, later := r.scope.lookup(s.Counter.Name); sym == nil && !later {
			r.declareCounter(s.Counter)
		}
		r.resolveTarget(s.Counter, "assign to")
		r.resolveStatements(s.Body.Statements)
	case *parser.InputStmt:
		r.resolveTarget(s.Target, "INPUT into")
	case *parser.OutputStmt:
		for _, v := range s.Values {
			r.resolveExpr(v)
		}
	case *parser.RoutineDecl:
		r.resolveRoutine(s)
	case *parser.CallStmt:
		r.resolveCall(s.Call, true)
	case *parser.ReturnStmt:
		if r.scope.Routine == nil {
			r.errorf(s.At, "RETURN outside of a procedure or function")
		}
		if s.Value != nil {
			r.resolveExpr(s.Value)
		}
	case *parser.OpenFileStmt:
		r.resolveExpr(s.File)
	case *parser.ReadFileStmt:
		r.resolveExpr(s.File)
		r.resolveTarget(s.Target, "READFILE into")
	case *parser.WriteFileStmt:
		r.resolveExpr(s.File)
		r.resolveExpr(s.Value)
	case *parser.CloseFileStmt:
		r.resolveExpr(s.File)
	default:
		panic(fmt.Sprintf("resolver: unhandled statement %T", stmt))
	}
}

func (r *Resolver) resolveRoutine(decl *parser.RoutineDecl) {
	r.logger.Printf("resolving %s %s", decl.Kind(), decl.Name)
	for _, p := range decl.Params {
		r.resolveType(p.Type)
	}
	if decl.Returns != nil {
		r.resolveType(decl.Returns)
	}

	outer := r.scope
	r.scope = newScope(outer, decl)
	defer func() { r.scope = outer }()

	for _, p := range decl.Params {
		sym := &Symbol{Name: p.Name, Kind: SymbolParameter, Type: p.Type, At: p.At}
		if err := r.scope.add(sym); err != nil {
			r.errorf(p.At, "%v", err)
			continue
		}
		r.scope.allocate(sym, nil)
		p.Slot = sym.Slot
	}

	r.declareAhead(decl.Body.Statements)
	r.resolveStatements(decl.Body.Statements)
	decl.Slots = r.scope.slots
}

func (r *Resolver) resolveType(dt parser.DataType) {
	switch t := dt.(type) {
	case *parser.NamedType:
		sym, _, later := r.scope.lookup(t.Name)
		switch {
		case sym != nil && sym.Kind == SymbolType:
			t.Resolved = sym.Type
		case sym != nil:
			r.errorf(t.At, "%s is a %s, not a type", t.Name, sym.Kind)
		case later:
			r.errorf(t.At, "type %s used before declaration", t.Name)
		default:
			r.errorf(t.At, "unknown type %s", t.Name)
		}
	case *parser.ArrayType:
		r.resolveType(t.ElementType)
	}
}

func (r *Resolver) resolveExpr(expr parser.Expression) {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
	case *parser.VariableExpr:
		r.resolveVariable(e, false)
	case *parser.UnaryExpr:
		r.resolveExpr(e.Operand)
	case *parser.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *parser.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *parser.GroupingExpr:
		r.resolveExpr(e.Inner)
	case *parser.IndexExpr:
		r.resolveExpr(e.Base)
		for _, idx := range e.Indexes {
			r.resolveExpr(idx)
		}
	case *parser.FieldExpr:
		r.resolveExpr(e.Base)
	case *parser.CallExpr:
		r.resolveCall(e, false)
	default:
		panic(fmt.Sprintf("resolver: unhandled expression %T", expr))
	}
}

// declareCounter declares an undeclared FOR counter as an INTEGER variable of
// the current scope.
func (r *Resolver) declareCounter(v *parser.VariableExpr) {
	sym := &Symbol{Name: v.Name, Kind: SymbolVariable, Type: parser.Integer, At: v.At}
	if err := r.scope.add(sym); err != nil {
		r.errorf(v.At, "%v", err)
		return
	}
	r.scope.allocate(sym, nil)
	r.logger.Printf("implicitly declared loop counter %s in slot %d", v.Name, sym.Slot)
}

func (r *Resolver) resolveVariable(v *parser.VariableExpr, target bool) {
	sym, depth, later := r.scope.lookup(v.Name)
	switch {
	case sym == nil && later:
		r.errorf(v.At, "%s used before declaration", v.Name)
		return
	case sym == nil:
		r.errorf(v.At, "undeclared identifier %s", v.Name)
		return
	case !sym.hasSlot() && target:
		r.errorf(v.At, "cannot assign to %s %s", sym.Kind, v.Name)
		return
	case !sym.hasSlot():
		r.errorf(v.At, "%s %s cannot be used as a value", sym.Kind, v.Name)
		return
	}

	switch sym.Kind {
	case SymbolVariable:
		v.Binding = parser.BindVariable
	case SymbolConstant:
		v.Binding = parser.BindConstant
	case SymbolParameter:
		v.Binding = parser.BindParameter
	}
	v.Depth = depth
	v.Slot = sym.Slot
	v.DeclType = sym.Type
}

// resolveTarget resolves an expression that is written to.
func (r *Resolver) resolveTarget(expr parser.Expression, action string) {
	root := parser.RootVariable(expr)
	if root == nil {
		r.resolveExpr(expr)
		return
	}

	switch e := expr.(type) {
	case *parser.VariableExpr:
		r.resolveVariable(e, true)
	case *parser.IndexExpr:
		r.resolveTarget(e.Base, action)
		for _, idx := range e.Indexes {
			r.resolveExpr(idx)
		}
		return
	case *parser.FieldExpr:
		r.resolveTarget(e.Base, action)
		return
	}

	if root.Binding == parser.BindConstant {
		r.errorf(expr.Pos(), "cannot %s constant %s", action, root.Name)
	}
}

func (r *Resolver) resolveCall(call *parser.CallExpr, statement bool) {
	for _, arg := range call.Args {
		r.resolveExpr(arg)
	}

	sym, depth, later := r.scope.lookup(call.Name)
	if sym == nil {
		if later {
			r.errorf(call.At, "%s used before declaration", call.Name)
			return
		}
		b := parser.FindBuiltin(call.Name)
		if b == nil {
			r.errorf(call.At, "undeclared procedure or function %s", call.Name)
			return
		}
		if statement {
			r.errorf(call.At, "builtin function %s cannot be used with CALL", b.Name)
			return
		}
		if len(call.Args) != len(b.Params) {
			r.errorf(call.At, "%s expects %d argument(s), got %d", b.Name, len(b.Params), len(call.Args))
			return
		}
		call.Builtin = b
		return
	}

	switch {
	case sym.Kind != SymbolProcedure && sym.Kind != SymbolFunction:
		r.errorf(call.At, "%s %s cannot be called", sym.Kind, call.Name)
		return
	case sym.Kind == SymbolProcedure && !statement:
		r.errorf(call.At, "procedure %s used in an expression", call.Name)
		return
	case sym.Kind == SymbolFunction && statement:
		r.errorf(call.At, "function %s cannot be used with CALL", call.Name)
		return
	}

	decl := sym.Routine
	if len(call.Args) != len(decl.Params) {
		r.errorf(call.At, "%s %s expects %d argument(s), got %d", sym.Kind, call.Name, len(decl.Params), len(call.Args))
		return
	}
	for idx, p := range decl.Params {
		if !p.ByRef {
			continue
		}
		arg := call.Args[idx]
		root := parser.RootVariable(arg)
		if root == nil || root.Binding == parser.BindConstant {
			r.errorf(arg.Pos(), "BYREF argument %d of %s must be a variable, array element or record field", idx+1, call.Name)
		}
	}

	call.Callee = decl
	call.Depth = depth
}
