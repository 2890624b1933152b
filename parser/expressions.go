package parser

import (
	"fmt"
	"strings"
)

// Expression is implemented by every expression node. Type returns the
// static type assigned by the type checker, or nil before checking.
type Expression interface {
	String() string
	Pos() Position
	Type() DataType
	SetType(dt DataType)
	exprNode()
}

// ExprBase carries the data every expression has: its source position and,
// after type checking, its static type.
type ExprBase struct {
	At     Position
	Static DataType
}

func (e *ExprBase) Pos() Position { return e.At }
func (e *ExprBase) Type() DataType { return e.Static }
func (e *ExprBase) SetType(dt DataType) { e.Static = dt }
func (e *ExprBase) exprNode() {}

// LiteralExpr is a literal value. Value is an int64, float64, string, rune
// or bool; Text is the lexeme it was scanned from.
type LiteralExpr struct {
	ExprBase
	Kind  Kind
	Value interface{}
	Text  string
}

func (e *LiteralExpr) String() string {
	return fmt.Sprintf("literal<%s>", e.Text)
}

// LiteralType returns the type of a literal, independent of type checking.
func (e *LiteralExpr) LiteralType() DataType {
	switch e.Kind {
	case TokenInteger:
		return Integer
	case TokenReal:
		return Real
	case TokenString:
		return String
	case TokenChar:
		return Char
	case TokenBoolean:
		return Boolean
	}
	return nil
}

// Binding says what kind of declaration a name was resolved to.
type Binding int

const (
	Unresolved Binding = iota
	BindVariable
	BindConstant
	BindParameter
)

// VariableExpr references a variable, constant or parameter. The resolver
// fills in Depth (number of enclosing-scope hops to the declaring scope),
// Slot (index in that scope's frame) and DeclType.
type VariableExpr struct {
	ExprBase
	Name     string
	Binding  Binding
	Depth    int
	Slot     int
	DeclType DataType
}

func (e *VariableExpr) String() string {
	return fmt.Sprintf("var<%s@%d.%d>", e.Name, e.Depth, e.Slot)
}

// UnaryExpr is arithmetic negation (Op == TokenMinus) or logical negation
// (Op == TokenNot).
type UnaryExpr struct {
	ExprBase
	Op      Kind
	Operand Expression
}

func (e *UnaryExpr) String() string {
	return fmt.Sprintf("unary<%s %s>", e.Op, e.Operand)
}

// BinaryExpr is an arithmetic, concatenation or comparison operation.
type BinaryExpr struct {
	ExprBase
	Op    Kind
	Left  Expression
	Right Expression
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("binary<%s %s %s>", e.Left, e.Op, e.Right)
}

// LogicalExpr is AND or OR.
type LogicalExpr struct {
	ExprBase
	Op    Kind
	Left  Expression
	Right Expression
}

func (e *LogicalExpr) String() string {
	return fmt.Sprintf("logical<%s %s %s>", e.Left, e.Op, e.Right)
}

type GroupingExpr struct {
	ExprBase
	Inner Expression
}

func (e *GroupingExpr) String() string {
	return fmt.Sprintf("(%s)", e.Inner)
}

// IndexExpr addresses an array element, one index per dimension.
type IndexExpr struct {
	ExprBase
	Base    Expression
	Indexes []Expression
}

func (e *IndexExpr) String() string {
	var parts []string
	for _, idx := range e.Indexes {
		parts = append(parts, idx.String())
	}
	return fmt.Sprintf("index<%s[%s]>", e.Base, strings.Join(parts, ", "))
}

// FieldExpr accesses a record field. FieldIndex is set by the type checker.
type FieldExpr struct {
	ExprBase
	Base       Expression
	Field      string
	FieldIndex int
}

func (e *FieldExpr) String() string {
	return fmt.Sprintf("field<%s.%s>", e.Base, e.Field)
}

// CallExpr calls a function (or, wrapped in a CallStmt, a procedure). The
// resolver sets either Callee and Depth, or Builtin.
type CallExpr struct {
	ExprBase
	Name    string
	Args    []Expression
	Callee  *RoutineDecl
	Depth   int
	Builtin *Builtin
}

func (e *CallExpr) String() string {
	var parts []string
	for _, a := range e.Args {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("call<%s(%s)>", e.Name, strings.Join(parts, ", "))
}

// IsAssignable reports whether expr denotes storage: a variable, an array
// element or a record field.
func IsAssignable(expr Expression) bool {
	switch e := expr.(type) {
	case *VariableExpr:
		return true
	case *IndexExpr:
		return IsAssignable(e.Base)
	case *FieldExpr:
		return IsAssignable(e.Base)
	}
	return false
}

// RootVariable returns the variable at the root of an assignable expression.
func RootVariable(expr Expression) *VariableExpr {
	switch e := expr.(type) {
	case *VariableExpr:
		return e
	case *IndexExpr:
		return RootVariable(e.Base)
	case *FieldExpr:
		return RootVariable(e.Base)
	}
	return nil
}
