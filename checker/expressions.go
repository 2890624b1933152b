package checker

import (
	"fmt"

	"github.com/akrennmair/pseudo/parser"
)

// checkExpr assigns a static type to expr and returns it. It returns nil if
// the expression is invalid; the error has been reported by then, and callers
// skip further checks on nil to avoid follow-up errors.
func (c *Checker) checkExpr(expr parser.Expression) parser.DataType {
	t := c.exprType(expr)
	expr.SetType(t)
	return t
}

func (c *Checker) exprType(expr parser.Expression) parser.DataType {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		return e.LiteralType()
	case *parser.VariableExpr:
		return e.DeclType
	case *parser.GroupingExpr:
		return c.checkExpr(e.Inner)
	case *parser.UnaryExpr:
		return c.checkUnary(e)
	case *parser.BinaryExpr:
		return c.checkBinary(e)
	case *parser.LogicalExpr:
		left := c.checkExpr(e.Left)
		right := c.checkExpr(e.Right)
		if left == nil || right == nil {
			return nil
		}
		if !parser.Boolean.Equals(left) || !parser.Boolean.Equals(right) {
			c.errorf(e.At, "operator %s requires BOOLEAN operands, got %s and %s", e.Op, typeName(left), typeName(right))
			return nil
		}
		return parser.Boolean
	case *parser.IndexExpr:
		return c.checkIndex(e)
	case *parser.FieldExpr:
		return c.checkField(e)
	case *parser.CallExpr:
		t := c.checkCall(e)
		if t == nil && e.Callee != nil {
			c.errorf(e.At, "procedure %s does not return a value", e.Name)
		}
		return t
	}
	panic(fmt.Sprintf("checker: unhandled expression %T", expr))
}

func (c *Checker) checkUnary(e *parser.UnaryExpr) parser.DataType {
	t := c.checkExpr(e.Operand)
	if t == nil {
		return nil
	}
	switch e.Op {
	case parser.TokenMinus:
		if !parser.IsNumericType(t) {
			c.errorf(e.At, "unary - requires a numeric operand, got %s", typeName(t))
			return nil
		}
		return parser.Underlying(t)
	case parser.TokenNot:
		if !parser.Boolean.Equals(t) {
			c.errorf(e.At, "NOT requires a BOOLEAN operand, got %s", typeName(t))
			return nil
		}
		return parser.Boolean
	}
	panic(fmt.Sprintf("checker: unexpected unary operator %s", e.Op))
}

func (c *Checker) checkBinary(e *parser.BinaryExpr) parser.DataType {
	left := c.checkExpr(e.Left)
	right := c.checkExpr(e.Right)
	if left == nil || right == nil {
		return nil
	}

	switch e.Op {
	case parser.TokenPlus, parser.TokenMinus, parser.TokenMultiply, parser.TokenDivide:
		if !parser.IsNumericType(left) || !parser.IsNumericType(right) {
			c.errorf(e.At, "operator %s requires numeric operands, got %s and %s", e.Op, typeName(left), typeName(right))
			return nil
		}
		if parser.IsIntegerType(left) && parser.IsIntegerType(right) {
			return parser.Integer
		}
		return parser.Real
	case parser.TokenDiv, parser.TokenMod:
		if !parser.IsIntegerType(left) || !parser.IsIntegerType(right) {
			c.errorf(e.At, "operator %s requires INTEGER operands, got %s and %s", e.Op, typeName(left), typeName(right))
			return nil
		}
		return parser.Integer
	case parser.TokenAmpersand:
		if !parser.String.Equals(left) || !parser.String.Equals(right) {
			c.errorf(e.At, "operator & requires STRING operands, got %s and %s", typeName(left), typeName(right))
			return nil
		}
		return parser.String
	case parser.TokenEqual, parser.TokenNotEqual:
		if !canCompare(left, right) {
			c.errorf(e.At, "cannot compare %s with %s", typeName(left), typeName(right))
			return nil
		}
		return parser.Boolean
	case parser.TokenLess, parser.TokenLessEqual, parser.TokenGreater, parser.TokenGreaterEqual:
		if !canCompare(left, right) || parser.Boolean.Equals(left) {
			c.errorf(e.At, "operator %s cannot order %s and %s", e.Op, typeName(left), typeName(right))
			return nil
		}
		return parser.Boolean
	}
	panic(fmt.Sprintf("checker: unexpected binary operator %s", e.Op))
}

// canCompare reports whether values of the two types can be compared: both
// numeric, or both of the same scalar type.
func canCompare(left, right parser.DataType) bool {
	if parser.IsNumericType(left) && parser.IsNumericType(right) {
		return true
	}
	return parser.IsScalarType(left) && left.Equals(right)
}

func (c *Checker) checkIndex(e *parser.IndexExpr) parser.DataType {
	base := c.checkExpr(e.Base)
	valid := true
	for _, idx := range e.Indexes {
		if t := c.checkExpr(idx); t != nil && !parser.IsIntegerType(t) {
			c.errorf(idx.Pos(), "array index must be INTEGER, got %s", typeName(t))
			valid = false
		}
	}
	if base == nil {
		return nil
	}

	at, ok := parser.Underlying(base).(*parser.ArrayType)
	if !ok {
		c.errorf(e.At, "cannot index a value of type %s", typeName(base))
		return nil
	}
	if len(e.Indexes) != len(at.Dims) {
		c.errorf(e.At, "array of type %s needs %d index(es), got %d", typeName(base), len(at.Dims), len(e.Indexes))
		return nil
	}
	if !valid {
		return nil
	}
	return at.ElementType
}

func (c *Checker) checkField(e *parser.FieldExpr) parser.DataType {
	base := c.checkExpr(e.Base)
	if base == nil {
		return nil
	}
	rec, ok := parser.Underlying(base).(*parser.RecordType)
	if !ok {
		c.errorf(e.At, "cannot select field %s of a value of type %s", e.Field, typeName(base))
		return nil
	}
	field, idx := rec.FindField(e.Field)
	if field == nil {
		c.errorf(e.At, "type %s has no field %s", rec.Name, e.Field)
		return nil
	}
	e.FieldIndex = idx
	return field.Type
}
