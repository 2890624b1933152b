package interp

import (
	"fmt"
	"time"

	"github.com/akrennmair/pseudo/parser"
)

func (in *Interpreter) eval(expr parser.Expression) (Value, error) {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		return e.Value, nil
	case *parser.VariableExpr:
		return in.env.Get(in.env.Lookup(in.frame, e.Depth), e.Slot), nil
	case *parser.GroupingExpr:
		return in.eval(e.Inner)
	case *parser.UnaryExpr:
		v, err := in.eval(e.Operand)
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case int64:
			return -x, nil
		case float64:
			return -x, nil
		case bool:
			return !x, nil
		}
		return nil, fmt.Errorf("interp: invalid operand %v for unary %s", v, e.Op)
	case *parser.LogicalExpr:
		left, err := in.evalBool(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Op == parser.TokenAnd && !left || e.Op == parser.TokenOr && left {
			return left, nil
		}
		return in.evalBool(e.Right)
	case *parser.BinaryExpr:
		left, err := in.eval(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.eval(e.Right)
		if err != nil {
			return nil, err
		}
		return binary(e.Op, left, right)
	case *parser.IndexExpr, *parser.FieldExpr:
		ref, err := in.locate(e)
		if err != nil {
			return nil, err
		}
		return ref.Load(), nil
	case *parser.CallExpr:
		return in.call(e)
	}
	panic(fmt.Sprintf("interp: unhandled expression %T", expr))
}

func (in *Interpreter) evalBool(expr parser.Expression) (bool, error) {
	v, err := in.eval(expr)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (in *Interpreter) evalInt(expr parser.Expression) (int64, error) {
	v, err := in.eval(expr)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (in *Interpreter) evalString(expr parser.Expression) (string, error) {
	v, err := in.eval(expr)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// locate returns a reference to the storage an assignable expression
// denotes.
func (in *Interpreter) locate(expr parser.Expression) (Ref, error) {
	switch e := expr.(type) {
	case *parser.VariableExpr:
		return in.env.SlotRef(in.env.Lookup(in.frame, e.Depth), e.Slot), nil
	case *parser.IndexExpr:
		base, err := in.eval(e.Base)
		if err != nil {
			return nil, err
		}
		arr := base.(*Array)
		indexes := make([]int64, len(e.Indexes))
		for idx, ie := range e.Indexes {
			if indexes[idx], err = in.evalInt(ie); err != nil {
				return nil, err
			}
		}
		offset, ok := arr.Offset(indexes)
		if !ok {
			return nil, runtimeErrorf(IndexOutOfBounds, "index %s out of bounds for %s", formatIndexes(indexes), arr.Type.Type())
		}
		return &elementRef{array: arr, idx: offset}, nil
	case *parser.FieldExpr:
		base, err := in.eval(e.Base)
		if err != nil {
			return nil, err
		}
		return &fieldRef{record: base.(*Record), idx: e.FieldIndex}, nil
	case *parser.GroupingExpr:
		return in.locate(e.Inner)
	}
	// Other expressions only occur as BYREF arguments if the resolver let
	// them through, which it does not.
	panic(fmt.Sprintf("interp: cannot take the location of %T", expr))
}

func formatIndexes(indexes []int64) string {
	s := "["
	for idx, i := range indexes {
		if idx > 0 {
			s += ", "
		}
		s += fmt.Sprint(i)
	}
	return s + "]"
}

func binary(op parser.Kind, left, right Value) (Value, error) {
	switch op {
	case parser.TokenAmpersand:
		return left.(string) + right.(string), nil
	case parser.TokenEqual, parser.TokenNotEqual, parser.TokenLess, parser.TokenLessEqual, parser.TokenGreater, parser.TokenGreaterEqual:
		c, ok := compare(left, right)
		if !ok {
			return nil, fmt.Errorf("interp: cannot compare %v and %v", left, right)
		}
		return compareResult(op, c), nil
	}

	li, lok := left.(int64)
	ri, rok := right.(int64)
	if lok && rok {
		return integerArithmetic(op, li, ri)
	}
	return realArithmetic(op, toFloat(left), toFloat(right))
}

func integerArithmetic(op parser.Kind, l, r int64) (Value, error) {
	switch op {
	case parser.TokenPlus:
		return l + r, nil
	case parser.TokenMinus:
		return l - r, nil
	case parser.TokenMultiply:
		return l * r, nil
	case parser.TokenDivide, parser.TokenDiv:
		if r == 0 {
			return nil, runtimeErrorf(DivisionByZero, "division by zero")
		}
		return l / r, nil
	case parser.TokenMod:
		if r == 0 {
			return nil, runtimeErrorf(DivisionByZero, "MOD by zero")
		}
		return l % r, nil
	}
	return nil, fmt.Errorf("interp: invalid integer operator %s", op)
}

func realArithmetic(op parser.Kind, l, r float64) (Value, error) {
	switch op {
	case parser.TokenPlus:
		return l + r, nil
	case parser.TokenMinus:
		return l - r, nil
	case parser.TokenMultiply:
		return l * r, nil
	case parser.TokenDivide:
		if r == 0 {
			return nil, runtimeErrorf(DivisionByZero, "division by zero")
		}
		return l / r, nil
	}
	return nil, fmt.Errorf("interp: invalid real operator %s", op)
}

func toFloat(v Value) float64 {
	if i, ok := v.(int64); ok {
		return float64(i)
	}
	return v.(float64)
}

// compare orders two scalar values of compatible types. It returns -1, 0 or
// +1, and false if the values cannot be compared.
func compare(left, right Value) (int, bool) {
	switch l := left.(type) {
	case int64:
		if r, ok := right.(int64); ok {
			return order(l < r, l > r), true
		}
		if r, ok := right.(float64); ok {
			return order(float64(l) < r, float64(l) > r), true
		}
	case float64:
		if r, ok := right.(float64); ok {
			return order(l < r, l > r), true
		}
		if r, ok := right.(int64); ok {
			return order(l < float64(r), l > float64(r)), true
		}
	case string:
		if r, ok := right.(string); ok {
			return order(l < r, l > r), true
		}
	case rune:
		if r, ok := right.(rune); ok {
			return order(l < r, l > r), true
		}
	case bool:
		if r, ok := right.(bool); ok {
			return order(!l && r, l && !r), true
		}
	case time.Time:
		if r, ok := right.(time.Time); ok {
			return order(l.Before(r), l.After(r)), true
		}
	}
	return 0, false
}

func order(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func compareResult(op parser.Kind, c int) bool {
	switch op {
	case parser.TokenEqual:
		return c == 0
	case parser.TokenNotEqual:
		return c != 0
	case parser.TokenLess:
		return c < 0
	case parser.TokenLessEqual:
		return c <= 0
	case parser.TokenGreater:
		return c > 0
	}
	return c >= 0
}
