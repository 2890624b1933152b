// Package checker assigns a static type to every expression of a resolved
// program and validates every statement against the declared types.
package checker

import (
	"fmt"
	"io"
	"log"

	"github.com/akrennmair/pseudo/diag"
	"github.com/akrennmair/pseudo/parser"
)

type Checker struct {
	logger  *log.Logger
	diags   *diag.List
	routine *parser.RoutineDecl
}

func New(diags *diag.List) *Checker {
	if diags == nil {
		diags = diag.New()
	}
	return &Checker{
		logger: log.New(io.Discard, "checker ", log.LstdFlags|log.Lshortfile),
		diags:  diags,
	}
}

func (c *Checker) SetLogOutput(w io.Writer) {
	c.logger.SetOutput(w)
}

// Check type checks a resolved program and returns an error summarising all
// type errors, if any.
func Check(prog *parser.Program) error {
	diags := diag.New()
	New(diags).Check(prog)
	return diags.Err()
}

// Check type checks prog in place. It always walks the whole program so that
// every type error is reported.
func (c *Checker) Check(prog *parser.Program) {
	c.routine = nil
	c.checkStatements(prog.Body)
	c.logger.Printf("checked %s", prog.Name)
}

func (c *Checker) errorf(pos parser.Position, format string, args ...interface{}) {
	c.diags.Errorf(diag.Type, pos.Line, pos.Column, format, args...)
}

func (c *Checker) warningf(pos parser.Position, format string, args ...interface{}) {
	c.diags.Warningf(diag.Type, pos.Line, pos.Column, format, args...)
}

func typeName(dt parser.DataType) string {
	if dt == nil {
		return "<invalid>"
	}
	return dt.Type()
}

func (c *Checker) checkStatements(stmts []parser.Statement) {
	for _, stmt := range stmts {
		c.checkStatement(stmt)
	}
}

func (c *Checker) checkStatement(stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.DeclareStmt, *parser.ConstantStmt, *parser.TypeStmt:
	case *parser.AssignStmt:
		target := c.checkExpr(s.Target)
		value := c.checkExpr(s.Value)
		c.checkAssignable(s.Value.Pos(), target, value, "")
	case *parser.BlockStmt:
		c.checkStatements(s.Statements)
	case *parser.IfStmt:
		c.checkCondition("IF", s.Condition)
		c.checkStatements(s.Then.Statements)
		if s.Else != nil {
			c.checkStatements(s.Else.Statements)
		}
	case *parser.CaseStmt:
		c.checkCase(s)
	case *parser.WhileStmt:
		c.checkCondition("WHILE", s.Condition)
		c.checkStatements(s.Body.Statements)
	case *parser.RepeatStmt:
		c.checkStatements(s.Body.Statements)
		c.checkCondition("UNTIL", s.Condition)
	case *parser.ForStmt:
		c.checkFor(s)
	case *parser.InputStmt:
		if t := c.checkExpr(s.Target); t != nil && !parser.IsScalarType(t) {
			c.errorf(s.Target.Pos(), "cannot INPUT a value of type %s", typeName(t))
		}
	case *parser.OutputStmt:
		for _, v := range s.Values {
			if t := c.checkExpr(v); t != nil && !parser.IsScalarType(t) {
				c.errorf(v.Pos(), "cannot OUTPUT a value of type %s", typeName(t))
			}
		}
	case *parser.RoutineDecl:
		c.checkRoutine(s)
	case *parser.CallStmt:
		c.checkCall(s.Call)
	case *parser.ReturnStmt:
		c.checkReturn(s)
	case *parser.OpenFileStmt:
		c.checkFileName(s.File)
	case *parser.ReadFileStmt:
		c.checkFileName(s.File)
		if t := c.checkExpr(s.Target); t != nil && !parser.IsScalarType(t) {
			c.errorf(s.Target.Pos(), "cannot READFILE into a value of type %s", typeName(t))
		}
	case *parser.WriteFileStmt:
		c.checkFileName(s.File)
		if t := c.checkExpr(s.Value); t != nil && !parser.IsScalarType(t) {
			c.errorf(s.Value.Pos(), "cannot WRITEFILE a value of type %s", typeName(t))
		}
	case *parser.CloseFileStmt:
		c.checkFileName(s.File)
	default:
		panic(fmt.Sprintf("checker: unhandled statement %T", stmt))
	}
}

// checkAssignable reports an error unless a value of type src may be stored
// in a location of type dst. Invalid types have already been reported.
func (c *Checker) checkAssignable(pos parser.Position, dst, src parser.DataType, context string) {
	if dst == nil || src == nil {
		return
	}
	if !parser.AssignmentCompatible(dst, src) {
		c.errorf(pos, "cannot assign %s to %s%s", typeName(src), typeName(dst), context)
	}
}

func (c *Checker) checkCondition(construct string, cond parser.Expression) {
	if t := c.checkExpr(cond); t != nil && !parser.Boolean.Equals(t) {
		c.errorf(cond.Pos(), "%s condition must be BOOLEAN, got %s", construct, typeName(t))
	}
}

func (c *Checker) checkFileName(expr parser.Expression) {
	if t := c.checkExpr(expr); t != nil && !parser.String.Equals(t) {
		c.errorf(expr.Pos(), "file name must be STRING, got %s", typeName(t))
	}
}

func (c *Checker) checkCase(s *parser.CaseStmt) {
	sel := c.checkExpr(s.Selector)
	if sel != nil && !parser.IsScalarType(sel) {
		c.errorf(s.Selector.Pos(), "CASE selector must be a scalar value, got %s", typeName(sel))
		sel = nil
	}

	for _, b := range s.Branches {
		for _, l := range b.Labels {
			low := c.checkExpr(l.Low)
			c.checkAssignable(l.Low.At, sel, low, " in CASE label")
			if l.High == nil {
				continue
			}
			high := c.checkExpr(l.High)
			c.checkAssignable(l.High.At, sel, high, " in CASE label")
			if emptyRange(l.Low, l.High) {
				c.warningf(l.Low.At, "CASE range %s TO %s is empty", l.Low.Text, l.High.Text)
			}
		}
		c.checkStatements(b.Body.Statements)
	}
	if s.Otherwise != nil {
		c.checkStatements(s.Otherwise.Statements)
	}
}

func emptyRange(low, high *parser.LiteralExpr) bool {
	switch lv := low.Value.(type) {
	case int64:
		if hv, ok := high.Value.(int64); ok {
			return lv > hv
		}
	case float64:
		if hv, ok := high.Value.(float64); ok {
			return lv > hv
		}
	case rune:
		if hv, ok := high.Value.(rune); ok {
			return lv > hv
		}
	case string:
		if hv, ok := high.Value.(string); ok {
			return lv > hv
		}
	}
	return false
}

func (c *Checker) checkFor(s *parser.ForStmt) {
	if t := c.checkExpr(s.Counter); t != nil && !parser.IsIntegerType(t) {
		c.errorf(s.Counter.At, "FOR loop counter %s must be INTEGER, got %s", s.Counter.Name, typeName(t))
	}
	parts := []struct {
		name string
		expr parser.Expression
	}{{"start", s.From}, {"end", s.To}, {"STEP", s.Step}}
	for _, p := range parts {
		if p.expr == nil {
			continue
		}
		if t := c.checkExpr(p.expr); t != nil && !parser.IsIntegerType(t) {
			c.errorf(p.expr.Pos(), "FOR %s value must be INTEGER, got %s", p.name, typeName(t))
		}
	}
	if lit, ok := s.Step.(*parser.LiteralExpr); ok && lit.Value == int64(0) {
		c.warningf(lit.At, "FOR loop with STEP 0 never executes")
	}
	c.checkStatements(s.Body.Statements)
}

func (c *Checker) checkRoutine(decl *parser.RoutineDecl) {
	c.logger.Printf("checking %s %s", decl.Kind(), decl.Name)
	outer := c.routine
	c.routine = decl
	defer func() { c.routine = outer }()

	c.checkStatements(decl.Body.Statements)

	if decl.IsFunction() && !containsReturn(decl.Body.Statements) {
		c.errorf(decl.At, "function %s has no RETURN statement", decl.Name)
	}
}

// containsReturn reports whether stmts contain a RETURN that belongs to the
// routine they are the body of.
func containsReturn(stmts []parser.Statement) bool {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *parser.ReturnStmt:
			return true
		case *parser.BlockStmt:
			if containsReturn(s.Statements) {
				return true
			}
		case *parser.IfStmt:
			if containsReturn(s.Then.Statements) || (s.Else != nil && containsReturn(s.Else.Statements)) {
				return true
			}
		case *parser.CaseStmt:
			for _, b := range s.Branches {
				if containsReturn(b.Body.Statements) {
					return true
				}
			}
			if s.Otherwise != nil && containsReturn(s.Otherwise.Statements) {
				return true
			}
		case *parser.WhileStmt:
			if containsReturn(s.Body.Statements) {
				return true
			}
		case *parser.RepeatStmt:
			if containsReturn(s.Body.Statements) {
				return true
			}
		case *parser.ForStmt:
			if containsReturn(s.Body.Statements) {
				return true
			}
		}
	}
	return false
}

func (c *Checker) checkReturn(s *parser.ReturnStmt) {
	var value parser.DataType
	if s.Value != nil {
		value = c.checkExpr(s.Value)
	}
	if c.routine == nil {
		return
	}
	switch {
	case c.routine.IsFunction() && s.Value == nil:
		c.errorf(s.At, "RETURN in function %s must return a value of type %s", c.routine.Name, typeName(c.routine.Returns))
	case c.routine.IsFunction():
		c.checkAssignable(s.Value.Pos(), c.routine.Returns, value, " as result of function "+c.routine.Name)
	case s.Value != nil:
		c.errorf(s.Value.Pos(), "procedure %s cannot return a value", c.routine.Name)
	}
}

// checkCall checks the arguments of a call and returns its result type, nil
// for procedures.
func (c *Checker) checkCall(call *parser.CallExpr) parser.DataType {
	args := make([]parser.DataType, len(call.Args))
	for idx, arg := range call.Args {
		args[idx] = c.checkExpr(arg)
	}

	switch {
	case call.Builtin != nil:
		for idx, pt := range call.Builtin.Params {
			c.checkAssignable(call.Args[idx].Pos(), pt, args[idx], fmt.Sprintf(" in argument %d of %s", idx+1, call.Builtin.Name))
		}
		return call.Builtin.Returns
	case call.Callee != nil:
		for idx, p := range call.Callee.Params {
			if p.ByRef {
				if args[idx] != nil && !p.Type.Equals(args[idx]) {
					c.errorf(call.Args[idx].Pos(), "BYREF argument %d of %s must be %s, got %s", idx+1, call.Name, typeName(p.Type), typeName(args[idx]))
				}
				continue
			}
			c.checkAssignable(call.Args[idx].Pos(), p.Type, args[idx], fmt.Sprintf(" in argument %d of %s", idx+1, call.Name))
		}
		return call.Callee.Returns
	}
	return nil
}
