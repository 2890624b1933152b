package pseudofmt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/akrennmair/pseudo/parser"
)

func templateName(stmt parser.Statement) string {
	switch stmt.(type) {
	case *parser.DeclareStmt:
		return "declare"
	case *parser.ConstantStmt:
		return "constant"
	case *parser.TypeStmt:
		return "type"
	case *parser.AssignStmt:
		return "assign"
	case *parser.BlockStmt:
		return "block"
	case *parser.IfStmt:
		return "if"
	case *parser.CaseStmt:
		return "case"
	case *parser.WhileStmt:
		return "while"
	case *parser.RepeatStmt:
		return "repeat"
	case *parser.ForStmt:
		return "for"
	case *parser.InputStmt:
		return "input"
	case *parser.OutputStmt:
		return "output"
	case *parser.RoutineDecl:
		return "routine"
	case *parser.CallStmt:
		return "call"
	case *parser.ReturnStmt:
		return "return"
	case *parser.OpenFileStmt:
		return "openfile"
	case *parser.ReadFileStmt:
		return "readfile"
	case *parser.WriteFileStmt:
		return "writefile"
	case *parser.CloseFileStmt:
		return "closefile"
	}
	return ""
}

func formatStatement(stmt parser.Statement) (string, error) {
	name := templateName(stmt)
	if name == "" {
		return "", fmt.Errorf("unhandled statement %T", stmt)
	}
	var buf bytes.Buffer
	if err := formatTemplate.ExecuteTemplate(&buf, name, stmt); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatBody renders the statements of a block one indentation level deeper.
func formatBody(block *parser.BlockStmt) (string, error) {
	var buf strings.Builder
	for _, stmt := range block.Statements {
		s, err := formatStatement(stmt)
		if err != nil {
			return "", err
		}
		buf.WriteString(s)
	}
	return indent(buf.String()), nil
}

func indent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.SplitAfter(s, "\n")
	var buf strings.Builder
	for _, line := range lines {
		if line != "" && line != "\n" {
			buf.WriteString("    ")
		}
		buf.WriteString(line)
	}
	return buf.String()
}

func typeName(dt parser.DataType) string {
	return dt.Type()
}

func formalParams(params []*parser.Parameter) string {
	if len(params) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("(")
	byRef := false
	for idx, p := range params {
		if idx > 0 {
			buf.WriteString(", ")
		}
		if p.ByRef != byRef {
			if p.ByRef {
				buf.WriteString("BYREF ")
			} else {
				buf.WriteString("BYVAL ")
			}
			byRef = p.ByRef
		}
		fmt.Fprintf(&buf, "%s : %s", p.Name, typeName(p.Type))
	}
	buf.WriteString(")")
	return buf.String()
}

func caseLabels(labels []*parser.CaseLabel) string {
	parts := make([]string, len(labels))
	for idx, l := range labels {
		parts[idx] = l.Low.Text
		if l.High != nil {
			parts[idx] += " TO " + l.High.Text
		}
	}
	return strings.Join(parts, ", ")
}

func toExprList(exprs []parser.Expression) string {
	parts := make([]string, len(exprs))
	for idx, e := range exprs {
		parts[idx] = toExpr(e)
	}
	return strings.Join(parts, ", ")
}

func toExpr(expr parser.Expression) string {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		return e.Text
	case *parser.VariableExpr:
		return e.Name
	case *parser.UnaryExpr:
		if e.Op == parser.TokenNot {
			return "NOT " + toExpr(e.Operand)
		}
		return "-" + toExpr(e.Operand)
	case *parser.BinaryExpr:
		return toExpr(e.Left) + " " + e.Op.String() + " " + toExpr(e.Right)
	case *parser.LogicalExpr:
		return toExpr(e.Left) + " " + e.Op.String() + " " + toExpr(e.Right)
	case *parser.GroupingExpr:
		return "(" + toExpr(e.Inner) + ")"
	case *parser.IndexExpr:
		return toExpr(e.Base) + "[" + toExprList(e.Indexes) + "]"
	case *parser.FieldExpr:
		return toExpr(e.Base) + "." + e.Field
	case *parser.CallExpr:
		return e.Name + "(" + toExprList(e.Args) + ")"
	}
	return fmt.Sprintf("bug: unhandled expression %T", expr)
}
