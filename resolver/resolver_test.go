package resolver

import (
	"testing"

	"github.com/akrennmair/pseudo/diag"
	"github.com/akrennmair/pseudo/parser"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, code string) *parser.Program {
	t.Helper()
	prog, err := parser.Parse("test.pseudo", code)
	require.NoError(t, err)
	return prog
}

func resolve(t *testing.T, code string) (*parser.Program, *diag.List) {
	t.Helper()
	prog := parse(t, code)
	diags := diag.New()
	New(diags).Resolve(prog)
	return prog, diags
}

func TestResolveAccepts(t *testing.T) {
	testData := []struct {
		name string
		code string
	}{
		{"global variable", "DECLARE X : INTEGER\nX <- 5\nOUTPUT X"},
		{"constant", "CONSTANT Max = 10\nOUTPUT Max"},
		{"record type", "TYPE Point\n DECLARE X : INTEGER\nENDTYPE\nDECLARE P : Point\nP.X <- 1"},
		{"array of records", "TYPE Point\n DECLARE X : INTEGER\nENDTYPE\nDECLARE Ps : ARRAY[1:3] OF Point\nPs[1].X <- 1"},
		{"call before declaration", "CALL Greet\nPROCEDURE Greet\n OUTPUT \"hi\"\nENDPROCEDURE"},
		{"mutual recursion", "FUNCTION IsEven(N : INTEGER) RETURNS BOOLEAN\n IF N = 0 THEN\n  RETURN TRUE\n ENDIF\n RETURN IsOdd(N - 1)\nENDFUNCTION\nFUNCTION IsOdd(N : INTEGER) RETURNS BOOLEAN\n IF N = 0 THEN\n  RETURN FALSE\n ENDIF\n RETURN IsEven(N - 1)\nENDFUNCTION"},
		{"parameter shadows global", "DECLARE N : STRING\nPROCEDURE P(N : INTEGER)\n OUTPUT N\nENDPROCEDURE"},
		{"builtin", "OUTPUT LENGTH(\"abc\")"},
		{"declaration inside loop", "FOR I <- 1 TO 2\n DECLARE T : INTEGER\n T <- I\nNEXT I"},
		{"implicit loop counter", "FOR K <- 1 TO 2\n OUTPUT K\nNEXT K\nOUTPUT K"},
		{"implicit loop counter in routine", "PROCEDURE P\n FOR K <- 1 TO 2\n  OUTPUT K\n NEXT K\nENDPROCEDURE"},
		{"byref with element", "DECLARE A : ARRAY[1:2] OF INTEGER\nPROCEDURE Inc(BYREF X : INTEGER)\n X <- X + 1\nENDPROCEDURE\nCALL Inc(A[1])"},
	}

	for _, tt := range testData {
		t.Run(tt.name, func(t *testing.T) {
			prog, diags := resolve(t, "DECLARE I : INTEGER\n"+tt.code)
			assert.False(t, diags.HasErrors(), "%s\n%s", diags.Format("test"), spew.Sdump(prog))
		})
	}
}

func TestResolveRejects(t *testing.T) {
	testData := []struct {
		name string
		code string
		msg  string
	}{
		{"undeclared", "OUTPUT Y", "undeclared identifier Y"},
		{"duplicate", "DECLARE X : INTEGER\nDECLARE X : REAL", "duplicate declaration of X"},
		{"routine and variable clash", "DECLARE P : INTEGER\nPROCEDURE P\nENDPROCEDURE", "duplicate declaration of P"},
		{"use before declaration", "X <- 1\nDECLARE X : INTEGER", "X used before declaration"},
		{"use before declaration in routine", "PROCEDURE P\n OUTPUT Y\n DECLARE Y : INTEGER\nENDPROCEDURE", "Y used before declaration"},
		{"assign to constant", "CONSTANT C = 1\nC <- 2", "cannot assign to constant C"},
		{"assign to function", "FUNCTION F RETURNS INTEGER\n F <- 1\n RETURN 1\nENDFUNCTION", "cannot assign to function F"},
		{"call a variable", "DECLARE X : INTEGER\nCALL X", "variable X cannot be called"},
		{"procedure in expression", "PROCEDURE P\nENDPROCEDURE\nOUTPUT P()", "procedure P used in an expression"},
		{"function with call", "FUNCTION F RETURNS INTEGER\n RETURN 1\nENDFUNCTION\nCALL F", "function F cannot be used with CALL"},
		{"arity", "PROCEDURE P(A : INTEGER)\nENDPROCEDURE\nCALL P(1, 2)", "procedure P expects 1 argument(s), got 2"},
		{"builtin arity", "OUTPUT LENGTH()", "LENGTH expects 1 argument(s), got 0"},
		{"unknown type", "DECLARE X : Point", "unknown type Point"},
		{"return outside routine", "RETURN", "RETURN outside of a procedure or function"},
		{"byref literal", "PROCEDURE P(BYREF A : INTEGER)\nENDPROCEDURE\nCALL P(1)", "BYREF argument 1 of P must be a variable"},
		{"undeclared procedure", "CALL Missing", "undeclared procedure or function Missing"},
		{"routine as value", "PROCEDURE P\nENDPROCEDURE\nOUTPUT P", "procedure P cannot be used as a value"},
		{"local variable not visible outside", "PROCEDURE P\n DECLARE L : INTEGER\nENDPROCEDURE\nOUTPUT L", "undeclared identifier L"},
	}

	for _, tt := range testData {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := resolve(t, tt.code)
			errs := diags.Phase(diag.Resolution)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Message, tt.msg)
		})
	}
}

func TestResolveReportsAllErrors(t *testing.T) {
	_, diags := resolve(t, "OUTPUT A\nOUTPUT B\nCALL C")
	errs := diags.Phase(diag.Resolution)
	require.Len(t, errs, 3)
	assert.Equal(t, 1, errs[0].Line)
	assert.Equal(t, 8, errs[0].Column)
	assert.Equal(t, 3, errs[2].Line)
}

func TestResolveScopeDistance(t *testing.T) {
	prog, diags := resolve(t, `DECLARE G : INTEGER
PROCEDURE Outer(P : INTEGER)
  DECLARE L : INTEGER
  PROCEDURE Inner
    OUTPUT G, P, L
  ENDPROCEDURE
  CALL Inner
ENDPROCEDURE
CALL Outer(1)`)
	require.False(t, diags.HasErrors(), diags.Format("test"))

	require.Len(t, prog.Slots, 1)
	assert.Equal(t, "G", prog.Slots[0].Name)

	outer := prog.Body[1].(*parser.RoutineDecl)
	require.Len(t, outer.Slots, 2)
	assert.Equal(t, "P", outer.Slots[0].Name)
	assert.Equal(t, "L", outer.Slots[1].Name)

	inner := outer.Body.Statements[1].(*parser.RoutineDecl)
	out := inner.Body.Statements[0].(*parser.OutputStmt)

	g := out.Values[0].(*parser.VariableExpr)
	assert.Equal(t, 2, g.Depth)
	assert.Equal(t, 0, g.Slot)
	assert.Equal(t, parser.BindVariable, g.Binding)

	p := out.Values[1].(*parser.VariableExpr)
	assert.Equal(t, 1, p.Depth)
	assert.Equal(t, 0, p.Slot)
	assert.Equal(t, parser.BindParameter, p.Binding)

	l := out.Values[2].(*parser.VariableExpr)
	assert.Equal(t, 1, l.Depth)
	assert.Equal(t, 1, l.Slot)

	callInner := outer.Body.Statements[2].(*parser.CallStmt)
	assert.Same(t, inner, callInner.Call.Callee)
	assert.Equal(t, 0, callInner.Call.Depth)

	callOuter := prog.Body[2].(*parser.CallStmt)
	assert.Same(t, outer, callOuter.Call.Callee)
	assert.Equal(t, 0, callOuter.Call.Depth)
}

func TestResolveNamedTypes(t *testing.T) {
	prog, diags := resolve(t, "TYPE Point\n DECLARE X : INTEGER\nENDTYPE\nDECLARE P : Point")
	require.False(t, diags.HasErrors(), diags.Format("test"))

	decl := prog.Body[1].(*parser.DeclareStmt)
	named, ok := decl.DeclType.(*parser.NamedType)
	require.True(t, ok)
	rec, ok := named.Resolved.(*parser.RecordType)
	require.True(t, ok)
	assert.Equal(t, "Point", rec.Name)
}
