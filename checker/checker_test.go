package checker

import (
	"testing"

	"github.com/akrennmair/pseudo/diag"
	"github.com/akrennmair/pseudo/parser"
	"github.com/akrennmair/pseudo/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func check(t *testing.T, code string) (*parser.Program, *diag.List) {
	t.Helper()
	diags := diag.New()
	prog := parser.NewParser("test.pseudo", code, diags).Parse()
	require.False(t, diags.HasErrors(), diags.Format("test.pseudo"))
	resolver.New(diags).Resolve(prog)
	require.False(t, diags.HasErrors(), diags.Format("test.pseudo"))
	New(diags).Check(prog)
	return prog, diags
}

const decls = `DECLARE I : INTEGER
DECLARE R : REAL
DECLARE S : STRING
DECLARE C : CHAR
DECLARE B : BOOLEAN
DECLARE D : DATE
DECLARE A : ARRAY[1:10] OF INTEGER
DECLARE M : ARRAY[1:3, 1:3] OF REAL
TYPE Point
  DECLARE X : INTEGER
  DECLARE Y : INTEGER
ENDTYPE
DECLARE P : Point
`

func TestCheckAccepts(t *testing.T) {
	testData := []struct {
		name string
		code string
	}{
		{"integer assignment", "I <- 5"},
		{"integer widened to real", "R <- I + 1"},
		{"mixed arithmetic", "R <- I * 2.5"},
		{"integer division", "I <- 7 / 2"},
		{"div and mod", "I <- 7 DIV 2 + 7 MOD 2"},
		{"concatenation", "S <- S & \"x\""},
		{"char comparison", "B <- C < 'z'"},
		{"date comparison", "B <- D = D"},
		{"logical", "B <- NOT B AND (I > 1 OR R <= 2.0)"},
		{"array element", "A[I + 1] <- A[1] * 2"},
		{"two-dimensional array", "M[1, 2] <- I"},
		{"record field", "P.X <- P.Y + 1"},
		{"whole array assignment", "DECLARE A2 : ARRAY[1:10] OF INTEGER\nA2 <- A"},
		{"whole record assignment", "DECLARE Q : Point\nQ <- P"},
		{"for loop", "FOR I <- 1 TO 10 STEP 2\n OUTPUT I\nNEXT I"},
		{"case", "CASE OF C\n 'a' : OUTPUT 1\n 'b' TO 'z' : OUTPUT 2\nENDCASE"},
		{"case on real with integer label", "CASE OF R\n 1 : OUTPUT 1\nENDCASE"},
		{"input", "INPUT I\nINPUT S\nINPUT P.X"},
		{"output", "OUTPUT I, R, S, C, B, D"},
		{"function", "FUNCTION Half(N : REAL) RETURNS REAL\n RETURN N / 2\nENDFUNCTION\nR <- Half(I)"},
		{"byref", "PROCEDURE Inc(BYREF N : INTEGER)\n N <- N + 1\nENDPROCEDURE\nCALL Inc(A[2])"},
		{"bare return in procedure", "PROCEDURE P\n RETURN\nENDPROCEDURE"},
		{"builtins", "I <- LENGTH(S) + ASC(C) + INT(R) + RANDOMBETWEEN(1, 6)\nS <- MID(S, 1, 2) & TO_UPPER(S)\nR <- RND()"},
		{"files", "OPENFILE \"f.txt\" FOR READ\nREADFILE \"f.txt\", S\nB <- EOF(\"f.txt\")\nCLOSEFILE \"f.txt\""},
	}

	for _, tt := range testData {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := check(t, decls+tt.code)
			assert.False(t, diags.HasErrors(), diags.Format("test.pseudo"))
		})
	}
}

func TestCheckRejects(t *testing.T) {
	testData := []struct {
		name string
		code string
		msg  string
	}{
		{"string into integer", "I <- \"hi\"", "cannot assign STRING to INTEGER"},
		{"real into integer", "I <- 2.5", "cannot assign REAL to INTEGER"},
		{"integer plus string", "I <- I + S", "operator + requires numeric operands, got INTEGER and STRING"},
		{"concat integer", "S <- S & I", "operator & requires STRING operands"},
		{"div on real", "I <- R DIV 2", "operator DIV requires INTEGER operands"},
		{"and on integer", "B <- I AND B", "operator AND requires BOOLEAN operands"},
		{"not on integer", "B <- NOT I", "NOT requires a BOOLEAN operand"},
		{"negate string", "S <- -S", "unary - requires a numeric operand"},
		{"compare string with integer", "B <- S = I", "cannot compare STRING with INTEGER"},
		{"order booleans", "B <- B < B", "operator < cannot order BOOLEAN and BOOLEAN"},
		{"if condition", "IF I THEN\n OUTPUT 1\nENDIF", "IF condition must be BOOLEAN, got INTEGER"},
		{"while condition", "WHILE S\nENDWHILE", "WHILE condition must be BOOLEAN"},
		{"until condition", "REPEAT\nUNTIL 1", "UNTIL condition must be BOOLEAN"},
		{"real loop counter", "FOR R <- 1 TO 2\nNEXT R", "FOR loop counter R must be INTEGER"},
		{"real loop bound", "FOR I <- 1 TO 2.5\nNEXT I", "FOR end value must be INTEGER"},
		{"index non-array", "I <- I[1]", "cannot index a value of type INTEGER"},
		{"real index", "I <- A[1.5]", "array index must be INTEGER"},
		{"wrong number of indexes", "R <- M[1]", "needs 2 index(es), got 1"},
		{"unknown field", "I <- P.Z", "type Point has no field Z"},
		{"field of non-record", "I <- I.X", "cannot select field X"},
		{"array shape mismatch", "DECLARE A2 : ARRAY[0:9] OF INTEGER\nA2 <- A", "cannot assign ARRAY[1:10] OF INTEGER to ARRAY[0:9] OF INTEGER"},
		{"case label type", "CASE OF I\n \"x\" : OUTPUT 1\nENDCASE", "cannot assign STRING to INTEGER in CASE label"},
		{"input array", "INPUT A", "cannot INPUT a value of type ARRAY[1:10] OF INTEGER"},
		{"output record", "OUTPUT P", "cannot OUTPUT a value of type Point"},
		{"argument type", "PROCEDURE Q(N : INTEGER)\nENDPROCEDURE\nCALL Q(\"x\")", "cannot assign STRING to INTEGER in argument 1 of Q"},
		{"byref needs identical type", "PROCEDURE Q(BYREF N : REAL)\nENDPROCEDURE\nCALL Q(I)", "BYREF argument 1 of Q must be REAL, got INTEGER"},
		{"builtin argument", "I <- LENGTH(I)", "cannot assign INTEGER to STRING in argument 1 of LENGTH"},
		{"return type", "FUNCTION F RETURNS INTEGER\n RETURN \"x\"\nENDFUNCTION", "cannot assign STRING to INTEGER as result of function F"},
		{"bare return in function", "FUNCTION F RETURNS INTEGER\n RETURN\nENDFUNCTION", "RETURN in function F must return a value"},
		{"procedure returns value", "PROCEDURE Q\n RETURN 1\nENDPROCEDURE", "procedure Q cannot return a value"},
		{"function without return", "FUNCTION F RETURNS INTEGER\n OUTPUT 1\nENDFUNCTION", "function F has no RETURN statement"},
		{"file name type", "OPENFILE 1 FOR READ", "file name must be STRING"},
	}

	for _, tt := range testData {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := check(t, decls+tt.code)
			errs := diags.Phase(diag.Type)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Message, tt.msg)
		})
	}
}

func TestCheckAnnotatesTypes(t *testing.T) {
	prog, diags := check(t, decls+"OUTPUT I + R, 7 / 2, P.Y")
	require.False(t, diags.HasErrors(), diags.Format("test.pseudo"))

	out := prog.Body[len(prog.Body)-1].(*parser.OutputStmt)
	assert.Equal(t, "REAL", out.Values[0].Type().Type())
	assert.Equal(t, "INTEGER", out.Values[1].Type().Type())
	assert.Equal(t, "INTEGER", out.Values[2].Type().Type())
	assert.Equal(t, 1, out.Values[2].(*parser.FieldExpr).FieldIndex)
}

func TestCheckReportsAllErrors(t *testing.T) {
	_, diags := check(t, decls+"I <- \"a\"\nS <- 1\nB <- I + S")
	assert.Equal(t, 3, diags.ErrorCount(), diags.Format("test.pseudo"))
}

func TestCheckWarnings(t *testing.T) {
	_, diags := check(t, decls+"FOR I <- 1 TO 3 STEP 0\nNEXT I\nCASE OF I\n 5 TO 1 : OUTPUT 1\nENDCASE")
	assert.False(t, diags.HasErrors())
	assert.Equal(t, 2, diags.Len(), diags.Format("test.pseudo"))
}
