package parser

import (
	"fmt"
	"testing"

	"github.com/akrennmair/pseudo/diag"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	testData := []struct {
		name string
		code string
	}{
		{"empty", ``},
		{"declaration", `DECLARE X : INTEGER`},
		{"declaration and assignment", "DECLARE X : INTEGER\nX <- 5\nOUTPUT X"},
		{"pascal-style assignment", "DECLARE X : INTEGER\nX := 5"},
		{"constant", `CONSTANT Pi = 3.14159`},
		{"negative constant", `CONSTANT Low <- -40`},
		{"array declaration", `DECLARE Scores : ARRAY[1:30] OF INTEGER`},
		{"two-dimensional array", "DECLARE Board : ARRAY[0:7, 0:7] OF CHAR\nBoard[0, 7] <- 'Q'"},
		{"record type", "TYPE Point\n DECLARE X : REAL\n DECLARE Y : REAL\nENDTYPE\nDECLARE P : Point\nP.X <- 1.5"},
		{"if without else", "IF X > 1 THEN\n OUTPUT X\nENDIF"},
		{"if with else", "IF X > 1 THEN\n OUTPUT X\nELSE\n OUTPUT -X\nENDIF"},
		{"nested if", "IF A THEN\n IF B THEN\n  OUTPUT 1\n ENDIF\nELSE\n OUTPUT 2\nENDIF"},
		{"while with do", "WHILE X < 10 DO\n X <- X + 1\nENDWHILE"},
		{"while without do", "WHILE X < 10\n X <- X + 1\nENDWHILE"},
		{"repeat", "REPEAT\n X <- X - 1\nUNTIL X = 0"},
		{"for with next", "FOR I <- 1 TO 3\n OUTPUT I\nNEXT I"},
		{"for with bare next", "FOR I <- 1 TO 3\n OUTPUT I\nNEXT\nX <- 1"},
		{"for with endfor and step", "FOR I <- 10 TO 1 STEP -1\n OUTPUT I\nENDFOR"},
		{"next followed by assignment", "FOR I <- 1 TO 3\n OUTPUT I\nNEXT\nI <- 7"},
		{"case", "CASE OF Grade\n 'A' : OUTPUT \"top\"\n 'B', 'C' : OUTPUT \"good\"\n OTHERWISE OUTPUT \"other\"\nENDCASE"},
		{"case with ranges", "CASE OF Score\n 0 TO 49 : OUTPUT \"fail\"\n 50 TO 100 : OUTPUT \"pass\"\nENDCASE"},
		{"case with negative label", "CASE OF N\n 1 : X <- Y\n -1 : X <- 0\nENDCASE"},
		{"input and output", "INPUT Name\nOUTPUT \"Hello \", Name"},
		{"procedure", "PROCEDURE Greet(Name : STRING)\n OUTPUT \"Hi \" & Name\nENDPROCEDURE\nCALL Greet(\"Bob\")"},
		{"procedure without parameters", "PROCEDURE Beep\n OUTPUT \"beep\"\nENDPROCEDURE\nCALL Beep"},
		{"procedure with byref", "PROCEDURE Swap(BYREF A : INTEGER, B : INTEGER)\n DECLARE T : INTEGER\n T <- A\n A <- B\n B <- T\nENDPROCEDURE"},
		{"function", "FUNCTION Square(N : INTEGER) RETURNS INTEGER\n RETURN N * N\nENDFUNCTION\nOUTPUT Square(4)"},
		{"recursive function", "FUNCTION Fact(N : INTEGER) RETURNS INTEGER\n IF N <= 1 THEN\n  RETURN 1\n ENDIF\n RETURN N * Fact(N - 1)\nENDFUNCTION"},
		{"nested routine", "PROCEDURE Outer\n PROCEDURE Inner\n  OUTPUT 1\n ENDPROCEDURE\n CALL Inner\nENDPROCEDURE"},
		{"builtin call", "OUTPUT LENGTH(\"abc\") + ASC('a')"},
		{"file handling", "OPENFILE \"out.txt\" FOR WRITE\nWRITEFILE \"out.txt\", \"line\"\nCLOSEFILE \"out.txt\""},
		{"comments", "// a program\nX <- 1 // set X"},
		{"lower-case keywords", "declare x : integer\nx <- 1\noutput x"},
	}

	for idx, testEntry := range testData {
		t.Run(testEntry.name, func(t *testing.T) {
			p, err := Parse(fmt.Sprintf("test_%d.pseudo", idx), testEntry.code)
			if err != nil {
				t.Errorf("%d. parse failed: %v", idx, err)
			}
			t.Logf("p = %s", spew.Sdump(p))
		})
	}
}

func TestParserFails(t *testing.T) {
	testData := []struct {
		name string
		code string
		msg  string
	}{
		{"missing endif", "IF X THEN\n OUTPUT 1", "expected ENDIF"},
		{"missing then", "IF X\n OUTPUT 1\nENDIF", "expected THEN"},
		{"assignment without value", "X <-", "expected expression"},
		{"array bounds reversed", "DECLARE A : ARRAY[10:1] OF INTEGER", "lower bound 10 is greater than upper bound 1"},
		{"array bounds overflow", "DECLARE A : ARRAY[-9223372036854775807:9223372036854775807] OF INTEGER", "array has more than 16777216 elements"},
		{"array too large", "DECLARE A : ARRAY[1:10000000000] OF INTEGER", "array has more than 16777216 elements"},
		{"array dimensions too large", "DECLARE A : ARRAY[1:100000, 1:100000] OF INTEGER", "array has more than 16777216 elements"},
		{"nested array too large", "DECLARE A : ARRAY[1:100000] OF ARRAY[1:100000] OF INTEGER", "array has more than 16777216 elements"},
		{"real array bound", "DECLARE A : ARRAY[1.5:3] OF INTEGER", "expected integer literal"},
		{"repeated case label", "CASE OF X\n 1 : OUTPUT 1\n 1 : OUTPUT 2\nENDCASE", "repeated CASE label 1"},
		{"mismatched next", "FOR I <- 1 TO 3\n OUTPUT I\nNEXT J", "expected NEXT I, found NEXT J"},
		{"procedure inside if", "IF X THEN\n PROCEDURE P\n ENDPROCEDURE\nENDIF", "only allowed at program or routine level"},
		{"stray terminator", "OUTPUT 1\nENDWHILE", "unexpected ENDWHILE"},
		{"empty type", "TYPE Empty\nENDTYPE", "declares no fields"},
		{"function without returns", "FUNCTION F\n RETURN 1\nENDFUNCTION", "expected RETURNS"},
		{"bad openfile mode", "OPENFILE \"x\" FOR UPDATE", "expected READ, WRITE or APPEND"},
	}

	for _, tt := range testData {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.pseudo", tt.code)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParserRecoversFromErrors(t *testing.T) {
	code := `DECLARE X : INTEGER
X <- 
DECLARE Y : 
OUTPUT X
IF X > 1 THEN
  Y <- * 2
  OUTPUT Y
ENDIF
OUTPUT (X`

	diags := diag.New()
	prog := NewParser("recover.pseudo", code, diags).Parse()

	errs := diags.Phase(diag.Syntax)
	require.Len(t, errs, 4, diags.Format("recover.pseudo"))
	assert.Equal(t, 3, errs[0].Line)
	assert.Equal(t, 4, errs[1].Line)
	assert.Equal(t, 6, errs[2].Line)
	assert.Equal(t, 9, errs[3].Line)

	// DECLARE X, OUTPUT X and the IF survive.
	require.Len(t, prog.Body, 3)
	assert.IsType(t, &DeclareStmt{}, prog.Body[0])
	assert.IsType(t, &OutputStmt{}, prog.Body[1])
	ifStmt, ok := prog.Body[2].(*IfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Then.Statements, 1)
	assert.IsType(t, &OutputStmt{}, ifStmt.Then.Statements[0])
}

func TestParserPrecedence(t *testing.T) {
	testData := []struct {
		expr string
		tree string
	}{
		{"1 + 2 * 3", "binary<literal<1> + binary<literal<2> * literal<3>>>"},
		{"(1 + 2) * 3", "binary<(binary<literal<1> + literal<2>>) * literal<3>>"},
		{"A OR B AND C", "logical<var<A@-1.0> OR logical<var<B@-1.0> AND var<C@-1.0>>>"},
		{"NOT A = B", "unary<NOT binary<var<A@-1.0> = var<B@-1.0>>>"},
		{"-X * 2", "binary<unary<- var<X@-1.0>> * literal<2>>"},
		{"A & B = C", "binary<binary<var<A@-1.0> & var<B@-1.0>> = var<C@-1.0>>"},
		{"7 DIV 2 MOD 3", "binary<binary<literal<7> DIV literal<2>> MOD literal<3>>"},
		{"Arr[I + 1].Name", "field<index<var<Arr@-1.0>[binary<var<I@-1.0> + literal<1>>]>.Name>"},
		{"MID(S, 1, 2)", "call<MID(var<S@-1.0>, literal<1>, literal<2>)>"},
	}

	for _, tt := range testData {
		t.Run(tt.expr, func(t *testing.T) {
			prog, err := Parse("expr.pseudo", "OUTPUT "+tt.expr)
			require.NoError(t, err)
			require.Len(t, prog.Body, 1)
			out := prog.Body[0].(*OutputStmt)
			require.Len(t, out.Values, 1)
			assert.Equal(t, tt.tree, out.Values[0].String())
		})
	}
}

func TestParserCaseBranches(t *testing.T) {
	prog, err := Parse("case.pseudo", "CASE OF N\n 1 : X <- Y\n -1 : X <- 0\n 2 TO 5, 9 : X <- 2\n OTHERWISE : X <- 3\nENDCASE")
	require.NoError(t, err)

	stmt := prog.Body[0].(*CaseStmt)
	require.Len(t, stmt.Branches, 3)
	assert.Equal(t, int64(-1), stmt.Branches[1].Labels[0].Low.Value)
	require.Len(t, stmt.Branches[2].Labels, 2)
	assert.Equal(t, int64(5), stmt.Branches[2].Labels[0].High.Value)
	require.NotNil(t, stmt.Otherwise)
	require.Len(t, stmt.Otherwise.Statements, 1)

	// X <- Y must not swallow the -1 label of the next branch.
	assign := stmt.Branches[0].Body.Statements[0].(*AssignStmt)
	assert.IsType(t, &VariableExpr{}, assign.Value)
}

func TestParserParameterModes(t *testing.T) {
	prog, err := Parse("params.pseudo", "PROCEDURE P(A : INTEGER, BYREF B : INTEGER, C : REAL, BYVAL D : CHAR)\nENDPROCEDURE")
	require.NoError(t, err)

	decl := prog.Body[0].(*RoutineDecl)
	require.Len(t, decl.Params, 4)
	var modes []bool
	for _, p := range decl.Params {
		modes = append(modes, p.ByRef)
	}
	assert.Equal(t, []bool{false, true, true, false}, modes)
	assert.Equal(t, "PROCEDURE", decl.Kind())
}
