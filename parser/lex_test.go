package parser

import (
	"strings"
	"testing"

	"github.com/akrennmair/pseudo/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer(t *testing.T) {
	testData := []string{
		"DECLARE X : INTEGER",
		"X <- 5",
		"X := 5",
		"OUTPUT X + 1",
		"declare count : integer",
		"DECLARE Grid : ARRAY[1:10, -2:2] OF REAL",
		`OUTPUT "Hello, World"`,
		"OUTPUT 'a', 3.25, TRUE, false",
		"IF A <= B AND NOT C <> D THEN OUTPUT A >= B ENDIF",
		"Total <- Total + Price * 2 DIV 3 MOD 4 / 1.5 & \"x\"",
		"CASE OF Grade\n  'A' : OUTPUT \"top\"\n  OTHERWISE : OUTPUT \"rest\"\nENDCASE",
		"FOR I <- 1 TO 10 STEP 2\n  OUTPUT I\nNEXT I",
		"PROCEDURE Swap(BYREF A : INTEGER, B : INTEGER)\nENDPROCEDURE",
		"FUNCTION Fact(BYVALUE N : INTEGER) RETURNS INTEGER\n  RETURN N\nENDFUNCTION",
		"TYPE Point\n  DECLARE X : INTEGER\n  DECLARE Y : INTEGER\nENDTYPE\nP.X <- 1",
		"OPENFILE \"data.txt\" FOR READ\nREADFILE \"data.txt\", Line\nCLOSEFILE \"data.txt\"",
		"X <- 1 // trailing comment\n// whole line comment",
	}

	for idx, entry := range testData {
		t.Logf("%d. Lexing %q", idx, entry)
		diags := diag.New()
		toks := Tokens("", entry, diags)
		for _, tok := range toks {
			t.Logf("\ttoken = %s (%s)", tok, tok.Position())
		}
		assert.False(t, diags.HasErrors(), "%d. unexpected lexical errors:\n%s", idx, diags.Format("test"))
		assert.Equal(t, TokenEOF, toks[len(toks)-1].Kind)
	}
}

func TestLexerTokenKinds(t *testing.T) {
	toks := Tokens("", `declare X : Integer <- := <= <> >= < > = "s" 'c' 12 1.5 True`, nil)

	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []Kind{
		TokenDeclare, TokenIdentifier, TokenColon, TokenIntegerType,
		TokenAssign, TokenAssign, TokenLessEqual, TokenNotEqual, TokenGreaterEqual, TokenLess, TokenGreater, TokenEqual,
		TokenString, TokenChar, TokenInteger, TokenReal, TokenBoolean, TokenEOF,
	}, kinds)

	assert.Equal(t, "declare", toks[0].Text)
	assert.Equal(t, "s", toks[12].Value)
	assert.Equal(t, 'c', toks[13].Value)
	assert.Equal(t, int64(12), toks[14].Value)
	assert.Equal(t, 1.5, toks[15].Value)
	assert.Equal(t, true, toks[16].Value)
}

func TestLexerPositions(t *testing.T) {
	toks := Tokens("", "DECLARE X : INTEGER\n  X <- 10", nil)
	require.Len(t, toks, 8)

	assert.Equal(t, Position{Line: 1, Column: 1}, toks[0].Position())
	assert.Equal(t, Position{Line: 1, Column: 9}, toks[1].Position())
	assert.Equal(t, Position{Line: 2, Column: 3}, toks[4].Position())
	assert.Equal(t, Position{Line: 2, Column: 5}, toks[5].Position())
	assert.Equal(t, Position{Line: 2, Column: 8}, toks[6].Position())
}

// Concatenating the lexemes of all tokens yields the input minus whitespace
// and comments.
func TestLexerLexemesAreLossless(t *testing.T) {
	testData := []string{
		"DECLARE Name : STRING\nName <- \"Ada Lovelace\"",
		"FOR I <- 1 TO 3\n  OUTPUT I * 2.5\nNEXT I",
		"IF X<>Y THEN\n OUTPUT 'y'\nENDIF",
	}

	for _, entry := range testData {
		var buf strings.Builder
		for _, tok := range Tokens("", entry, nil) {
			buf.WriteString(tok.Text)
		}
		assert.Equal(t, strings.Join(strings.Fields(entry), ""), strings.ReplaceAll(buf.String(), " ", ""))
	}
}

func TestLexerErrors(t *testing.T) {
	testData := []struct {
		name   string
		input  string
		errors int
		msg    string
	}{
		{"unterminated string", `OUTPUT "abc`, 1, "unterminated string literal"},
		{"unrecognised character", "X <- 1 ? 2", 1, "unrecognised character '?'"},
		{"two errors", "X <- 1 ? 2\nY <- 3 $ 4", 2, "unrecognised character"},
		{"long char literal", "C <- 'ab'", 1, "char literal must contain exactly one character"},
		{"unterminated char", "C <- 'a", 1, "unterminated char literal"},
	}

	for _, tt := range testData {
		t.Run(tt.name, func(t *testing.T) {
			diags := diag.New()
			toks := Tokens("", tt.input, diags)
			require.Equal(t, TokenEOF, toks[len(toks)-1].Kind)

			errs := diags.Phase(diag.Lexical)
			require.Len(t, errs, tt.errors, diags.Format("test"))
			assert.Contains(t, errs[0].Message, tt.msg)
		})
	}
}
