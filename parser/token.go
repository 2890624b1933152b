package parser

import "fmt"

// Kind is the lexical class of a token.
type Kind int

// Pos is a byte offset into the source text.
type Pos int

const (
	TokenEOF Kind = iota
	TokenIdentifier
	TokenInteger
	TokenReal
	TokenString
	TokenChar
	TokenBoolean

	// operators and punctuation
	TokenAssign       // <- or :=
	TokenPlus         // +
	TokenMinus        // -
	TokenMultiply     // *
	TokenDivide       // /
	TokenAmpersand    // &
	TokenEqual        // =
	TokenNotEqual     // <>
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenOpenParen
	TokenCloseParen
	TokenOpenBracket
	TokenCloseBracket
	TokenComma
	TokenColon
	TokenDot

	keywordStart
	TokenDeclare
	TokenConstant
	TokenType
	TokenEndType
	TokenArray
	TokenOf
	TokenIntegerType
	TokenRealType
	TokenStringType
	TokenCharType
	TokenBooleanType
	TokenDateType
	TokenIf
	TokenThen
	TokenElse
	TokenEndIf
	TokenCase
	TokenOtherwise
	TokenEndCase
	TokenWhile
	TokenDo
	TokenEndWhile
	TokenRepeat
	TokenUntil
	TokenFor
	TokenTo
	TokenStep
	TokenNext
	TokenEndFor
	TokenProcedure
	TokenEndProcedure
	TokenFunction
	TokenReturns
	TokenEndFunction
	TokenReturn
	TokenCall
	TokenByRef
	TokenByVal
	TokenInput
	TokenOutput
	TokenAnd
	TokenOr
	TokenNot
	TokenDiv
	TokenMod
	TokenOpenFile
	TokenReadFile
	TokenWriteFile
	TokenCloseFile
	TokenRead
	TokenWrite
	TokenAppend
	keywordEnd
)

var keywords = map[string]Kind{
	"DECLARE":      TokenDeclare,
	"CONSTANT":     TokenConstant,
	"TYPE":         TokenType,
	"ENDTYPE":      TokenEndType,
	"ARRAY":        TokenArray,
	"OF":           TokenOf,
	"INTEGER":      TokenIntegerType,
	"REAL":         TokenRealType,
	"STRING":       TokenStringType,
	"CHAR":         TokenCharType,
	"BOOLEAN":      TokenBooleanType,
	"DATE":         TokenDateType,
	"IF":           TokenIf,
	"THEN":         TokenThen,
	"ELSE":         TokenElse,
	"ENDIF":        TokenEndIf,
	"CASE":         TokenCase,
	"OTHERWISE":    TokenOtherwise,
	"ENDCASE":      TokenEndCase,
	"WHILE":        TokenWhile,
	"DO":           TokenDo,
	"ENDWHILE":     TokenEndWhile,
	"REPEAT":       TokenRepeat,
	"UNTIL":        TokenUntil,
	"FOR":          TokenFor,
	"TO":           TokenTo,
	"STEP":         TokenStep,
	"NEXT":         TokenNext,
	"ENDFOR":       TokenEndFor,
	"PROCEDURE":    TokenProcedure,
	"ENDPROCEDURE": TokenEndProcedure,
	"FUNCTION":     TokenFunction,
	"RETURNS":      TokenReturns,
	"ENDFUNCTION":  TokenEndFunction,
	"RETURN":       TokenReturn,
	"CALL":         TokenCall,
	"BYREF":        TokenByRef,
	"BYVAL":        TokenByVal,
	"BYVALUE":      TokenByVal,
	"INPUT":        TokenInput,
	"OUTPUT":       TokenOutput,
	"AND":          TokenAnd,
	"OR":           TokenOr,
	"NOT":          TokenNot,
	"DIV":          TokenDiv,
	"MOD":          TokenMod,
	"OPENFILE":     TokenOpenFile,
	"READFILE":     TokenReadFile,
	"WRITEFILE":    TokenWriteFile,
	"CLOSEFILE":    TokenCloseFile,
	"READ":         TokenRead,
	"WRITE":        TokenWrite,
	"APPEND":       TokenAppend,
}

var kindNames = map[Kind]string{
	TokenEOF:          "end of input",
	TokenIdentifier:   "identifier",
	TokenInteger:      "integer literal",
	TokenReal:         "real literal",
	TokenString:       "string literal",
	TokenChar:         "char literal",
	TokenBoolean:      "boolean literal",
	TokenAssign:       "<-",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenMultiply:     "*",
	TokenDivide:       "/",
	TokenAmpersand:    "&",
	TokenEqual:        "=",
	TokenNotEqual:     "<>",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
	TokenOpenParen:    "(",
	TokenCloseParen:   ")",
	TokenOpenBracket:  "[",
	TokenCloseBracket: "]",
	TokenComma:        ",",
	TokenColon:        ":",
	TokenDot:          ".",
}

func init() {
	for word, kind := range keywords {
		if _, ok := kindNames[kind]; !ok || word == "BYVAL" {
			kindNames[kind] = word
		}
	}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k > keywordStart && k < keywordEnd
}

// Token is an immutable lexical unit. Text is the exact lexeme; Value holds
// the decoded literal (int64, float64, string, rune or bool) for literal
// tokens and is nil otherwise.
type Token struct {
	Kind   Kind
	Text   string
	Value  interface{}
	Pos    Pos
	Line   int
	Column int
}

func (t Token) String() string {
	switch {
	case t.Kind == TokenEOF:
		return "end of input"
	case t.Kind.IsKeyword():
		return t.Kind.String()
	}
	return fmt.Sprintf("%q", t.Text)
}

// Position returns the source position of the token.
func (t Token) Position() Position {
	return Position{Line: t.Line, Column: t.Column}
}

// Position is a line/column pair, both 1-based.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
