package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/akrennmair/pseudo/diag"
)

const eof = -1

type stateFn func(*Scanner) stateFn

// Scanner turns source text into tokens. Tokens are produced on demand by
// NextToken; a Scanner makes a single pass over its input and cannot be
// rewound.
type Scanner struct {
	name  string
	input string
	state stateFn
	pos   Pos
	start Pos
	width Pos

	line      int // line of start
	lineStart Pos // offset of the first byte of line

	items []Token
	last  Token
	done  bool
	diags *diag.List
}

// NewScanner creates a scanner over input. Lexical errors are reported to
// diags; a nil diags discards them.
func NewScanner(name, input string, diags *diag.List) *Scanner {
	if diags == nil {
		diags = diag.New()
	}
	return &Scanner{
		name:  name,
		input: input,
		state: lexText,
		line:  1,
		diags: diags,
	}
}

// Tokens scans the whole input and returns every token up to and including
// the EOF token.
func Tokens(name, input string, diags *diag.List) []Token {
	s := NewScanner(name, input, diags)
	var toks []Token
	for {
		t := s.NextToken()
		toks = append(toks, t)
		if t.Kind == TokenEOF {
			return toks
		}
	}
}

// NextToken returns the next token. Once the end of input has been reached it
// keeps returning the EOF token.
func (l *Scanner) NextToken() Token {
	for len(l.items) == 0 {
		if l.state == nil {
			return l.last
		}
		l.state = l.state(l)
	}
	t := l.items[0]
	l.items = l.items[1:]
	l.last = t
	return t
}

func (l *Scanner) next() rune {
	if int(l.pos) >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = Pos(w)
	l.pos += l.width
	return r
}

func (l *Scanner) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// peekAt returns the rune n runes after the current position without
// consuming anything.
func (l *Scanner) peekAt(n int) rune {
	p := int(l.pos)
	for i := 0; ; i++ {
		if p >= len(l.input) {
			return eof
		}
		r, w := utf8.DecodeRuneInString(l.input[p:])
		if i == n {
			return r
		}
		p += w
	}
}

func (l *Scanner) backup() {
	l.pos -= l.width
}

func (l *Scanner) column() int {
	return utf8.RuneCountInString(l.input[l.lineStart:l.start]) + 1
}

// advance moves start up to pos, keeping line bookkeeping in sync.
func (l *Scanner) advance() {
	consumed := l.input[l.start:l.pos]
	if n := strings.Count(consumed, "\n"); n > 0 {
		l.line += n
		l.lineStart = l.start + Pos(strings.LastIndexByte(consumed, '\n')+1)
	}
	l.start = l.pos
}

func (l *Scanner) emit(k Kind, value interface{}) {
	l.items = append(l.items, Token{
		Kind:   k,
		Text:   l.input[l.start:l.pos],
		Value:  value,
		Pos:    l.start,
		Line:   l.line,
		Column: l.column(),
	})
	l.advance()
}

func (l *Scanner) ignore() {
	l.advance()
}

func (l *Scanner) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *Scanner) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

// errorf reports a lexical error at the start of the current lexeme and drops
// the lexeme.
func (l *Scanner) errorf(format string, args ...interface{}) stateFn {
	l.diags.Errorf(diag.Lexical, l.line, l.column(), format, args...)
	l.ignore()
	return lexText
}

const digits = "0123456789"

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func lexText(l *Scanner) stateFn {
	r := l.peek()
	switch {
	case r == eof:
		l.emit(TokenEOF, nil)
		return nil
	case r == ' ' || r == '\t' || r == '\r' || r == '\n':
		l.acceptRun(" \t\r\n")
		l.ignore()
		return lexText
	case isDigit(r):
		return lexNumber
	case isLetter(r):
		return lexIdentifier
	case r == '"':
		return lexString
	case r == '\'':
		return lexChar
	case r == '/':
		l.next()
		if l.peek() == '/' {
			return lexComment
		}
		l.emit(TokenDivide, nil)
		return lexText
	case r == '<' || r == '>' || r == '=':
		return lexRelationalOperator
	case r == ':':
		return lexColonOrAssignment
	}

	l.next()
	switch r {
	case '+':
		l.emit(TokenPlus, nil)
	case '-':
		l.emit(TokenMinus, nil)
	case '*':
		l.emit(TokenMultiply, nil)
	case '&':
		l.emit(TokenAmpersand, nil)
	case '(':
		l.emit(TokenOpenParen, nil)
	case ')':
		l.emit(TokenCloseParen, nil)
	case '[':
		l.emit(TokenOpenBracket, nil)
	case ']':
		l.emit(TokenCloseBracket, nil)
	case ',':
		l.emit(TokenComma, nil)
	case '.':
		l.emit(TokenDot, nil)
	default:
		return l.errorf("unrecognised character %q", r)
	}
	return lexText
}

func lexComment(l *Scanner) stateFn {
	for r := l.next(); r != eof && r != '\n'; r = l.next() {
	}
	if l.width > 0 && l.input[l.pos-1] == '\n' {
		l.backup()
	}
	l.ignore()
	return lexText
}

func lexNumber(l *Scanner) stateFn {
	l.acceptRun(digits)
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.next()
		l.acceptRun(digits)
		text := l.input[l.start:l.pos]
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return l.errorf("invalid real literal %s", text)
		}
		l.emit(TokenReal, v)
		return lexText
	}
	text := l.input[l.start:l.pos]
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return l.errorf("integer literal %s out of range", text)
	}
	l.emit(TokenInteger, v)
	return lexText
}

func lexIdentifier(l *Scanner) stateFn {
	for r := l.next(); isLetter(r) || isDigit(r); r = l.next() {
	}
	l.backup()
	word := strings.ToUpper(l.input[l.start:l.pos])
	switch word {
	case "TRUE":
		l.emit(TokenBoolean, true)
	case "FALSE":
		l.emit(TokenBoolean, false)
	default:
		if k, ok := keywords[word]; ok {
			l.emit(k, nil)
		} else {
			l.emit(TokenIdentifier, nil)
		}
	}
	return lexText
}

func lexRelationalOperator(l *Scanner) stateFn {
	switch l.next() {
	case '=':
		l.emit(TokenEqual, nil)
	case '<':
		switch l.peek() {
		case '-':
			l.next()
			l.emit(TokenAssign, nil)
		case '=':
			l.next()
			l.emit(TokenLessEqual, nil)
		case '>':
			l.next()
			l.emit(TokenNotEqual, nil)
		default:
			l.emit(TokenLess, nil)
		}
	case '>':
		if l.accept("=") {
			l.emit(TokenGreaterEqual, nil)
		} else {
			l.emit(TokenGreater, nil)
		}
	}
	return lexText
}

func lexColonOrAssignment(l *Scanner) stateFn {
	l.next()
	if l.accept("=") {
		l.emit(TokenAssign, nil)
	} else {
		l.emit(TokenColon, nil)
	}
	return lexText
}

// lexQuoted scans a literal delimited by quote that may not span lines. It
// returns the contents and whether the closing quote was found.
func lexQuoted(l *Scanner, quote rune) (string, bool) {
	l.next()
	for {
		switch r := l.next(); r {
		case quote:
			text := l.input[l.start:l.pos]
			return text[1 : len(text)-1], true
		case '\n':
			l.backup()
			return "", false
		case eof:
			return "", false
		}
	}
}

func lexString(l *Scanner) stateFn {
	s, ok := lexQuoted(l, '"')
	if !ok {
		return l.errorf("unterminated string literal")
	}
	l.emit(TokenString, s)
	return lexText
}

func lexChar(l *Scanner) stateFn {
	s, ok := lexQuoted(l, '\'')
	if !ok {
		return l.errorf("unterminated char literal")
	}
	if utf8.RuneCountInString(s) != 1 {
		return l.errorf("char literal must contain exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	l.emit(TokenChar, r)
	return lexText
}
