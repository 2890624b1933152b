package parser

import (
	"fmt"
	"io"
	"log"

	"github.com/akrennmair/pseudo/diag"
)

// Parser is a recursive-descent parser for pseudocode. Syntax errors are
// reported to the diagnostics list; after each error the parser skips to the
// next statement boundary and carries on, so one pass reports every
// independent error.
type Parser struct {
	name   string
	lexer  *Scanner
	logger *log.Logger
	diags  *diag.List

	buf      []Token
	last     Token
	consumed int

	// terminators of the constructs currently being parsed, innermost last.
	open [][]Kind
	// number of CASE bodies currently being parsed.
	caseDepth int
}

// NewParser creates a parser over text. Lexical and syntax errors are
// reported to diags.
func NewParser(name, text string, diags *diag.List) *Parser {
	if diags == nil {
		diags = diag.New()
	}
	return &Parser{
		name:   name,
		lexer:  NewScanner(name, text, diags),
		logger: log.New(io.Discard, "parser ", log.LstdFlags|log.Lshortfile),
		diags:  diags,
	}
}

func (p *Parser) SetLogOutput(w io.Writer) {
	p.logger.SetOutput(w)
}

// Parse parses text and returns the program along with an error summarising
// every lexical and syntax error.
func Parse(name, text string) (*Program, error) {
	diags := diag.New()
	prog := NewParser(name, text, diags).Parse()
	return prog, diags.Err()
}

// Parse parses the whole input. The returned program contains every
// statement that parsed successfully.
func (p *Parser) Parse() *Program {
	prog := &Program{Name: p.name}
	prog.Body = p.parseStatements(true, func(Token) bool { return false })
	p.logger.Printf("parsed %d top-level statements", len(prog.Body))
	return prog
}

type syntaxError struct {
	pos Position
	msg string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.pos, e.msg)
}

func (p *Parser) errorf(tok Token, format string, args ...interface{}) {
	panic(&syntaxError{pos: tok.Position(), msg: fmt.Sprintf(format, args...)})
}

// reportf records a syntax error without unwinding.
func (p *Parser) reportf(pos Position, format string, args ...interface{}) {
	p.diags.Errorf(diag.Syntax, pos.Line, pos.Column, format, args...)
}

func (p *Parser) peekAt(n int) Token {
	for len(p.buf) <= n {
		p.buf = append(p.buf, p.lexer.NextToken())
	}
	return p.buf[n]
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) next() Token {
	tok := p.peek()
	if tok.Kind != TokenEOF {
		p.buf = p.buf[1:]
		p.consumed++
	}
	p.last = tok
	return tok
}

func (p *Parser) accept(k Kind) bool {
	if p.peek().Kind == k {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(k Kind, context string) Token {
	tok := p.peek()
	if tok.Kind != k {
		if context != "" {
			context = " " + context
		}
		p.errorf(tok, "expected %s%s, found %s", k, context, tok)
	}
	return p.next()
}

func (p *Parser) expectIdentifier(what string) Token {
	tok := p.peek()
	if tok.Kind != TokenIdentifier {
		p.errorf(tok, "expected %s, found %s", what, tok)
	}
	return p.next()
}

var statementStart = map[Kind]bool{
	TokenDeclare:   true,
	TokenConstant:  true,
	TokenType:      true,
	TokenIf:        true,
	TokenCase:      true,
	TokenWhile:     true,
	TokenRepeat:    true,
	TokenFor:       true,
	TokenInput:     true,
	TokenOutput:    true,
	TokenCall:      true,
	TokenReturn:    true,
	TokenProcedure: true,
	TokenFunction:  true,
	TokenOpenFile:  true,
	TokenReadFile:  true,
	TokenWriteFile: true,
	TokenCloseFile: true,
}

var blockTerminator = map[Kind]bool{
	TokenElse:         true,
	TokenEndIf:        true,
	TokenOtherwise:    true,
	TokenEndCase:      true,
	TokenEndWhile:     true,
	TokenUntil:        true,
	TokenNext:         true,
	TokenEndFor:       true,
	TokenEndProcedure: true,
	TokenEndFunction:  true,
	TokenEndType:      true,
}

// synchronize discards tokens after a syntax error until a point where a new
// statement can begin: a statement keyword, a block terminator, an
// identifier at the start of a new line, or the end of input.
func (p *Parser) synchronize(start int) {
	if p.consumed == start {
		p.next()
	}
	for {
		tok := p.peek()
		switch {
		case tok.Kind == TokenEOF, statementStart[tok.Kind], blockTerminator[tok.Kind]:
			return
		case tok.Kind == TokenIdentifier && tok.Line > p.last.Line:
			return
		}
		p.next()
	}
}

func (p *Parser) isOpenTerminator(k Kind) bool {
	for _, kinds := range p.open {
		for _, t := range kinds {
			if t == k {
				return true
			}
		}
	}
	return false
}

// parseBody parses the statements of a compound construct up to (but not
// including) one of the terminators.
func (p *Parser) parseBody(declLevel bool, terminators ...Kind) *BlockStmt {
	block := &BlockStmt{StmtBase: StmtBase{At: p.peek().Position()}}
	p.open = append(p.open, terminators)
	defer func() { p.open = p.open[:len(p.open)-1] }()

	block.Statements = p.parseStatements(declLevel, func(tok Token) bool {
		for _, k := range terminators {
			if tok.Kind == k {
				return true
			}
		}
		return false
	})
	return block
}

func (p *Parser) parseStatements(declLevel bool, stop func(Token) bool) []Statement {
	var statements []Statement
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF || stop(tok) {
			return statements
		}
		if blockTerminator[tok.Kind] {
			if p.isOpenTerminator(tok.Kind) {
				return statements
			}
			p.reportf(tok.Position(), "unexpected %s", tok)
			p.next()
			continue
		}
		if stmt := p.parseStatementWithRecovery(declLevel); stmt != nil {
			statements = append(statements, stmt)
		}
	}
}

func (p *Parser) parseStatementWithRecovery(declLevel bool) (stmt Statement) {
	start := p.consumed
	defer func() {
		if e := recover(); e != nil {
			se, ok := e.(*syntaxError)
			if !ok {
				panic(e)
			}
			p.logger.Printf("syntax error: %v", se)
			p.reportf(se.pos, "%s", se.msg)
			p.synchronize(start)
			stmt = nil
		}
	}()
	return p.parseStatement(declLevel)
}

func (p *Parser) parseStatement(declLevel bool) Statement {
	tok := p.peek()
	p.logger.Printf("parsing statement starting with %s at %s", tok, tok.Position())

	switch tok.Kind {
	case TokenDeclare:
		return p.parseDeclareStatement()
	case TokenConstant:
		return p.parseConstantStatement()
	case TokenType:
		if !declLevel {
			p.errorf(tok, "TYPE declarations are only allowed at program or routine level")
		}
		return p.parseTypeStatement()
	case TokenProcedure, TokenFunction:
		if !declLevel {
			p.errorf(tok, "%s declarations are only allowed at program or routine level", tok.Kind)
		}
		return p.parseRoutineDeclaration()
	case TokenIf:
		return p.parseIfStatement()
	case TokenCase:
		return p.parseCaseStatement()
	case TokenWhile:
		return p.parseWhileStatement()
	case TokenRepeat:
		return p.parseRepeatStatement()
	case TokenFor:
		return p.parseForStatement()
	case TokenInput:
		p.next()
		return &InputStmt{StmtBase: StmtBase{At: tok.Position()}, Target: p.parseAssignable()}
	case TokenOutput:
		return p.parseOutputStatement()
	case TokenCall:
		return p.parseCallStatement()
	case TokenReturn:
		return p.parseReturnStatement()
	case TokenOpenFile, TokenReadFile, TokenWriteFile, TokenCloseFile:
		return p.parseFileStatement()
	case TokenIdentifier:
		return p.parseAssignment()
	}

	p.errorf(tok, "expected statement, found %s", tok)
	return nil
}

func (p *Parser) parseDeclareStatement() *DeclareStmt {
	tok := p.expect(TokenDeclare, "")
	name := p.expectIdentifier("variable name after DECLARE")
	p.expect(TokenColon, "after variable name")
	typ := p.parseType()
	return &DeclareStmt{StmtBase: StmtBase{At: tok.Position()}, Name: name.Text, DeclType: typ}
}

func (p *Parser) parseConstantStatement() *ConstantStmt {
	tok := p.expect(TokenConstant, "")
	name := p.expectIdentifier("constant name after CONSTANT")
	if !p.accept(TokenEqual) && !p.accept(TokenAssign) {
		p.errorf(p.peek(), "expected = after constant name, found %s", p.peek())
	}
	value := p.parseLiteral()
	return &ConstantStmt{StmtBase: StmtBase{At: tok.Position()}, Name: name.Text, Value: value}
}

func (p *Parser) parseTypeStatement() *TypeStmt {
	tok := p.expect(TokenType, "")
	name := p.expectIdentifier("type name after TYPE")
	rec := &RecordType{Name: name.Text}

	for p.peek().Kind == TokenDeclare {
		p.next()
		field := p.expectIdentifier("field name after DECLARE")
		p.expect(TokenColon, "after field name")
		typ := p.parseType()
		if f, _ := rec.FindField(field.Text); f != nil {
			p.errorf(field, "duplicate field %s in TYPE %s", field.Text, name.Text)
		}
		rec.Fields = append(rec.Fields, &RecordField{Name: field.Text, Type: typ, At: field.Position()})
	}

	end := p.expect(TokenEndType, "at end of TYPE "+name.Text)
	if len(rec.Fields) == 0 {
		p.errorf(end, "TYPE %s declares no fields", name.Text)
	}
	return &TypeStmt{StmtBase: StmtBase{At: tok.Position()}, Record: rec}
}

func (p *Parser) parseType() DataType {
	tok := p.peek()
	if tok.Kind != TokenArray && tok.Kind != TokenIdentifier && !isScalarTypeKeyword(tok.Kind) {
		p.errorf(tok, "expected type, found %s", tok)
	}
	p.next()
	switch tok.Kind {
	case TokenIntegerType:
		return Integer
	case TokenRealType:
		return Real
	case TokenStringType:
		return String
	case TokenCharType:
		return Char
	case TokenBooleanType:
		return Boolean
	case TokenDateType:
		return Date
	case TokenIdentifier:
		return &NamedType{Name: tok.Text, At: tok.Position()}
	}
	return p.parseArrayType(tok)
}

func isScalarTypeKeyword(k Kind) bool {
	switch k {
	case TokenIntegerType, TokenRealType, TokenStringType, TokenCharType, TokenBooleanType, TokenDateType:
		return true
	}
	return false
}

func (p *Parser) parseArrayType(arrayTok Token) *ArrayType {
	p.expect(TokenOpenBracket, "after ARRAY")
	at := &ArrayType{}
	size := uint64(1)
	for {
		lowTok := p.peek()
		lower := p.parseIntegerLiteral()
		p.expect(TokenColon, "between array bounds")
		upper := p.parseIntegerLiteral()
		if lower > upper {
			p.errorf(lowTok, "array lower bound %d is greater than upper bound %d", lower, upper)
		}
		// lower <= upper, so the unsigned difference is exact.
		if span := uint64(upper) - uint64(lower); span >= MaxArrayElements || size*(span+1) > MaxArrayElements {
			p.errorf(lowTok, "array has more than %d elements", MaxArrayElements)
		} else {
			size *= span + 1
		}
		at.Dims = append(at.Dims, Bound{Lower: lower, Upper: upper})
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenCloseBracket, "after array bounds")
	p.expect(TokenOf, "after array bounds")
	elemTok := p.peek()
	at.ElementType = p.parseType()
	if inner, ok := at.ElementType.(*ArrayType); ok && size*uint64(inner.Size()) > MaxArrayElements {
		p.errorf(elemTok, "array has more than %d elements", MaxArrayElements)
	}
	return at
}

func (p *Parser) parseIntegerLiteral() int64 {
	lit := p.parseLiteral()
	v, ok := lit.Value.(int64)
	if !ok {
		p.errorf(Token{Line: lit.At.Line, Column: lit.At.Column}, "expected integer literal, found %s", lit.Text)
	}
	return v
}

func isLiteralKind(k Kind) bool {
	switch k {
	case TokenInteger, TokenReal, TokenString, TokenChar, TokenBoolean:
		return true
	}
	return false
}

// parseLiteral parses a literal, allowing a leading minus sign on numbers.
func (p *Parser) parseLiteral() *LiteralExpr {
	tok := p.peek()
	if tok.Kind == TokenMinus {
		p.next()
		num := p.peek()
		switch num.Kind {
		case TokenInteger:
			p.next()
			return &LiteralExpr{ExprBase: ExprBase{At: tok.Position()}, Kind: num.Kind, Value: -num.Value.(int64), Text: "-" + num.Text}
		case TokenReal:
			p.next()
			return &LiteralExpr{ExprBase: ExprBase{At: tok.Position()}, Kind: num.Kind, Value: -num.Value.(float64), Text: "-" + num.Text}
		}
		p.errorf(num, "expected number after -, found %s", num)
	}
	if !isLiteralKind(tok.Kind) {
		p.errorf(tok, "expected literal, found %s", tok)
	}
	p.next()
	return &LiteralExpr{ExprBase: ExprBase{At: tok.Position()}, Kind: tok.Kind, Value: tok.Value, Text: tok.Text}
}

func (p *Parser) parseAssignment() *AssignStmt {
	target := p.parseAssignable()
	p.expect(TokenAssign, "in assignment")
	value := p.parseExpression()
	return &AssignStmt{StmtBase: StmtBase{At: target.Pos()}, Target: target, Value: value}
}

// parseAssignable parses a variable optionally followed by indexes and field
// selectors.
func (p *Parser) parseAssignable() Expression {
	tok := p.expectIdentifier("variable name")
	var expr Expression = &VariableExpr{ExprBase: ExprBase{At: tok.Position()}, Name: tok.Text, Depth: -1}
	return p.parseSelectors(expr)
}

func (p *Parser) parseSelectors(expr Expression) Expression {
	for {
		switch p.peek().Kind {
		case TokenOpenBracket:
			open := p.next()
			idx := &IndexExpr{ExprBase: ExprBase{At: open.Position()}, Base: expr}
			for {
				idx.Indexes = append(idx.Indexes, p.parseExpression())
				if !p.accept(TokenComma) {
					break
				}
			}
			p.expect(TokenCloseBracket, "after array index")
			expr = idx
		case TokenDot:
			dot := p.next()
			field := p.expectIdentifier("field name after .")
			expr = &FieldExpr{ExprBase: ExprBase{At: dot.Position()}, Base: expr, Field: field.Text, FieldIndex: -1}
		default:
			return expr
		}
	}
}

func (p *Parser) parseIfStatement() *IfStmt {
	tok := p.expect(TokenIf, "")
	cond := p.parseExpression()
	p.expect(TokenThen, "after IF condition")
	stmt := &IfStmt{StmtBase: StmtBase{At: tok.Position()}, Condition: cond}
	stmt.Then = p.parseBody(false, TokenElse, TokenEndIf)
	if p.accept(TokenElse) {
		stmt.Else = p.parseBody(false, TokenEndIf)
	}
	p.expect(TokenEndIf, "at end of IF")
	return stmt
}

func (p *Parser) isCaseLabelStart() bool {
	tok := p.peek()
	if isLiteralKind(tok.Kind) {
		return true
	}
	if tok.Kind == TokenMinus {
		k := p.peekAt(1).Kind
		return k == TokenInteger || k == TokenReal
	}
	return false
}

func (p *Parser) parseCaseStatement() *CaseStmt {
	tok := p.expect(TokenCase, "")
	p.expect(TokenOf, "after CASE")
	stmt := &CaseStmt{StmtBase: StmtBase{At: tok.Position()}, Selector: p.parseUnary()}

	p.caseDepth++
	defer func() { p.caseDepth-- }()
	p.open = append(p.open, []Kind{TokenOtherwise, TokenEndCase})
	defer func() { p.open = p.open[:len(p.open)-1] }()

	seen := map[interface{}]bool{}
	stop := func(Token) bool {
		k := p.peek().Kind
		return k == TokenOtherwise || k == TokenEndCase || p.isCaseLabelStart()
	}

	for p.isCaseLabelStart() {
		branch := &CaseBranch{At: p.peek().Position()}
		for {
			label := &CaseLabel{Low: p.parseLiteral()}
			if p.accept(TokenTo) {
				label.High = p.parseLiteral()
			} else {
				key := fmt.Sprintf("%d:%v", label.Low.Kind, label.Low.Value)
				if seen[key] {
					p.reportf(label.Low.At, "repeated CASE label %s", label.Low.Text)
				}
				seen[key] = true
			}
			branch.Labels = append(branch.Labels, label)
			if !p.accept(TokenComma) {
				break
			}
		}
		p.expect(TokenColon, "after CASE label")
		branch.Body = &BlockStmt{StmtBase: StmtBase{At: p.peek().Position()}}
		branch.Body.Statements = p.parseStatements(false, stop)
		stmt.Branches = append(stmt.Branches, branch)
	}

	if p.peek().Kind == TokenOtherwise {
		p.next()
		p.accept(TokenColon)
		stmt.Otherwise = &BlockStmt{StmtBase: StmtBase{At: p.peek().Position()}}
		stmt.Otherwise.Statements = p.parseStatements(false, func(tok Token) bool { return tok.Kind == TokenEndCase })
	}

	p.expect(TokenEndCase, "at end of CASE")
	return stmt
}

func (p *Parser) parseWhileStatement() *WhileStmt {
	tok := p.expect(TokenWhile, "")
	cond := p.parseExpression()
	p.accept(TokenDo)
	stmt := &WhileStmt{StmtBase: StmtBase{At: tok.Position()}, Condition: cond}
	stmt.Body = p.parseBody(false, TokenEndWhile)
	p.expect(TokenEndWhile, "at end of WHILE")
	return stmt
}

func (p *Parser) parseRepeatStatement() *RepeatStmt {
	tok := p.expect(TokenRepeat, "")
	stmt := &RepeatStmt{StmtBase: StmtBase{At: tok.Position()}}
	stmt.Body = p.parseBody(false, TokenUntil)
	p.expect(TokenUntil, "at end of REPEAT")
	stmt.Condition = p.parseExpression()
	return stmt
}

func (p *Parser) parseForStatement() *ForStmt {
	tok := p.expect(TokenFor, "")
	counter := p.expectIdentifier("loop variable after FOR")
	p.expect(TokenAssign, "after loop variable")
	stmt := &ForStmt{
		StmtBase: StmtBase{At: tok.Position()},
		Counter:  &VariableExpr{ExprBase: ExprBase{At: counter.Position()}, Name: counter.Text, Depth: -1},
	}
	stmt.From = p.parseExpression()
	p.expect(TokenTo, "in FOR")
	stmt.To = p.parseExpression()
	if p.accept(TokenStep) {
		stmt.Step = p.parseExpression()
	}
	stmt.Body = p.parseBody(false, TokenNext, TokenEndFor)

	if p.accept(TokenEndFor) {
		return stmt
	}
	p.expect(TokenNext, "at end of FOR")
	// NEXT may name the loop variable; an identifier followed by something
	// that continues an assignment belongs to the next statement instead.
	if ident := p.peek(); ident.Kind == TokenIdentifier {
		switch p.peekAt(1).Kind {
		case TokenAssign, TokenOpenBracket, TokenDot:
		default:
			p.next()
			if ident.Text != counter.Text {
				p.errorf(ident, "expected NEXT %s, found NEXT %s", counter.Text, ident.Text)
			}
		}
	}
	return stmt
}

func (p *Parser) parseOutputStatement() *OutputStmt {
	tok := p.expect(TokenOutput, "")
	stmt := &OutputStmt{StmtBase: StmtBase{At: tok.Position()}}
	for {
		stmt.Values = append(stmt.Values, p.parseExpression())
		if !p.accept(TokenComma) {
			return stmt
		}
	}
}

func (p *Parser) parseCallStatement() *CallStmt {
	tok := p.expect(TokenCall, "")
	name := p.expectIdentifier("procedure name after CALL")
	call := &CallExpr{ExprBase: ExprBase{At: name.Position()}, Name: name.Text}
	if p.peek().Kind == TokenOpenParen {
		call.Args = p.parseArguments()
	}
	return &CallStmt{StmtBase: StmtBase{At: tok.Position()}, Call: call}
}

func (p *Parser) parseArguments() []Expression {
	p.expect(TokenOpenParen, "")
	var args []Expression
	if p.accept(TokenCloseParen) {
		return args
	}
	for {
		args = append(args, p.parseExpression())
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenCloseParen, "after arguments")
	return args
}

func (p *Parser) parseReturnStatement() *ReturnStmt {
	tok := p.expect(TokenReturn, "")
	stmt := &ReturnStmt{StmtBase: StmtBase{At: tok.Position()}}
	// RETURN carries a value only if the expression starts on the same line.
	if next := p.peek(); next.Line == tok.Line && next.Kind != TokenEOF && !blockTerminator[next.Kind] && !statementStart[next.Kind] {
		stmt.Value = p.parseExpression()
	}
	return stmt
}

func (p *Parser) parseRoutineDeclaration() *RoutineDecl {
	tok := p.next()
	name := p.expectIdentifier(fmt.Sprintf("%s name", tok.Kind))
	decl := &RoutineDecl{StmtBase: StmtBase{At: tok.Position()}, Name: name.Text}

	if p.peek().Kind == TokenOpenParen {
		decl.Params = p.parseParameters()
	}

	end := TokenEndProcedure
	if tok.Kind == TokenFunction {
		end = TokenEndFunction
		p.expect(TokenReturns, "after FUNCTION parameters")
		decl.Returns = p.parseType()
	}

	decl.Body = p.parseBody(true, end)
	p.expect(end, "at end of "+tok.Kind.String()+" "+name.Text)
	return decl
}

func (p *Parser) parseParameters() []*Parameter {
	p.expect(TokenOpenParen, "")
	var params []*Parameter
	if p.accept(TokenCloseParen) {
		return params
	}
	byRef := false
	for {
		switch p.peek().Kind {
		case TokenByRef:
			p.next()
			byRef = true
		case TokenByVal:
			p.next()
			byRef = false
		}
		name := p.expectIdentifier("parameter name")
		p.expect(TokenColon, "after parameter name")
		typ := p.parseType()
		params = append(params, &Parameter{At: name.Position(), Name: name.Text, Type: typ, ByRef: byRef})
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenCloseParen, "after parameters")
	return params
}

func (p *Parser) parseFileStatement() Statement {
	tok := p.next()
	base := StmtBase{At: tok.Position()}
	file := p.parseExpression()

	switch tok.Kind {
	case TokenOpenFile:
		p.expect(TokenFor, "after file name")
		stmt := &OpenFileStmt{StmtBase: base, File: file}
		switch mode := p.next(); mode.Kind {
		case TokenRead:
			stmt.Mode = FileRead
		case TokenWrite:
			stmt.Mode = FileWrite
		case TokenAppend:
			stmt.Mode = FileAppend
		default:
			p.errorf(mode, "expected READ, WRITE or APPEND, found %s", mode)
		}
		return stmt
	case TokenReadFile:
		p.expect(TokenComma, "after file name")
		return &ReadFileStmt{StmtBase: base, File: file, Target: p.parseAssignable()}
	case TokenWriteFile:
		p.expect(TokenComma, "after file name")
		return &WriteFileStmt{StmtBase: base, File: file, Value: p.parseExpression()}
	default:
		return &CloseFileStmt{StmtBase: base, File: file}
	}
}

func (p *Parser) parseExpression() Expression {
	return p.parseOr()
}

func (p *Parser) parseOr() Expression {
	expr := p.parseAnd()
	for p.peek().Kind == TokenOr {
		op := p.next()
		expr = &LogicalExpr{ExprBase: ExprBase{At: op.Position()}, Op: op.Kind, Left: expr, Right: p.parseAnd()}
	}
	return expr
}

func (p *Parser) parseAnd() Expression {
	expr := p.parseNot()
	for p.peek().Kind == TokenAnd {
		op := p.next()
		expr = &LogicalExpr{ExprBase: ExprBase{At: op.Position()}, Op: op.Kind, Left: expr, Right: p.parseNot()}
	}
	return expr
}

func (p *Parser) parseNot() Expression {
	if p.peek().Kind == TokenNot {
		op := p.next()
		return &UnaryExpr{ExprBase: ExprBase{At: op.Position()}, Op: op.Kind, Operand: p.parseNot()}
	}
	return p.parseComparison()
}

func isComparisonOperator(k Kind) bool {
	switch k {
	case TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
		return true
	}
	return false
}

func (p *Parser) parseComparison() Expression {
	expr := p.parseAdditive()
	for isComparisonOperator(p.peek().Kind) {
		op := p.next()
		expr = &BinaryExpr{ExprBase: ExprBase{At: op.Position()}, Op: op.Kind, Left: expr, Right: p.parseAdditive()}
	}
	return expr
}

// continuesExpression reports whether a + or - token extends the current
// expression. Inside CASE bodies a sign at the start of a line begins the
// next branch label instead.
func (p *Parser) continuesExpression(op Token) bool {
	if p.caseDepth > 0 && op.Line > p.last.Line {
		return !p.isCaseLabelStart()
	}
	return true
}

func (p *Parser) parseAdditive() Expression {
	expr := p.parseMultiplicative()
	for {
		op := p.peek()
		switch op.Kind {
		case TokenPlus, TokenMinus:
			if !p.continuesExpression(op) {
				return expr
			}
		case TokenAmpersand:
		default:
			return expr
		}
		p.next()
		expr = &BinaryExpr{ExprBase: ExprBase{At: op.Position()}, Op: op.Kind, Left: expr, Right: p.parseMultiplicative()}
	}
}

func (p *Parser) parseMultiplicative() Expression {
	expr := p.parseUnary()
	for {
		switch p.peek().Kind {
		case TokenMultiply, TokenDivide, TokenDiv, TokenMod:
		default:
			return expr
		}
		op := p.next()
		expr = &BinaryExpr{ExprBase: ExprBase{At: op.Position()}, Op: op.Kind, Left: expr, Right: p.parseUnary()}
	}
}

func (p *Parser) parseUnary() Expression {
	if p.peek().Kind == TokenMinus {
		op := p.next()
		return &UnaryExpr{ExprBase: ExprBase{At: op.Position()}, Op: op.Kind, Operand: p.parseUnary()}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Expression {
	tok := p.peek()
	switch {
	case isLiteralKind(tok.Kind):
		p.next()
		return &LiteralExpr{ExprBase: ExprBase{At: tok.Position()}, Kind: tok.Kind, Value: tok.Value, Text: tok.Text}
	case tok.Kind == TokenOpenParen:
		p.next()
		inner := p.parseExpression()
		p.expect(TokenCloseParen, "after expression")
		return p.parseSelectors(&GroupingExpr{ExprBase: ExprBase{At: tok.Position()}, Inner: inner})
	case tok.Kind == TokenIdentifier:
		p.next()
		if p.peek().Kind == TokenOpenParen {
			call := &CallExpr{ExprBase: ExprBase{At: tok.Position()}, Name: tok.Text}
			call.Args = p.parseArguments()
			return p.parseSelectors(call)
		}
		return p.parseSelectors(&VariableExpr{ExprBase: ExprBase{At: tok.Position()}, Name: tok.Text, Depth: -1})
	}
	p.errorf(tok, "expected expression, found %s", tok)
	return nil
}
