package parser

// Statement is implemented by every statement node.
type Statement interface {
	Pos() Position
	stmtNode()
}

type StmtBase struct {
	At Position
}

func (s *StmtBase) Pos() Position { return s.At }
func (s *StmtBase) stmtNode() {}

// Program is the root of the AST. Slots describes the global frame and is
// filled in by the resolver.
type Program struct {
	Name  string
	Body  []Statement
	Slots []*FrameSlot
}

// FrameSlot describes one storage slot of a frame: a parameter, a variable or
// a constant. Constant slots carry their value.
type FrameSlot struct {
	Name     string
	Type     DataType
	Constant *LiteralExpr
}

// DeclareStmt declares a variable. Slot is assigned by the resolver.
type DeclareStmt struct {
	StmtBase
	Name     string
	DeclType DataType
	Slot     int
}

// ConstantStmt declares a named constant.
type ConstantStmt struct {
	StmtBase
	Name  string
	Value *LiteralExpr
	Slot  int
}

// TypeStmt declares a record type.
type TypeStmt struct {
	StmtBase
	Record *RecordType
}

type AssignStmt struct {
	StmtBase
	Target Expression
	Value  Expression
}

// BlockStmt is a statement sequence, the body of every compound construct.
// It does not introduce a scope.
type BlockStmt struct {
	StmtBase
	Statements []Statement
}

type IfStmt struct {
	StmtBase
	Condition Expression
	Then      *BlockStmt
	Else      *BlockStmt // nil if there is no ELSE branch
}

// CaseLabel matches a single value, or the inclusive range Low..High if High
// is non-nil.
type CaseLabel struct {
	Low  *LiteralExpr
	High *LiteralExpr
}

type CaseBranch struct {
	At     Position
	Labels []*CaseLabel
	Body   *BlockStmt
}

type CaseStmt struct {
	StmtBase
	Selector  Expression
	Branches  []*CaseBranch
	Otherwise *BlockStmt // nil if there is no OTHERWISE branch
}

type WhileStmt struct {
	StmtBase
	Condition Expression
	Body      *BlockStmt
}

type RepeatStmt struct {
	StmtBase
	Body      *BlockStmt
	Condition Expression
}

// ForStmt is a counted loop. Step is nil when no STEP was given.
type ForStmt struct {
	StmtBase
	Counter *VariableExpr
	From    Expression
	To      Expression
	Step    Expression
	Body    *BlockStmt
}

type InputStmt struct {
	StmtBase
	Target Expression
}

type OutputStmt struct {
	StmtBase
	Values []Expression
}

// Parameter is a formal parameter of a procedure or function.
type Parameter struct {
	At    Position
	Name  string
	Type  DataType
	ByRef bool
	Slot  int
}

// RoutineDecl declares a procedure (Returns == nil) or a function. Slots
// describes the routine's frame, parameters first.
type RoutineDecl struct {
	StmtBase
	Name    string
	Params  []*Parameter
	Returns DataType
	Body    *BlockStmt
	Slots   []*FrameSlot
}

func (r *RoutineDecl) IsFunction() bool {
	return r.Returns != nil
}

// Kind returns "PROCEDURE" or "FUNCTION".
func (r *RoutineDecl) Kind() string {
	if r.IsFunction() {
		return "FUNCTION"
	}
	return "PROCEDURE"
}

type CallStmt struct {
	StmtBase
	Call *CallExpr
}

// ReturnStmt returns from a routine. Value is nil for a bare RETURN.
type ReturnStmt struct {
	StmtBase
	Value Expression
}

// FileMode is the access mode of an OPENFILE statement.
type FileMode int

const (
	FileRead FileMode = iota
	FileWrite
	FileAppend
)

func (m FileMode) String() string {
	switch m {
	case FileRead:
		return "READ"
	case FileWrite:
		return "WRITE"
	case FileAppend:
		return "APPEND"
	}
	return "INVALID"
}

type OpenFileStmt struct {
	StmtBase
	File Expression
	Mode FileMode
}

type ReadFileStmt struct {
	StmtBase
	File   Expression
	Target Expression
}

type WriteFileStmt struct {
	StmtBase
	File  Expression
	Value Expression
}

type CloseFileStmt struct {
	StmtBase
	File Expression
}
