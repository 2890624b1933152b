package interp

import (
	"fmt"

	"github.com/akrennmair/pseudo/parser"
)

// ErrorKind classifies runtime errors.
type ErrorKind int

const (
	DivisionByZero ErrorKind = iota
	IndexOutOfBounds
	InputParse
	InputExhausted
	MissingReturn
	StackOverflow
	FileError
	BuiltinError
	HostError
)

var errorKindNames = map[ErrorKind]string{
	DivisionByZero:   "DivisionByZero",
	IndexOutOfBounds: "IndexOutOfBounds",
	InputParse:       "InputParse",
	InputExhausted:   "InputExhausted",
	MissingReturn:    "MissingReturn",
	StackOverflow:    "StackOverflow",
	FileError:        "File",
	BuiltinError:     "Builtin",
	HostError:        "Host",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// RuntimeError aborts a run. Line and Column locate the statement that was
// executing when the error occurred.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
	Err     error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d:%d: runtime error (%s): %s", e.Line, e.Column, e.Kind, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Pos returns the position of the failing statement.
func (e *RuntimeError) Pos() parser.Position {
	return parser.Position{Line: e.Line, Column: e.Column}
}

func runtimeErrorf(kind ErrorKind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapError creates a runtime error that wraps a host error.
func wrapError(kind ErrorKind, err error, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...) + ": " + err.Error(), Err: err}
}

// withPosition fills in the position of err if it is a runtime error that has none
// yet; the innermost statement wins.
func withPosition(err error, pos parser.Position) error {
	if rerr, ok := err.(*RuntimeError); ok && rerr.Line == 0 {
		rerr.Line = pos.Line
		rerr.Column = pos.Column
	}
	return err
}
