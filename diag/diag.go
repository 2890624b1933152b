// Package diag holds the structured diagnostics every static phase of the
// interpreter reports into.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Phase identifies the pipeline phase that produced a diagnostic.
type Phase int

const (
	Lexical Phase = iota
	Syntax
	Resolution
	Type
	Runtime
)

func (p Phase) String() string {
	switch p {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Resolution:
		return "resolution"
	case Type:
		return "type"
	case Runtime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a single positioned message.
type Diagnostic struct {
	Phase    Phase
	Severity Severity
	Message  string
	Line     int
	Column   int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s[%d:%d]: %s", d.Phase, d.Severity, d.Line, d.Column, d.Message)
}

// List accumulates diagnostics across phases. The zero value is ready to use.
type List struct {
	items []Diagnostic
}

// New creates an empty List.
func New() *List {
	return &List{}
}

// Errorf adds an error diagnostic.
func (l *List) Errorf(phase Phase, line, col int, format string, args ...interface{}) {
	l.add(phase, Error, line, col, fmt.Sprintf(format, args...))
}

// Warningf adds a warning diagnostic.
func (l *List) Warningf(phase Phase, line, col int, format string, args ...interface{}) {
	l.add(phase, Warning, line, col, fmt.Sprintf(format, args...))
}

func (l *List) add(phase Phase, sev Severity, line, col int, msg string) {
	l.items = append(l.items, Diagnostic{
		Phase:    phase,
		Severity: sev,
		Message:  msg,
		Line:     line,
		Column:   col,
	})
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (l *List) HasErrors() bool {
	return l.ErrorCount() > 0
}

// HasPhaseErrors reports whether the given phase recorded an error.
func (l *List) HasPhaseErrors(phase Phase) bool {
	for _, d := range l.items {
		if d.Phase == phase && d.Severity == Error {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity diagnostics.
func (l *List) ErrorCount() int {
	n := 0
	for _, d := range l.items {
		if d.Severity == Error {
			n++
		}
	}
	return n
}

// All returns every diagnostic in the order it was reported.
func (l *List) All() []Diagnostic {
	return l.items
}

// Phase returns the diagnostics reported by one phase.
func (l *List) Phase(phase Phase) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Phase == phase {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the total number of diagnostics.
func (l *List) Len() int {
	return len(l.items)
}

// Format renders the diagnostics one per line, prefixed with name.
//
//	error[prog.pseudo:3:10]: undeclared identifier "x" (resolution)
func (l *List) Format(name string) string {
	var buf strings.Builder
	for i, d := range l.items {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "%s[%s:%d:%d]: %s (%s)", d.Severity, name, d.Line, d.Column, d.Message, d.Phase)
	}
	return buf.String()
}

// Err returns nil if no errors were recorded, otherwise an error joining all
// error-severity diagnostics.
func (l *List) Err() error {
	var errs []error
	for _, d := range l.items {
		if d.Severity == Error {
			errs = append(errs, errors.New(d.String()))
		}
	}
	return errors.Join(errs...)
}
