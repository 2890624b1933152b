// Package pseudo drives a source text through every phase of the
// interpreter: scanning and parsing, resolution, type checking and
// execution. A Session carries the diagnostics and the global frame from one
// phase to the next; a phase only runs if no earlier phase reported an error.
package pseudo

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"

	"github.com/go-git/go-billy/v5"

	"github.com/akrennmair/pseudo/checker"
	"github.com/akrennmair/pseudo/diag"
	"github.com/akrennmair/pseudo/interp"
	"github.com/akrennmair/pseudo/parser"
	"github.com/akrennmair/pseudo/resolver"
)

// ErrStatic is returned when a static phase reported errors. The details are
// in the session's diagnostics.
var ErrStatic = errors.New("program has errors")

// Options configures a session. Everything is optional: a session without
// Input behaves as if the input were empty, one without Output discards what
// the program writes, and one without FS fails every OPENFILE.
type Options struct {
	Name         string
	Input        interp.Input
	Output       interp.Output
	FS           billy.Filesystem
	Rand         *rand.Rand
	MaxCallDepth int

	// LogOutput receives the trace output of every phase.
	LogOutput io.Writer
}

type Session struct {
	Diagnostics *diag.List
	Env         *interp.Environment

	opts   Options
	logger *log.Logger
}

func NewSession(opts Options) *Session {
	if opts.Name == "" {
		opts.Name = "main.pseudo"
	}
	s := &Session{
		Diagnostics: diag.New(),
		Env:         interp.NewEnvironment(0),
		opts:        opts,
		logger:      log.New(io.Discard, "pseudo ", log.LstdFlags|log.Lshortfile),
	}
	if opts.LogOutput != nil {
		s.logger.SetOutput(opts.LogOutput)
	}
	return s
}

func (s *Session) Name() string {
	return s.opts.Name
}

// Parse runs the scanner and the parser.
func (s *Session) Parse(source string) (*parser.Program, error) {
	p := parser.NewParser(s.opts.Name, source, s.Diagnostics)
	if s.opts.LogOutput != nil {
		p.SetLogOutput(s.opts.LogOutput)
	}
	prog := p.Parse()
	if err := s.stop(diag.Lexical, diag.Syntax); err != nil {
		return nil, err
	}
	return prog, nil
}

// Compile runs every static phase and returns the annotated program, or
// ErrStatic if one of them reported an error.
func (s *Session) Compile(source string) (*parser.Program, error) {
	prog, err := s.Parse(source)
	if err != nil {
		return nil, err
	}

	r := resolver.New(s.Diagnostics)
	if s.opts.LogOutput != nil {
		r.SetLogOutput(s.opts.LogOutput)
	}
	r.Resolve(prog)
	if err := s.stop(diag.Resolution); err != nil {
		return nil, err
	}

	c := checker.New(s.Diagnostics)
	if s.opts.LogOutput != nil {
		c.SetLogOutput(s.opts.LogOutput)
	}
	c.Check(prog)
	if err := s.stop(diag.Type); err != nil {
		return nil, err
	}

	return prog, nil
}

// Execute runs a compiled program in the session's global frame. A runtime
// error is recorded as a diagnostic and returned as *interp.RuntimeError.
func (s *Session) Execute(prog *parser.Program) error {
	in := interp.New(s.Env, interp.Config{
		Input:        s.opts.Input,
		Output:       s.opts.Output,
		FS:           s.opts.FS,
		Rand:         s.opts.Rand,
		MaxCallDepth: s.opts.MaxCallDepth,
	})
	if s.opts.LogOutput != nil {
		in.SetLogOutput(s.opts.LogOutput)
	}

	err := in.Run(prog)
	var rerr *interp.RuntimeError
	if errors.As(err, &rerr) {
		pos := rerr.Pos()
		s.Diagnostics.Errorf(diag.Runtime, pos.Line, pos.Column, "%s: %s", rerr.Kind, rerr.Message)
	} else if err != nil {
		s.Diagnostics.Errorf(diag.Runtime, 0, 0, "%v", err)
	}
	return err
}

// Run compiles and executes source.
func (s *Session) Run(source string) error {
	prog, err := s.Compile(source)
	if err != nil {
		return err
	}
	return s.Execute(prog)
}

func (s *Session) stop(phases ...diag.Phase) error {
	for _, phase := range phases {
		if s.Diagnostics.HasPhaseErrors(phase) {
			s.logger.Printf("%s: stopping after %s errors", s.opts.Name, phase)
			return fmt.Errorf("%s: %w", s.opts.Name, ErrStatic)
		}
	}
	return nil
}

// Check runs the static phases over source and returns the session holding
// their diagnostics.
func Check(source string, opts Options) (*Session, error) {
	s := NewSession(opts)
	_, err := s.Compile(source)
	return s, err
}

// Run compiles and executes source in a fresh session.
func Run(source string, opts Options) (*Session, error) {
	s := NewSession(opts)
	return s, s.Run(source)
}
