// Package interp executes type-checked programs. It holds the runtime
// environment, runtime values, the host capabilities for INPUT, OUTPUT and
// file statements, and the builtin functions.
package interp

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"

	"github.com/go-git/go-billy/v5"

	"github.com/akrennmair/pseudo/parser"
)

// DefaultMaxCallDepth limits nested calls unless Config.MaxCallDepth is set.
const DefaultMaxCallDepth = 10000

// Config holds the host capabilities of an interpreter. Nil Input and Output
// behave like an empty input and a discarding output; a nil FS makes every
// OPENFILE fail.
type Config struct {
	Input        Input
	Output       Output
	FS           billy.Filesystem
	Rand         *rand.Rand
	MaxCallDepth int
}

type Interpreter struct {
	logger   *log.Logger
	env      *Environment
	input    Input
	output   Output
	files    *fileTable
	rand     *rand.Rand
	maxDepth int

	frame  FrameID
	depth  int
	result Value
}

// New creates an interpreter that runs programs in env.
func New(env *Environment, cfg Config) *Interpreter {
	in := &Interpreter{
		logger:   log.New(io.Discard, "interp ", log.LstdFlags|log.Lshortfile),
		env:      env,
		input:    cfg.Input,
		output:   cfg.Output,
		files:    newFileTable(cfg.FS),
		rand:     cfg.Rand,
		maxDepth: cfg.MaxCallDepth,
		frame:    Global,
	}
	if in.input == nil {
		in.input = NewQueueInput()
	}
	if in.output == nil {
		in.output = &Recorder{}
	}
	if in.rand == nil {
		in.rand = rand.New(rand.NewSource(1))
	}
	if in.maxDepth <= 0 {
		in.maxDepth = DefaultMaxCallDepth
	}
	return in
}

func (in *Interpreter) SetLogOutput(w io.Writer) {
	in.logger.SetOutput(w)
}

// Run executes prog in the global frame. The first runtime error aborts the
// run and is returned as a *RuntimeError. Files left open are closed.
func (in *Interpreter) Run(prog *parser.Program) (err error) {
	in.frame = Global
	in.depth = 0
	in.env.resize(Global, len(prog.Slots))
	in.initFrame(Global, prog.Slots)

	defer func() {
		if cerr := in.files.closeAll(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	in.logger.Printf("running %s", prog.Name)
	_, err = in.execStatements(prog.Body)
	return err
}

func (in *Interpreter) initFrame(id FrameID, slots []*parser.FrameSlot) {
	for idx, s := range slots {
		if s.Constant != nil {
			in.env.Set(id, idx, s.Constant.Value)
			continue
		}
		in.env.Set(id, idx, ZeroValue(s.Type))
	}
}

// flow says how control leaves a statement.
type flow int

const (
	flowNormal flow = iota
	flowReturn
)

func (in *Interpreter) execStatements(stmts []parser.Statement) (flow, error) {
	for _, stmt := range stmts {
		fl, err := in.exec(stmt)
		if err != nil {
			return fl, withPosition(err, stmt.Pos())
		}
		if fl == flowReturn {
			return fl, nil
		}
	}
	return flowNormal, nil
}

func (in *Interpreter) exec(stmt parser.Statement) (flow, error) {
	switch s := stmt.(type) {
	case *parser.DeclareStmt:
		in.env.Set(in.frame, s.Slot, ZeroValue(s.DeclType))
		return flowNormal, nil
	case *parser.ConstantStmt, *parser.TypeStmt, *parser.RoutineDecl:
		return flowNormal, nil
	case *parser.AssignStmt:
		return flowNormal, in.execAssign(s)
	case *parser.BlockStmt:
		return in.execStatements(s.Statements)
	case *parser.IfStmt:
		cond, err := in.evalBool(s.Condition)
		if err != nil {
			return flowNormal, err
		}
		if cond {
			return in.execStatements(s.Then.Statements)
		}
		if s.Else != nil {
			return in.execStatements(s.Else.Statements)
		}
		return flowNormal, nil
	case *parser.CaseStmt:
		return in.execCase(s)
	case *parser.WhileStmt:
		for {
			cond, err := in.evalBool(s.Condition)
			if err != nil || !cond {
				return flowNormal, err
			}
			if fl, err := in.execStatements(s.Body.Statements); err != nil || fl == flowReturn {
				return fl, err
			}
		}
	case *parser.RepeatStmt:
		for {
			if fl, err := in.execStatements(s.Body.Statements); err != nil || fl == flowReturn {
				return fl, err
			}
			cond, err := in.evalBool(s.Condition)
			if err != nil || cond {
				return flowNormal, err
			}
		}
	case *parser.ForStmt:
		return in.execFor(s)
	case *parser.InputStmt:
		return flowNormal, in.execInput(s)
	case *parser.OutputStmt:
		return flowNormal, in.execOutput(s)
	case *parser.CallStmt:
		_, err := in.call(s.Call)
		return flowNormal, err
	case *parser.ReturnStmt:
		in.result = nil
		if s.Value != nil {
			v, err := in.eval(s.Value)
			if err != nil {
				return flowNormal, err
			}
			in.result = v
		}
		return flowReturn, nil
	case *parser.OpenFileStmt:
		name, err := in.evalString(s.File)
		if err != nil {
			return flowNormal, err
		}
		return flowNormal, in.files.open(name, s.Mode)
	case *parser.ReadFileStmt:
		return flowNormal, in.execReadFile(s)
	case *parser.WriteFileStmt:
		name, err := in.evalString(s.File)
		if err != nil {
			return flowNormal, err
		}
		v, err := in.eval(s.Value)
		if err != nil {
			return flowNormal, err
		}
		return flowNormal, in.files.writeLine(name, Format(v))
	case *parser.CloseFileStmt:
		name, err := in.evalString(s.File)
		if err != nil {
			return flowNormal, err
		}
		return flowNormal, in.files.close(name)
	}
	panic(fmt.Sprintf("interp: unhandled statement %T", stmt))
}

func (in *Interpreter) execAssign(s *parser.AssignStmt) error {
	v, err := in.eval(s.Value)
	if err != nil {
		return err
	}
	ref, err := in.locate(s.Target)
	if err != nil {
		return err
	}
	store(ref, convert(v, s.Target.Type()))
	return nil
}

func (in *Interpreter) execCase(s *parser.CaseStmt) (flow, error) {
	sel, err := in.eval(s.Selector)
	if err != nil {
		return flowNormal, err
	}
	for _, b := range s.Branches {
		for _, l := range b.Labels {
			if caseMatches(sel, l) {
				return in.execStatements(b.Body.Statements)
			}
		}
	}
	if s.Otherwise != nil {
		return in.execStatements(s.Otherwise.Statements)
	}
	return flowNormal, nil
}

func caseMatches(sel Value, l *parser.CaseLabel) bool {
	if l.High == nil {
		c, ok := compare(sel, l.Low.Value)
		return ok && c == 0
	}
	lo, ok1 := compare(sel, l.Low.Value)
	hi, ok2 := compare(sel, l.High.Value)
	return ok1 && ok2 && lo >= 0 && hi <= 0
}

func (in *Interpreter) execFor(s *parser.ForStmt) (flow, error) {
	from, err := in.evalInt(s.From)
	if err != nil {
		return flowNormal, err
	}
	to, err := in.evalInt(s.To)
	if err != nil {
		return flowNormal, err
	}
	step := int64(1)
	if s.Step != nil {
		if step, err = in.evalInt(s.Step); err != nil {
			return flowNormal, err
		}
	}
	counter, err := in.locate(s.Counter)
	if err != nil {
		return flowNormal, err
	}

	if step == 0 || (step > 0 && from > to) || (step < 0 && from < to) {
		return flowNormal, nil
	}
	for i := from; ; i += step {
		counter.Store(i)
		if fl, err := in.execStatements(s.Body.Statements); err != nil || fl == flowReturn {
			return fl, err
		}
		if !canStep(i, to, step) {
			return flowNormal, nil
		}
	}
}

// canStep reports whether i+step is still within the loop's range. The
// distances are computed unsigned so that nothing wraps near the int64 limits.
func canStep(i, to, step int64) bool {
	if step > 0 {
		return uint64(to)-uint64(i) >= uint64(step)
	}
	return uint64(i)-uint64(to) >= -uint64(step)
}

func (in *Interpreter) execInput(s *parser.InputStmt) error {
	text, err := in.input.ReadToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return runtimeErrorf(InputExhausted, "no more input available")
		}
		return wrapError(HostError, err, "reading input")
	}
	v, err := Parse(text, s.Target.Type())
	if err != nil {
		return runtimeErrorf(InputParse, "cannot read %q as %s", text, s.Target.Type().Type())
	}
	ref, err := in.locate(s.Target)
	if err != nil {
		return err
	}
	ref.Store(v)
	return nil
}

func (in *Interpreter) execOutput(s *parser.OutputStmt) error {
	var text string
	for _, e := range s.Values {
		v, err := in.eval(e)
		if err != nil {
			return err
		}
		text += Format(v)
	}
	if err := in.output.Append(text); err != nil {
		return wrapError(HostError, err, "writing output")
	}
	return nil
}

func (in *Interpreter) execReadFile(s *parser.ReadFileStmt) error {
	name, err := in.evalString(s.File)
	if err != nil {
		return err
	}
	line, err := in.files.readLine(name)
	if err != nil {
		return err
	}
	v, err := Parse(line, s.Target.Type())
	if err != nil {
		return runtimeErrorf(FileError, "cannot read %q from %q as %s", line, name, s.Target.Type().Type())
	}
	ref, err := in.locate(s.Target)
	if err != nil {
		return err
	}
	ref.Store(v)
	return nil
}

// call invokes a user-defined routine or a builtin. The callee's frame is
// linked to the frame of the scope the callee was declared in and is popped
// on every exit path.
func (in *Interpreter) call(call *parser.CallExpr) (Value, error) {
	if call.Builtin != nil {
		return in.callBuiltin(call)
	}

	decl := call.Callee
	if in.depth >= in.maxDepth {
		return nil, runtimeErrorf(StackOverflow, "call depth limit of %d exceeded calling %s", in.maxDepth, decl.Name)
	}

	args := make([]Value, len(decl.Params))
	refs := make([]Ref, len(decl.Params))
	for idx, p := range decl.Params {
		var err error
		if p.ByRef {
			refs[idx], err = in.locate(call.Args[idx])
		} else {
			var v Value
			v, err = in.eval(call.Args[idx])
			args[idx] = clone(convert(v, p.Type))
		}
		if err != nil {
			return nil, err
		}
	}

	parent := in.env.Lookup(in.frame, call.Depth)
	id := in.env.Push(parent, len(decl.Slots))
	defer in.env.Pop(id)

	caller := in.frame
	in.frame = id
	in.depth++
	defer func() {
		in.frame = caller
		in.depth--
	}()

	in.initFrame(id, decl.Slots)
	for idx, p := range decl.Params {
		if p.ByRef {
			in.env.Bind(id, p.Slot, refs[idx])
		} else {
			in.env.Set(id, p.Slot, args[idx])
		}
	}

	in.logger.Printf("calling %s %s in frame %d", decl.Kind(), decl.Name, id)
	fl, err := in.execStatements(decl.Body.Statements)
	if err != nil {
		return nil, err
	}
	if !decl.IsFunction() {
		return nil, nil
	}
	if fl != flowReturn {
		return nil, &RuntimeError{
			Kind:    MissingReturn,
			Message: fmt.Sprintf("function %s ended without RETURN", decl.Name),
			Line:    decl.At.Line,
			Column:  decl.At.Column,
		}
	}
	v := convert(in.result, decl.Returns)
	in.result = nil
	return v, nil
}

func (in *Interpreter) callBuiltin(call *parser.CallExpr) (Value, error) {
	args := make([]Value, len(call.Args))
	for idx, arg := range call.Args {
		v, err := in.eval(arg)
		if err != nil {
			return nil, err
		}
		args[idx] = convert(v, call.Builtin.Params[idx])
	}
	fn, ok := builtinFuncs[call.Builtin.Name]
	if !ok {
		panic(fmt.Sprintf("interp: builtin %s has no implementation", call.Builtin.Name))
	}
	return fn(in, args)
}
