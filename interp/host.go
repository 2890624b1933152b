package interp

import (
	"bufio"
	"io"
)

// Input is the host capability INPUT statements read from. ReadToken returns
// io.EOF once no more input is available.
type Input interface {
	ReadToken() (string, error)
}

// Output is the host capability OUTPUT statements write to. Every OUTPUT
// statement results in exactly one Append call.
type Output interface {
	Append(text string) error
}

// LineInput reads one token per line from a reader.
type LineInput struct {
	scanner *bufio.Scanner
}

func NewLineInput(r io.Reader) *LineInput {
	return &LineInput{scanner: bufio.NewScanner(r)}
}

func (in *LineInput) ReadToken() (string, error) {
	if in.scanner.Scan() {
		return in.scanner.Text(), nil
	}
	if err := in.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// QueueInput serves a fixed list of tokens.
type QueueInput struct {
	tokens []string
}

func NewQueueInput(tokens ...string) *QueueInput {
	return &QueueInput{tokens: tokens}
}

func (in *QueueInput) ReadToken() (string, error) {
	if len(in.tokens) == 0 {
		return "", io.EOF
	}
	tok := in.tokens[0]
	in.tokens = in.tokens[1:]
	return tok, nil
}

// Remaining returns the number of tokens not read yet.
func (in *QueueInput) Remaining() int {
	return len(in.tokens)
}

// WriterOutput writes every output event as one line.
type WriterOutput struct {
	w io.Writer
}

func NewWriterOutput(w io.Writer) *WriterOutput {
	return &WriterOutput{w: w}
}

func (out *WriterOutput) Append(text string) error {
	_, err := io.WriteString(out.w, text+"\n")
	return err
}

// Recorder collects output events in memory.
type Recorder struct {
	Events []string
}

func (r *Recorder) Append(text string) error {
	r.Events = append(r.Events, text)
	return nil
}
