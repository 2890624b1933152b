package interp

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/akrennmair/pseudo/parser"
)

type openFile struct {
	mode   parser.FileMode
	file   billy.File
	reader *bufio.Reader
}

// fileTable tracks the files a program has opened, keyed by file name.
type fileTable struct {
	fs    billy.Filesystem
	files map[string]*openFile
}

func newFileTable(fs billy.Filesystem) *fileTable {
	return &fileTable{fs: fs, files: map[string]*openFile{}}
}

func (t *fileTable) open(name string, mode parser.FileMode) error {
	if t.fs == nil {
		return runtimeErrorf(FileError, "cannot open %q: no filesystem available", name)
	}
	if _, ok := t.files[name]; ok {
		return runtimeErrorf(FileError, "file %q is already open", name)
	}

	var (
		f   billy.File
		err error
	)
	switch mode {
	case parser.FileRead:
		f, err = t.fs.Open(name)
	case parser.FileWrite:
		f, err = t.fs.Create(name)
	case parser.FileAppend:
		f, err = t.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	}
	if err != nil {
		return wrapError(FileError, err, "cannot open %q for %s", name, mode)
	}

	of := &openFile{mode: mode, file: f}
	if mode == parser.FileRead {
		of.reader = bufio.NewReader(f)
	}
	t.files[name] = of
	return nil
}

func (t *fileTable) get(name string, modes ...parser.FileMode) (*openFile, error) {
	of, ok := t.files[name]
	if !ok {
		return nil, runtimeErrorf(FileError, "file %q is not open", name)
	}
	for _, m := range modes {
		if of.mode == m {
			return of, nil
		}
	}
	return nil, runtimeErrorf(FileError, "file %q is open for %s", name, of.mode)
}

// readLine returns the next line of a file opened for READ, without the line
// terminator.
func (t *fileTable) readLine(name string) (string, error) {
	of, err := t.get(name, parser.FileRead)
	if err != nil {
		return "", err
	}
	line, err := of.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", runtimeErrorf(FileError, "read past end of file %q", name)
		}
		return "", wrapError(FileError, err, "cannot read %q", name)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *fileTable) writeLine(name, text string) error {
	of, err := t.get(name, parser.FileWrite, parser.FileAppend)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(of.file, text+"\n"); err != nil {
		return wrapError(FileError, err, "cannot write %q", name)
	}
	return nil
}

func (t *fileTable) eof(name string) (bool, error) {
	of, err := t.get(name, parser.FileRead)
	if err != nil {
		return false, err
	}
	if _, err := of.reader.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, wrapError(FileError, err, "cannot read %q", name)
	}
	return false, nil
}

func (t *fileTable) close(name string) error {
	of, ok := t.files[name]
	if !ok {
		return runtimeErrorf(FileError, "file %q is not open", name)
	}
	delete(t.files, name)
	if err := of.file.Close(); err != nil {
		return wrapError(FileError, err, "cannot close %q", name)
	}
	return nil
}

// closeAll closes every file still open at the end of a run.
func (t *fileTable) closeAll() error {
	names := make([]string, 0, len(t.files))
	for name := range t.files {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := t.close(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
