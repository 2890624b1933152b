package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := Execute()
	return stdout.String(), stderr.String(), err
}

func writeProgram(t *testing.T, code string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "prog.pseudo")
	require.NoError(t, os.WriteFile(file, []byte(code), 0644))
	return file
}

func TestRunCommand(t *testing.T) {
	file := writeProgram(t, "DECLARE A : INTEGER\nDECLARE B : INTEGER\nINPUT A\nINPUT B\nOUTPUT A + B")

	stdout, _, err := execute(t, "2\n3\n", "run", "--seed", "1", file)
	require.NoError(t, err)
	assert.Equal(t, "5\n", stdout)
}

func TestRunCommandWithInputFile(t *testing.T) {
	file := writeProgram(t, "DECLARE A : INTEGER\nINPUT A\nOUTPUT A * 2")
	input := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("21\n"), 0644))
	t.Cleanup(func() { inputFile = "" })

	stdout, _, err := execute(t, "", "run", "--input", input, file)
	require.NoError(t, err)
	assert.Equal(t, "42\n", stdout)
}

func TestCloseInput(t *testing.T) {
	errClose := errors.New("close failed")
	errRun := errors.New("run failed")

	tests := []struct {
		name    string
		closeFn func() error
		err     error
		want    error
	}{
		{"no errors", func() error { return nil }, nil, nil},
		{"close error is reported", func() error { return errClose }, nil, errClose},
		{"earlier error wins", func() error { return errClose }, errRun, errRun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.err
			closeInput(tt.closeFn, &err)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCheckCommandReportsErrors(t *testing.T) {
	file := writeProgram(t, "OUTPUT Missing")

	_, stderr, err := execute(t, "", "check", file)
	require.Error(t, err)
	assert.Contains(t, stderr, "undeclared identifier Missing")
}

func TestFmtCommand(t *testing.T) {
	file := writeProgram(t, "if x>1 then\noutput x\nendif")

	stdout, _, err := execute(t, "", "fmt", file)
	require.NoError(t, err)
	assert.Equal(t, "IF x > 1 THEN\n    OUTPUT x\nENDIF\n", stdout)
}

func TestBuiltinsCommand(t *testing.T) {
	stdout, _, err := execute(t, "", "builtins")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	assert.Len(t, lines, 18)
	assert.Contains(t, lines, "MID(STRING, INTEGER, INTEGER) RETURNS STRING")
	assert.Contains(t, lines, "RND() RETURNS REAL")
	assert.Contains(t, lines, "EOF(STRING) RETURNS BOOLEAN")
}
