package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/akrennmair/pseudo/interp"
	"github.com/akrennmair/pseudo/pseudo"
)

var (
	inputFile string
	rootDir   string
	seed      int64
	maxDepth  int
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:   "pseudo",
	Short: "pseudo: an interpreter for 9608-style teaching pseudocode",
	Long: `pseudo scans, parses, resolves, type checks and runs pseudocode programs.

Commands:
  run       Run a program
  check     Report every static error without running the program
  tokens    Print the tokens of a program
  ast       Dump the syntax tree of a program
  fmt       Print a program in canonical layout
  builtins  List the builtin functions
`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write the trace output of every phase to stderr")

	RunCmd.Flags().StringVarP(&inputFile, "input", "i", "", "read INPUT values from this file instead of stdin")
	RunCmd.Flags().StringVar(&rootDir, "root", ".", "directory that file names in OPENFILE are relative to")
	RunCmd.Flags().Int64Var(&seed, "seed", 0, "seed for RND and RANDOMBETWEEN (random if unset)")
	RunCmd.Flags().IntVar(&maxDepth, "max-depth", interp.DefaultMaxCallDepth, "maximum depth of nested calls")

	rootCmd.AddCommand(RunCmd, CheckCmd, TokensCmd, AstCmd, FmtCmd, BuiltinsCmd)
}

func readSource(file string) (string, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s failed: %w", file, err)
	}
	return string(source), nil
}

func logOutput() io.Writer {
	if debug {
		return os.Stderr
	}
	return nil
}

// options builds the session options from the command line.
func options(cmd *cobra.Command, name string) (pseudo.Options, func() error, error) {
	opts := pseudo.Options{
		Name:         name,
		Output:       interp.NewWriterOutput(cmd.OutOrStdout()),
		FS:           osfs.New(rootDir),
		MaxCallDepth: maxDepth,
		LogOutput:    logOutput(),
	}

	cleanup := func() error { return nil }
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return opts, nil, fmt.Errorf("opening input %s failed: %w", inputFile, err)
		}
		opts.Input = interp.NewLineInput(f)
		cleanup = f.Close
	} else {
		opts.Input = interp.NewLineInput(cmd.InOrStdin())
	}

	if cmd.Flags().Changed("seed") {
		opts.Rand = rand.New(rand.NewSource(seed))
	} else {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return opts, cleanup, nil
}

// closeInput runs cleanup and reports its error through err unless an
// earlier error is already set.
func closeInput(cleanup func() error, err *error) {
	if cerr := cleanup(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing input failed: %w", cerr)
	}
}

func printDiagnostics(cmd *cobra.Command, s *pseudo.Session) {
	if s.Diagnostics.Len() > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), s.Diagnostics.Format(s.Name()))
	}
}
