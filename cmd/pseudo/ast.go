package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/akrennmair/pseudo/pseudo"
)

var resolved bool

var AstCmd = &cobra.Command{
	Use:   "ast file.pseudo",
	Short: "Dump the syntax tree of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}

		s := pseudo.NewSession(pseudo.Options{Name: args[0], LogOutput: logOutput()})
		compile := s.Parse
		if resolved {
			compile = s.Compile
		}
		prog, err := compile(source)
		printDiagnostics(cmd, s)
		if err != nil {
			return err
		}

		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true}
		cfg.Fdump(cmd.OutOrStdout(), prog)
		return nil
	},
}

func init() {
	AstCmd.Flags().BoolVar(&resolved, "resolved", false, "dump the tree after resolution and type checking")
}
