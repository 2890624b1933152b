package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akrennmair/pseudo/diag"
	"github.com/akrennmair/pseudo/parser"
)

var TokensCmd = &cobra.Command{
	Use:   "tokens file.pseudo",
	Short: "Print the tokens of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}

		diags := diag.New()
		for _, tok := range parser.Tokens(args[0], source, diags) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%q\n", tok.Position(), tok.Kind, tok.Text)
		}
		if diags.Len() > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), diags.Format(args[0]))
		}
		return diags.Err()
	},
}
