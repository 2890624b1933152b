package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akrennmair/pseudo/parser"
)

var BuiltinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the builtin functions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, b := range parser.Builtins() {
			params := make([]string, len(b.Params))
			for idx, p := range b.Params {
				params[idx] = p.Type()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s(%s) RETURNS %s\n", b.Name, strings.Join(params, ", "), b.Returns.Type())
		}
	},
}
