package main

import (
	"github.com/spf13/cobra"

	"github.com/akrennmair/pseudo/pseudo"
)

var CheckCmd = &cobra.Command{
	Use:   "check file.pseudo",
	Short: "Report every static error without running the program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}

		s, err := pseudo.Check(source, pseudo.Options{Name: args[0], LogOutput: logOutput()})
		printDiagnostics(cmd, s)
		return err
	},
}
