package main

import (
	"github.com/spf13/cobra"

	"github.com/akrennmair/pseudo/pseudo"
)

var RunCmd = &cobra.Command{
	Use:   "run file.pseudo",
	Short: "Run a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}

		opts, cleanup, err := options(cmd, args[0])
		if err != nil {
			return err
		}
		defer closeInput(cleanup, &err)

		var s *pseudo.Session
		s, err = pseudo.Run(source, opts)
		printDiagnostics(cmd, s)
		return err
	},
}
