package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akrennmair/pseudo/pseudo"
	"github.com/akrennmair/pseudo/pseudofmt"
)

var outputFile string

var FmtCmd = &cobra.Command{
	Use:   "fmt [-o output.pseudo] file.pseudo",
	Short: "Print a program in canonical layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}

		s := pseudo.NewSession(pseudo.Options{Name: args[0], LogOutput: logOutput()})
		prog, err := s.Parse(source)
		printDiagnostics(cmd, s)
		if err != nil {
			return err
		}

		out, err := pseudofmt.Format(prog)
		if err != nil {
			return err
		}

		if outputFile == "" {
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
			return fmt.Errorf("couldn't write to output file %s: %w", outputFile, err)
		}
		return nil
	},
}

func init() {
	FmtCmd.Flags().StringVarP(&outputFile, "output", "o", "", "if non-empty, where the output will be written to")
}
