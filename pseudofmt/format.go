// Package pseudofmt renders a parsed program back to canonical pseudocode
// source: upper-case keywords, one statement per line and four spaces of
// indentation per nesting level.
package pseudofmt

import (
	"bytes"
	"fmt"

	"github.com/akrennmair/pseudo/parser"
)

func Format(prog *parser.Program) (string, error) {
	var buf bytes.Buffer

	if err := formatTemplate.ExecuteTemplate(&buf, "program", prog); err != nil {
		return "", fmt.Errorf("failed to format %s: %w", prog.Name, err)
	}

	return buf.String(), nil
}
