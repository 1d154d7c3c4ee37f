package main

import (
	"encoding/json"
	"fmt"

	"github.com/dgallion1/seolens/internal/highlight"
)

// Run executes the highlight command.
func (c *HighlightCmd) Run(deps *Dependencies) error {
	code, err := readInput(deps, c.File)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(highlight.Tokenize(code))
	}
	if c.NoColor {
		_, err := fmt.Fprintln(deps.Stdout, highlight.Prepare(code))
		return err
	}
	if err := highlight.WriteANSI(deps.Stdout, highlight.Tokenize(code)); err != nil {
		return err
	}
	_, err = fmt.Fprintln(deps.Stdout)
	return err
}
