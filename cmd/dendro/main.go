// ABOUTME: Entry point for the dendro binary.
// ABOUTME: Executes the root Cobra command and prints any error hints.
package main

import (
	"fmt"
	"os"

	"github.com/2389-research/dendro/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
