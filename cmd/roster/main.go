// Command roster is the engine's CLI entrypoint: it builds a problem
// (either a synthetic demo roster or a JSON-encoded one from disk), runs
// the chosen solver strategy, and renders the result to the terminal or
// to a JSON file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "roster: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "roster",
		Short: "PICU duty roster engine",
		Long:  "Solve six-month paediatric ICU duty rosters against statutory rest rules and specialty coverage.",
	}

	root.AddCommand(newSolveCommand())
	root.AddCommand(newDemoCommand())
	return root
}
