// Command eudrctl drives the compliance pipeline from the terminal.
package main

import (
	"fmt"
	"os"

	"eudrgate/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
