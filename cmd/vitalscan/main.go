// Command vitalscan normalizes health risk reports into a canonical shape.
package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/vitalscan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
