// ./main.go
package main

import (
	"github.com/mohdasti/xr-adaptive-modality-2025-sub003/cmd"
)

// main is the entry point for the gazesim CLI.
func main() {
	// Execute handles command-line parsing, configuration, and execution.
	cmd.Execute()
}
