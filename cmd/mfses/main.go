package main

import (
	"os"

	"github.com/seesaw/mfses/cmd/mfses/commands"
)

// Unified CLI entry point: go run ./cmd/mfses [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
