package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "mfses",
	Short: "SeeSaw MFSES - multi-factor stock evaluation system",
	Long: `SeeSaw MFSES Unified CLI

Adaptive market data pipeline: Markov state machine decides how often
each instrument refreshes, the collector pulls Polygon data within the
API budget, and the scoring engine turns it into factor scores.

Usage:
  go run ./cmd/mfses [command]

Examples:
  go run ./cmd/mfses api
  go run ./cmd/mfses scheduler start
  go run ./cmd/mfses pipeline run
  go run ./cmd/mfses bootstrap --dry-run
  go run ./cmd/mfses status`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
