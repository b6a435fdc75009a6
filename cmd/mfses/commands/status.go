package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seesaw/mfses/internal/contracts"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Long: `One-shot system overview: universe size, state distribution and
the most recent pipeline runs.

Example:
  go run ./cmd/mfses status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, closeApp, err := buildApp()
	if err != nil {
		return err
	}
	defer closeApp()

	ctx := cmd.Context()

	fmt.Println("=== MFSES Status ===")

	total, err := a.instruments.Count(ctx)
	if err != nil {
		return fmt.Errorf("count instruments: %w", err)
	}
	fmt.Printf("Active instruments: %d\n", total)

	counts, err := a.states.CountByState(ctx)
	if err != nil {
		return fmt.Errorf("count states: %w", err)
	}
	fmt.Println("\nStates:")
	for _, state := range []contracts.State{
		contracts.StateHot, contracts.StateWarm, contracts.StateCold, contracts.StateFrozen,
	} {
		fmt.Printf("  %-7s %d (refresh every %s)\n", state, counts[state], state.Interval())
	}

	runs, err := a.runs.ListRecent(ctx, 5)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	fmt.Println("\nRecent runs:")
	if len(runs) == 0 {
		fmt.Println("  none")
		return nil
	}
	for _, run := range runs {
		fmt.Print("  ")
		printRunLine(run)
	}
	return nil
}
