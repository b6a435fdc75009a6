package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Database maintenance",
	Long: `Runs database maintenance tasks.

Example:
  go run ./cmd/mfses cleanup retention`,
}

var cleanupRetentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Prune history past the retention horizons",
	Long: `Deletes score snapshots and pipeline runs older than their
configured retention (RETENTION_SNAPSHOT_DAYS / RETENTION_RUN_DAYS).
The scheduler runs this daily; the command exists for manual catch-up.

Example:
  go run ./cmd/mfses cleanup retention`,
	RunE: runCleanupRetention,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.AddCommand(cleanupRetentionCmd)
}

func runCleanupRetention(cmd *cobra.Command, args []string) error {
	a, closeApp, err := buildApp()
	if err != nil {
		return err
	}
	defer closeApp()

	ctx := cmd.Context()
	now := time.Now()

	fmt.Println("=== MFSES Retention Cleanup ===")

	snapshots, err := a.scores.PruneSnapshots(ctx, now.AddDate(0, 0, -a.cfg.Pipeline.SnapshotRetentionDays))
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	fmt.Printf("Score snapshots pruned: %d (older than %d days)\n",
		snapshots, a.cfg.Pipeline.SnapshotRetentionDays)

	runs, err := a.runs.PruneRuns(ctx, now.AddDate(0, 0, -a.cfg.Pipeline.RunRetentionDays))
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	fmt.Printf("Pipeline runs pruned:   %d (older than %d days)\n",
		runs, a.cfg.Pipeline.RunRetentionDays)

	return nil
}
