package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seesaw/mfses/internal/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Pipeline operations",
	Long: `Run or inspect pipeline cycles.

Example:
  go run ./cmd/mfses pipeline run
  go run ./cmd/mfses pipeline run --force-all
  go run ./cmd/mfses pipeline status`,
}

var pipelineRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one pipeline cycle and exit",
	RunE:  runPipelineOnce,
}

var pipelineStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent pipeline runs",
	RunE:  runPipelineStatus,
}

var (
	pipelineForceAll    bool
	pipelineStatusLimit int
)

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineRunCmd)
	pipelineCmd.AddCommand(pipelineStatusCmd)

	pipelineRunCmd.Flags().BoolVar(&pipelineForceAll, "force-all", false, "ignore due times and refresh the whole active universe")
	pipelineStatusCmd.Flags().IntVar(&pipelineStatusLimit, "limit", 10, "number of runs to show")
}

func runPipelineOnce(cmd *cobra.Command, args []string) error {
	a, closeApp, err := buildApp()
	if err != nil {
		return err
	}
	defer closeApp()

	trigger := pipeline.TriggerManual
	if pipelineForceAll {
		trigger = pipeline.TriggerFullRefresh
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Pipeline.CycleTimeout)
	defer cancel()

	fmt.Println("=== MFSES Pipeline Run ===")
	run, err := a.orchestrator.Run(ctx, trigger, pipelineForceAll)
	if err != nil {
		return err
	}

	printRun(run)
	return nil
}

func runPipelineStatus(cmd *cobra.Command, args []string) error {
	a, closeApp, err := buildApp()
	if err != nil {
		return err
	}
	defer closeApp()

	runs, err := a.runs.ListRecent(cmd.Context(), pipelineStatusLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No pipeline runs recorded yet")
		return nil
	}

	for _, run := range runs {
		printRunLine(run)
	}
	return nil
}
