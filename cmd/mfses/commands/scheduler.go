package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seesaw/mfses/internal/scheduler"
	"github.com/seesaw/mfses/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduled pipeline operation",
	Long: `Runs the cron-driven pipeline.

Jobs:
  pipeline_market_cycle  - cycle every 5 min during US market hours
  pipeline_off_hours     - hourly cycle outside market hours
  pipeline_full_refresh  - daily whole-universe refresh
  retention              - daily snapshot and run pruning
  cache_cleanup          - expired response cache eviction

Example:
  go run ./cmd/mfses scheduler start
  go run ./cmd/mfses scheduler list
  go run ./cmd/mfses scheduler run retention`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler and block until interrupted",
	RunE:  runSchedulerStart,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the jobs and their schedules",
	RunE:  runSchedulerList,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job]",
	Short: "Run one job immediately and exit",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRunOnce,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildJobs(a *app) []scheduler.Job {
	return []scheduler.Job{
		jobs.NewMarketCycleJob(a.orchestrator, a.cfg, a.logger),
		jobs.NewOffHoursCycleJob(a.orchestrator, a.cfg, a.logger),
		jobs.NewFullRefreshJob(a.orchestrator, a.cfg, a.logger),
		jobs.NewRetentionJob(a.scores, a.runs, a.cfg, a.logger),
		jobs.NewCacheCleanupJob(a.cache, a.cfg, a.logger),
	}
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	a, closeApp, err := buildApp()
	if err != nil {
		return err
	}
	defer closeApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, a.logger)
	for _, job := range buildJobs(a) {
		if err := sched.AddJob(job); err != nil {
			return err
		}
	}

	sched.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	a.logger.WithField("signal", sig.String()).Info("Shutdown signal received")

	cancel()
	sched.Stop()
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	a, closeApp, err := buildApp()
	if err != nil {
		return err
	}
	defer closeApp()

	fmt.Println("Scheduled jobs:")
	for _, job := range buildJobs(a) {
		fmt.Printf("  %-24s %s\n", job.Name(), job.Schedule())
	}
	return nil
}

func runSchedulerRunOnce(cmd *cobra.Command, args []string) error {
	a, closeApp, err := buildApp()
	if err != nil {
		return err
	}
	defer closeApp()

	name := args[0]
	for _, job := range buildJobs(a) {
		if job.Name() != name {
			continue
		}
		fmt.Printf("Running job %s...\n", name)
		if err := job.Run(cmd.Context()); err != nil {
			return fmt.Errorf("job %s: %w", name, err)
		}
		fmt.Println("Done")
		return nil
	}
	return fmt.Errorf("unknown job %q", name)
}
