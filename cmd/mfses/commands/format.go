package commands

import (
	"fmt"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
)

// Shared output formatting so every command prints runs the same way.

func printRun(run *contracts.PipelineRun) {
	fmt.Println("-----------------------------------------------------------")
	fmt.Printf("  Run       : %s\n", run.ID)
	fmt.Printf("  Trigger   : %s\n", run.Trigger)
	fmt.Printf("  Status    : %s\n", run.Status)
	fmt.Printf("  Selected  : %d\n", run.Selected)
	fmt.Printf("  Collected : %d\n", run.Collected)
	fmt.Printf("  Scored    : %d\n", run.Scored)
	fmt.Printf("  Promoted  : %d | Demoted: %d\n", run.Promoted, run.Demoted)
	fmt.Printf("  API calls : %d (%d errors)\n", run.APICalls, run.APIErrors)
	if run.RetryCount > 0 {
		fmt.Printf("  Retries   : %d\n", run.RetryCount)
	}
	if run.FinishedAt != nil {
		fmt.Printf("  Duration  : %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	if run.ErrorMessage != "" {
		fmt.Printf("  Error     : [%s] %s\n", run.ErrorStep, run.ErrorMessage)
	}
	fmt.Println("-----------------------------------------------------------")
}

func printRunLine(run *contracts.PipelineRun) {
	duration := "-"
	if run.FinishedAt != nil {
		duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
	}
	fmt.Printf("%s  %-12s %-8s sel=%-4d col=%-4d scored=%-4d +%d/-%d  %s\n",
		run.StartedAt.Format("2006-01-02 15:04:05"),
		run.Trigger, run.Status,
		run.Selected, run.Collected, run.Scored,
		run.Promoted, run.Demoted, duration)
}
