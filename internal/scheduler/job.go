package scheduler

import (
	"context"
	"time"
)

// Job is one scheduled unit of work.
// SSOT: the job interface is defined only here.
type Job interface {
	// Name identifies the job in logs and history.
	Name() string

	// Schedule is a cron expression with a seconds field,
	// e.g. "0 */5 * * * *" for every five minutes.
	Schedule() string

	// Run executes the job once. The scheduler marks ctx with the
	// attempt number; see AttemptFrom.
	Run(ctx context.Context) error
}

type attemptKey struct{}

// WithAttempt marks ctx with the 1-based attempt number of this
// execution.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attempt)
}

// AttemptFrom returns the attempt number carried by ctx, defaulting
// to 1 for contexts the scheduler did not mark.
func AttemptFrom(ctx context.Context) int {
	if n, ok := ctx.Value(attemptKey{}).(int); ok && n > 0 {
		return n
	}
	return 1
}

// JobResult records one execution.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Attempts  int           `json:"attempts"`
	Error     string        `json:"error,omitempty"`
}

const historyLimit = 100

// JobHistory keeps the most recent results for one job.
type JobHistory struct {
	Results []JobResult
}

func (h *JobHistory) add(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Last returns the most recent result, or nil when the job never ran.
func (h *JobHistory) Last() *JobResult {
	if len(h.Results) == 0 {
		return nil
	}
	return &h.Results[len(h.Results)-1]
}

// SuccessRate returns the fraction of successful runs in history.
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	ok := 0
	for _, r := range h.Results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.Results))
}
