package contracts

import "time"

// RunStatus is the lifecycle status of a pipeline run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial"
	RunFailed  RunStatus = "failed"
)

// Pipeline step names recorded in ErrorStep when a run fails.
const (
	StepSweep      = "sweep"
	StepPrioritize = "prioritize"
	StepCollect    = "collect"
	StepScore      = "score"
	StepTransition = "transition"
	StepPersist    = "persist"
)

// PipelineRun is the audit record of one pipeline cycle. A run always
// reaches a terminal status, including on cancellation.
type PipelineRun struct {
	ID         string     `json:"id"`
	Trigger    string     `json:"trigger"` // "cron", "manual", "full_refresh"
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// RetryCount is how many earlier attempts of the same scheduled
	// job failed before this run.
	RetryCount int `json:"retry_count"`

	Selected  int `json:"selected"`
	Collected int `json:"collected"`
	Scored    int `json:"scored"`
	Promoted  int `json:"promoted"`
	Demoted   int `json:"demoted"`
	APICalls  int `json:"api_calls"`
	APIErrors int `json:"api_errors"`

	ErrorStep    string `json:"error_step,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}
