package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/internal/pipeline"
	"github.com/seesaw/mfses/internal/scheduler"
	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/logger"
)

// marketHoursUTC reports whether t falls inside the regular US
// session (14:30-21:00 UTC), ignoring holidays. The off-hours job
// uses it to stand down while the market cycle is active.
func marketHoursUTC(t time.Time) bool {
	t = t.UTC()
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= 14*60+30 && minutes < 21*60
}

// MarketCycleJob runs one pipeline cycle on the market-hours cadence.
type MarketCycleJob struct {
	orch   *pipeline.Orchestrator
	cfg    *config.Config
	logger *logger.Logger
}

// NewMarketCycleJob creates the market-hours pipeline job.
func NewMarketCycleJob(orch *pipeline.Orchestrator, cfg *config.Config, log *logger.Logger) *MarketCycleJob {
	return &MarketCycleJob{orch: orch, cfg: cfg, logger: log}
}

func (j *MarketCycleJob) Name() string     { return "pipeline_market_cycle" }
func (j *MarketCycleJob) Schedule() string { return j.cfg.Schedules.MarketCycle }

func (j *MarketCycleJob) Run(ctx context.Context) error {
	return runCycle(ctx, j.orch, j.cfg, j.logger, pipeline.TriggerCron, false)
}

// OffHoursCycleJob keeps data moving outside market hours at a slower
// cadence. It skips quietly when the market cycle owns the clock.
type OffHoursCycleJob struct {
	orch   *pipeline.Orchestrator
	cfg    *config.Config
	logger *logger.Logger
	now    func() time.Time
}

// NewOffHoursCycleJob creates the off-hours pipeline job.
func NewOffHoursCycleJob(orch *pipeline.Orchestrator, cfg *config.Config, log *logger.Logger) *OffHoursCycleJob {
	return &OffHoursCycleJob{orch: orch, cfg: cfg, logger: log, now: time.Now}
}

func (j *OffHoursCycleJob) Name() string     { return "pipeline_off_hours" }
func (j *OffHoursCycleJob) Schedule() string { return j.cfg.Schedules.OffHoursCycle }

func (j *OffHoursCycleJob) Run(ctx context.Context) error {
	if marketHoursUTC(j.now()) {
		j.logger.Debug("Market hours, off-hours cycle skipped")
		return nil
	}
	return runCycle(ctx, j.orch, j.cfg, j.logger, pipeline.TriggerCron, false)
}

// FullRefreshJob re-enqueues the whole active universe once a day so
// slow movers never go stale indefinitely.
type FullRefreshJob struct {
	orch   *pipeline.Orchestrator
	cfg    *config.Config
	logger *logger.Logger
}

// NewFullRefreshJob creates the daily full refresh job.
func NewFullRefreshJob(orch *pipeline.Orchestrator, cfg *config.Config, log *logger.Logger) *FullRefreshJob {
	return &FullRefreshJob{orch: orch, cfg: cfg, logger: log}
}

func (j *FullRefreshJob) Name() string     { return "pipeline_full_refresh" }
func (j *FullRefreshJob) Schedule() string { return j.cfg.Schedules.FullRefresh }

func (j *FullRefreshJob) Run(ctx context.Context) error {
	return runCycle(ctx, j.orch, j.cfg, j.logger, pipeline.TriggerFullRefresh, true)
}

func runCycle(ctx context.Context, orch *pipeline.Orchestrator, cfg *config.Config, log *logger.Logger, trigger string, forceAll bool) error {
	// The scheduler's attempt number lands on the run record as its
	// retry count.
	ctx = pipeline.WithRetry(ctx, scheduler.AttemptFrom(ctx)-1)

	ctx, cancel := context.WithTimeout(ctx, cfg.Pipeline.CycleTimeout)
	defer cancel()

	run, err := orch.Run(ctx, trigger, forceAll)
	if errors.Is(err, pipeline.ErrCycleInProgress) {
		log.WithField("trigger", trigger).Info("Previous cycle still running, skipped")
		return nil
	}
	if err != nil {
		return err
	}
	if run.Status == contracts.RunFailed {
		return fmt.Errorf("pipeline run %s failed at %s: %s", run.ID, run.ErrorStep, run.ErrorMessage)
	}
	return nil
}
