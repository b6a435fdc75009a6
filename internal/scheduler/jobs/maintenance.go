package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/seesaw/mfses/internal/collector"
	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/logger"
)

// RetentionJob prunes history tables past their retention horizons.
// Deletes are idempotent; rerunning after a failure is safe.
type RetentionJob struct {
	scores contracts.ScoreRepository
	runs   contracts.RunRepository
	cfg    *config.Config
	logger *logger.Logger
	now    func() time.Time
}

// NewRetentionJob creates the daily retention job.
func NewRetentionJob(scores contracts.ScoreRepository, runs contracts.RunRepository, cfg *config.Config, log *logger.Logger) *RetentionJob {
	return &RetentionJob{scores: scores, runs: runs, cfg: cfg, logger: log, now: time.Now}
}

func (j *RetentionJob) Name() string     { return "retention" }
func (j *RetentionJob) Schedule() string { return j.cfg.Schedules.Retention }

func (j *RetentionJob) Run(ctx context.Context) error {
	now := j.now()

	snapshotHorizon := now.AddDate(0, 0, -j.cfg.Pipeline.SnapshotRetentionDays)
	snapshots, err := j.scores.PruneSnapshots(ctx, snapshotHorizon)
	if err != nil {
		return fmt.Errorf("prune score snapshots: %w", err)
	}

	runHorizon := now.AddDate(0, 0, -j.cfg.Pipeline.RunRetentionDays)
	runs, err := j.runs.PruneRuns(ctx, runHorizon)
	if err != nil {
		return fmt.Errorf("prune pipeline runs: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"snapshots_pruned": snapshots,
		"runs_pruned":      runs,
	}).Info("Retention pass complete")
	return nil
}

// CacheCleanupJob evicts expired entries from the response cache.
type CacheCleanupJob struct {
	cache  collector.ResponseCache
	cfg    *config.Config
	logger *logger.Logger
}

// NewCacheCleanupJob creates the cache cleanup job.
func NewCacheCleanupJob(cache collector.ResponseCache, cfg *config.Config, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{cache: cache, cfg: cfg, logger: log}
}

func (j *CacheCleanupJob) Name() string     { return "cache_cleanup" }
func (j *CacheCleanupJob) Schedule() string { return j.cfg.Schedules.CacheCleanup }

func (j *CacheCleanupJob) Run(_ context.Context) error {
	if dropped := j.cache.CleanExpired(); dropped > 0 {
		j.logger.WithField("dropped", dropped).Debug("Expired cache entries evicted")
	}
	return nil
}
