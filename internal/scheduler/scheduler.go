package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/seesaw/mfses/pkg/logger"
)

// Scheduler runs registered jobs on their cron schedules with retry.
// SSOT: schedule management happens only here.
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	baseCtx context.Context

	mu      sync.RWMutex
	jobs    map[string]Job
	history map[string]*JobHistory

	maxRetries int
	retryDelay time.Duration
}

// New creates a scheduler. Jobs run against baseCtx, so cancelling it
// aborts in-flight jobs on shutdown.
func New(baseCtx context.Context, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		logger:     log,
		baseCtx:    baseCtx,
		jobs:       make(map[string]Job),
		history:    make(map[string]*JobHistory),
		maxRetries: 2,
		retryDelay: time.Minute,
	}
}

// AddJob registers a job. Names must be unique.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() { s.runJob(job) }); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job registered")
	return nil
}

// Start begins dispatching jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts dispatch and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow triggers a registered job outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	go s.runJob(job)
	return nil
}

// JobNames lists registered jobs.
func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// History returns the execution history for one job.
func (s *Scheduler) History(name string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}
	return history, nil
}

func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	started := time.Now()

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		attempts++
		lastErr = job.Run(WithAttempt(s.baseCtx, attempts))
		if lastErr == nil {
			break
		}
		if s.baseCtx.Err() != nil {
			break
		}

		s.logger.WithFields(map[string]interface{}{
			"job":     name,
			"attempt": attempt + 1,
		}).WithError(lastErr).Warn("Job failed")

		if attempt < s.maxRetries {
			select {
			case <-time.After(s.retryDelay):
			case <-s.baseCtx.Done():
			}
		}
	}

	result := JobResult{
		JobName:   name,
		StartedAt: started,
		Duration:  time.Since(started),
		Success:   lastErr == nil,
		Attempts:  attempts,
	}
	if lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[name]; exists {
		history.add(result)
	}
	s.mu.Unlock()

	if lastErr == nil {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
		}).Info("Job completed")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
			"attempts": attempts,
		}).WithError(lastErr).Error("Job failed after retries")
	}
}
