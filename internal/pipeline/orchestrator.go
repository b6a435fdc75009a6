package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/seesaw/mfses/internal/collector"
	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/internal/external/polygon"
	"github.com/seesaw/mfses/internal/markov"
	"github.com/seesaw/mfses/internal/prioritizer"
	"github.com/seesaw/mfses/internal/scoring"
	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/logger"
)

// Triggers recorded on run records.
const (
	TriggerCron        = "cron"
	TriggerManual      = "manual"
	TriggerFullRefresh = "full_refresh"
)

// Notifier receives run records when a run starts and when it reaches
// a terminal status.
type Notifier interface {
	NotifyRun(run *contracts.PipelineRun)
}

// ErrCycleInProgress is returned when a run is requested while another
// cycle still holds the gate. Callers skip rather than queue.
var ErrCycleInProgress = errors.New("pipeline cycle already in progress")

type retryKey struct{}

// WithRetry marks ctx with how many earlier attempts of the same
// scheduled job failed before this run.
func WithRetry(ctx context.Context, retries int) context.Context {
	return context.WithValue(ctx, retryKey{}, retries)
}

func retriesFrom(ctx context.Context) int {
	if n, ok := ctx.Value(retryKey{}).(int); ok && n > 0 {
		return n
	}
	return 0
}

// Orchestrator drives one pipeline cycle end to end:
// sweep -> prioritize -> collect -> score -> transition.
// Instrument failures are isolated; one bad ticker never sinks the
// batch.
// SSOT: pipeline coordination happens only here.
type Orchestrator struct {
	machine     *markov.Machine
	prioritizer *prioritizer.Prioritizer
	collector   *collector.Collector
	engine      *scoring.Engine
	client      *polygon.Client

	instruments contracts.InstrumentRepository
	scores      contracts.ScoreRepository
	runs        contracts.RunRepository

	notifier Notifier
	cfg      *config.Config
	logger   *logger.Logger
	now      func() time.Time

	// busy serializes cycles; state, score and raw writes for an
	// instrument must never race between two runs.
	busy atomic.Bool
}

// New creates an orchestrator.
func New(
	machine *markov.Machine,
	prior *prioritizer.Prioritizer,
	coll *collector.Collector,
	engine *scoring.Engine,
	client *polygon.Client,
	instruments contracts.InstrumentRepository,
	scores contracts.ScoreRepository,
	runs contracts.RunRepository,
	cfg *config.Config,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		machine:     machine,
		prioritizer: prior,
		collector:   coll,
		engine:      engine,
		client:      client,
		instruments: instruments,
		scores:      scores,
		runs:        runs,
		cfg:         cfg,
		logger:      log,
		now:         time.Now,
	}
}

// SetNotifier attaches a run status listener.
func (o *Orchestrator) SetNotifier(n Notifier) {
	o.notifier = n
}

// instrumentResult is what one worker reports back for one ticker.
type instrumentResult struct {
	ticker   string
	err      error
	promoted bool
	demoted  bool
	scored   bool
}

// Run executes one full cycle. The returned run record always carries
// a terminal status, even when ctx is cancelled mid-batch.
func (o *Orchestrator) Run(ctx context.Context, trigger string, forceAll bool) (*contracts.PipelineRun, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer o.busy.Store(false)

	run := &contracts.PipelineRun{
		ID:         uuid.NewString(),
		Trigger:    trigger,
		Status:     contracts.RunRunning,
		StartedAt:  o.now(),
		RetryCount: retriesFrom(ctx),
	}

	if err := o.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}
	o.notify(run)

	o.client.ResetStats()
	o.execute(ctx, run, forceAll)

	run.APICalls, run.APIErrors = o.client.Stats()
	finished := o.now()
	run.FinishedAt = &finished

	// The terminal record must land even when the cycle was cancelled.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.runs.Finish(persistCtx, run); err != nil {
		o.logger.WithError(err).Error("Failed to persist run record")
	}
	o.notify(run)

	o.logger.WithFields(map[string]interface{}{
		"run_id":    run.ID,
		"status":    string(run.Status),
		"selected":  run.Selected,
		"collected": run.Collected,
		"scored":    run.Scored,
		"promoted":  run.Promoted,
		"demoted":   run.Demoted,
		"api_calls": run.APICalls,
		"duration":  finished.Sub(run.StartedAt),
	}).Info("Pipeline run finished")

	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *contracts.PipelineRun, forceAll bool) {
	// Expired HOT promotions decay before the batch is picked.
	demoted, err := o.machine.SweepExpiredPromotions(ctx)
	if err != nil {
		o.fail(run, contracts.StepSweep, err)
		return
	}
	run.Demoted += demoted

	tickers, err := o.selectTickers(ctx, forceAll)
	if err != nil {
		o.fail(run, contracts.StepPrioritize, err)
		return
	}
	run.Selected = len(tickers)
	if len(tickers) == 0 {
		run.Status = contracts.RunSuccess
		return
	}

	snapshots, err := o.collector.FetchSnapshots(ctx, tickers)
	if err != nil {
		o.fail(run, contracts.StepCollect, err)
		return
	}

	results := o.processBatch(ctx, tickers, snapshots)

	failed := 0
	var firstErr error
	for _, res := range results {
		if res.err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", res.ticker, res.err)
			}
			continue
		}
		run.Collected++
		if res.scored {
			run.Scored++
		}
		if res.promoted {
			run.Promoted++
		}
		if res.demoted {
			run.Demoted++
		}
	}

	switch {
	case failed == 0:
		run.Status = contracts.RunSuccess
	case failed == len(tickers):
		o.fail(run, contracts.StepCollect, firstErr)
	default:
		run.Status = contracts.RunPartial
		run.ErrorStep = contracts.StepCollect
		run.ErrorMessage = fmt.Sprintf("%d of %d instruments failed: %v", failed, len(tickers), firstErr)
	}

	if ctx.Err() != nil && run.Status == contracts.RunPartial {
		run.Status = contracts.RunFailed
		run.ErrorMessage = fmt.Sprintf("cancelled: %s", run.ErrorMessage)
	}
}

// selectTickers picks this cycle's batch. A full refresh bypasses the
// due queue and takes the whole active universe.
func (o *Orchestrator) selectTickers(ctx context.Context, forceAll bool) ([]string, error) {
	if forceAll {
		insts, err := o.instruments.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		tickers := make([]string, 0, len(insts))
		for _, inst := range insts {
			tickers = append(tickers, inst.Ticker)
		}
		return tickers, nil
	}

	batch, err := o.prioritizer.SelectBatch(ctx, o.cfg.CycleBudget())
	if err != nil {
		return nil, err
	}
	return batch.Tickers, nil
}

// processBatch fans the ordered batch out to the worker pool and
// collects per-instrument results.
func (o *Orchestrator) processBatch(ctx context.Context, tickers []string, snapshots map[string]*polygon.MarketSnapshot) []instrumentResult {
	workers := o.cfg.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	out := make(chan instrumentResult, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				out <- o.processInstrument(ctx, ticker, snapshots[ticker])
			}
		}()
	}

	for _, ticker := range tickers {
		select {
		case jobs <- ticker:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]instrumentResult, 0, len(tickers))
	for res := range out {
		results = append(results, res)
	}
	return results
}

// processInstrument runs collect -> score -> transition for one
// ticker.
func (o *Orchestrator) processInstrument(ctx context.Context, ticker string, snap *polygon.MarketSnapshot) instrumentResult {
	res := instrumentResult{ticker: ticker}

	if ctx.Err() != nil {
		res.err = ctx.Err()
		return res
	}

	raw, err := o.collector.CollectOne(ctx, ticker, snap)
	if err != nil {
		res.err = err
		return res
	}

	var prevScore *contracts.Score
	if prev, err := o.scores.Get(ctx, ticker); err == nil && prev != nil {
		prevScore = prev
	}

	score := o.engine.Score(raw)
	if err := o.scores.Save(ctx, score); err != nil {
		res.err = fmt.Errorf("save score: %w", err)
		return res
	}
	// History only records days the score moved.
	if scoreChanged(prevScore, score) {
		if err := o.scores.SaveSnapshot(ctx, score); err != nil {
			res.err = fmt.Errorf("save score snapshot: %w", err)
			return res
		}
	}
	res.scored = true

	scoreDelta := 0
	if prevScore != nil {
		scoreDelta = score.Total - prevScore.Total
	}

	if err := o.transitionInstrument(ctx, ticker, raw, scoreDelta, &res); err != nil {
		res.err = err
	}
	return res
}

// scoreChanged reports whether the new score differs from the
// previous one in total or any composite.
func scoreChanged(prev, cur *contracts.Score) bool {
	if prev == nil {
		return true
	}
	return prev.Total != cur.Total ||
		prev.CompositeShort != cur.CompositeShort ||
		prev.CompositeMid != cur.CompositeMid ||
		prev.CompositeLong != cur.CompositeLong
}

// transitionInstrument evaluates signals and always transitions; even
// when the state holds, re-entering it pushes nextUpdateDue forward
// so the instrument leaves the due queue.
func (o *Orchestrator) transitionInstrument(ctx context.Context, ticker string, raw *contracts.RawAttributes, scoreDelta int, res *instrumentResult) error {
	st, err := o.machine.States().Get(ctx, ticker)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if st == nil {
		st = &contracts.InstrumentState{Ticker: ticker, State: contracts.StateCold}
	}

	eval := markov.EvaluateSignals(st, raw, scoreDelta, o.now())

	reason := eval.Reason
	if !eval.Changed && reason == "" {
		reason = st.PromotionReason
	}

	if _, err := o.machine.Transition(ctx, ticker, eval.NewState, reason); err != nil {
		return fmt.Errorf("transition: %w", err)
	}

	if eval.Changed {
		oldP, newP := st.State.Priority(), eval.NewState.Priority()
		if newP > oldP {
			res.promoted = true
		} else if newP < oldP {
			res.demoted = true
		}
	}
	return nil
}

func (o *Orchestrator) fail(run *contracts.PipelineRun, step string, err error) {
	run.Status = contracts.RunFailed
	run.ErrorStep = step
	if err != nil {
		run.ErrorMessage = err.Error()
	}
	o.logger.WithFields(map[string]interface{}{
		"run_id": run.ID,
		"step":   step,
	}).WithError(err).Error("Pipeline step failed")
}

func (o *Orchestrator) notify(run *contracts.PipelineRun) {
	if o.notifier != nil {
		o.notifier.NotifyRun(run)
	}
}
