package contracts

import (
	"context"
	"time"
)

// SSOT: repository interfaces are defined only here.

// InstrumentRepository manages the tracked universe.
type InstrumentRepository interface {
	Get(ctx context.Context, ticker string) (*Instrument, error)
	ListActive(ctx context.Context) ([]*Instrument, error)
	Save(ctx context.Context, inst *Instrument) error
	SaveBatch(ctx context.Context, insts []*Instrument) error
	Count(ctx context.Context) (int, error)
}

// StateRepository manages per-instrument scheduling state. The list
// methods only return states of active instruments; deactivated ones
// keep their row but leave the due queue.
type StateRepository interface {
	Get(ctx context.Context, ticker string) (*InstrumentState, error)
	ListDue(ctx context.Context, now time.Time) ([]*InstrumentState, error)
	ListExpiredPromotions(ctx context.Context, now time.Time) ([]*InstrumentState, error)
	Save(ctx context.Context, state *InstrumentState) error
	CountByState(ctx context.Context) (map[State]int, error)
}

// RawRepository manages the latest collected attributes per instrument.
type RawRepository interface {
	Get(ctx context.Context, ticker string) (*RawAttributes, error)
	Save(ctx context.Context, raw *RawAttributes) error
}

// ScoreRepository manages current scores and historical snapshots.
type ScoreRepository interface {
	Get(ctx context.Context, ticker string) (*Score, error)
	Save(ctx context.Context, score *Score) error
	SaveSnapshot(ctx context.Context, score *Score) error
	PruneSnapshots(ctx context.Context, before time.Time) (int64, error)
}

// RunRepository manages pipeline run audit records.
type RunRepository interface {
	Create(ctx context.Context, run *PipelineRun) error
	Finish(ctx context.Context, run *PipelineRun) error
	Get(ctx context.Context, id string) (*PipelineRun, error)
	ListRecent(ctx context.Context, limit int) ([]*PipelineRun, error)
	PruneRuns(ctx context.Context, before time.Time) (int64, error)
}
