package prioritizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/logger"
)

// Prioritizer selects the batch of instruments to refresh this cycle.
// Hotter states go first; within a state the most overdue instrument
// wins, with ticker as the final tie break so ordering is stable.
type Prioritizer struct {
	states contracts.StateRepository
	logger *logger.Logger
	now    func() time.Time
}

// Batch is one cycle's selection with its state breakdown.
type Batch struct {
	Tickers   []string                `json:"tickers"`
	States    map[contracts.State]int `json:"states"`
	Truncated bool                    `json:"truncated"`
}

// New creates a prioritizer over the state repository.
func New(states contracts.StateRepository, log *logger.Logger) *Prioritizer {
	return &Prioritizer{
		states: states,
		logger: log,
		now:    time.Now,
	}
}

// SelectBatch returns up to budget due instruments, ordered by state
// priority. A zero or negative budget yields an empty batch.
func (p *Prioritizer) SelectBatch(ctx context.Context, budget int) (*Batch, error) {
	due, err := p.states.ListDue(ctx, p.now())
	if err != nil {
		return nil, fmt.Errorf("list due instruments: %w", err)
	}
	return p.build(due, budget), nil
}

func (p *Prioritizer) build(due []*contracts.InstrumentState, budget int) *Batch {
	sort.Slice(due, func(i, j int) bool {
		if pi, pj := due[i].State.Priority(), due[j].State.Priority(); pi != pj {
			return pi > pj
		}
		if !due[i].NextUpdateDue.Equal(due[j].NextUpdateDue) {
			return due[i].NextUpdateDue.Before(due[j].NextUpdateDue)
		}
		return due[i].Ticker < due[j].Ticker
	})

	batch := &Batch{
		States: map[contracts.State]int{
			contracts.StateHot:    0,
			contracts.StateWarm:   0,
			contracts.StateCold:   0,
			contracts.StateFrozen: 0,
		},
	}

	if budget < 0 {
		budget = 0
	}
	if len(due) > budget {
		batch.Truncated = true
		due = due[:budget]
	}

	for _, st := range due {
		batch.Tickers = append(batch.Tickers, st.Ticker)
		batch.States[st.State]++
	}

	p.logger.WithFields(map[string]interface{}{
		"selected":  len(batch.Tickers),
		"truncated": batch.Truncated,
		"hot":       batch.States[contracts.StateHot],
		"warm":      batch.States[contracts.StateWarm],
		"cold":      batch.States[contracts.StateCold],
		"frozen":    batch.States[contracts.StateFrozen],
	}).Info("Batch selected")

	return batch
}
