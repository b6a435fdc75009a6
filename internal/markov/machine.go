package markov

import (
	"context"
	"fmt"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/logger"
)

// Machine applies state transitions and persists the resulting row.
// SSOT: instrument_states rows are mutated only through this type.
type Machine struct {
	states contracts.StateRepository
	logger *logger.Logger
	now    func() time.Time
}

// NewMachine creates a state machine over the given repository.
func NewMachine(states contracts.StateRepository, log *logger.Logger) *Machine {
	return &Machine{
		states: states,
		logger: log,
		now:    time.Now,
	}
}

// States exposes the underlying repository for read paths.
func (m *Machine) States() contracts.StateRepository {
	return m.states
}

// Apply computes the successor row for a transition without touching
// storage. The whole row is rebuilt so a save replaces every field at
// once; no partial updates can leak through.
func Apply(st *contracts.InstrumentState, newState contracts.State, reason string, now time.Time) *contracts.InstrumentState {
	next := &contracts.InstrumentState{
		Ticker:        st.Ticker,
		State:         newState,
		PreviousState: st.State,
		NextUpdateDue: now.Add(newState.Interval()),
		UpdatedAt:     now,
	}

	if newState == contracts.StateHot || newState == contracts.StateWarm {
		next.PromotionReason = reason
	}

	if newState == contracts.StateHot {
		promotedAt := now
		expires := now.Add(24 * time.Hour)
		next.PromotedAt = &promotedAt
		next.PromotionExpires = &expires
		next.ConsecutiveHot = st.ConsecutiveHot + 1
	}

	return next
}

// Transition moves one instrument to newState and saves the row.
// Calling it with the current state is valid and still pushes
// nextUpdateDue forward, which is how a refreshed instrument leaves
// the due queue.
func (m *Machine) Transition(ctx context.Context, ticker string, newState contracts.State, reason string) (*contracts.InstrumentState, error) {
	if !newState.Valid() {
		return nil, fmt.Errorf("invalid state %q for %s", newState, ticker)
	}

	st, err := m.states.Get(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("load state for %s: %w", ticker, err)
	}
	if st == nil {
		st = &contracts.InstrumentState{Ticker: ticker, State: contracts.StateCold}
	}

	next := Apply(st, newState, reason, m.now())
	if err := m.states.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save state for %s: %w", ticker, err)
	}

	if next.State != st.State {
		m.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"from":   string(st.State),
			"to":     string(next.State),
			"reason": reason,
		}).Info("State transition")
	}

	return next, nil
}

// SweepExpiredPromotions demotes every instrument whose HOT promotion
// has lapsed. Runs once per cycle, before prioritization, so expired
// promotions never survive into batch selection.
func (m *Machine) SweepExpiredPromotions(ctx context.Context) (int, error) {
	expired, err := m.states.ListExpiredPromotions(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("list expired promotions: %w", err)
	}

	demoted := 0
	for _, st := range expired {
		if _, err := m.Transition(ctx, st.Ticker, contracts.StateWarm, "promotion_expired"); err != nil {
			m.logger.WithError(err).WithField("ticker", st.Ticker).Error("Expiry demotion failed")
			continue
		}
		demoted++
	}

	if demoted > 0 {
		m.logger.WithField("count", demoted).Info("Expired promotions demoted")
	}

	return demoted, nil
}
