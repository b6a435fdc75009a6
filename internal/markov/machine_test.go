package markov

import (
	"context"
	"testing"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/logger"
)

type fakeStateRepo struct {
	states map[string]*contracts.InstrumentState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[string]*contracts.InstrumentState)}
}

func (f *fakeStateRepo) Get(_ context.Context, ticker string) (*contracts.InstrumentState, error) {
	return f.states[ticker], nil
}

func (f *fakeStateRepo) ListDue(_ context.Context, now time.Time) ([]*contracts.InstrumentState, error) {
	var due []*contracts.InstrumentState
	for _, st := range f.states {
		if !st.NextUpdateDue.After(now) {
			due = append(due, st)
		}
	}
	return due, nil
}

func (f *fakeStateRepo) ListExpiredPromotions(_ context.Context, now time.Time) ([]*contracts.InstrumentState, error) {
	var expired []*contracts.InstrumentState
	for _, st := range f.states {
		if st.PromotionExpired(now) {
			expired = append(expired, st)
		}
	}
	return expired, nil
}

func (f *fakeStateRepo) Save(_ context.Context, st *contracts.InstrumentState) error {
	f.states[st.Ticker] = st
	return nil
}

func (f *fakeStateRepo) CountByState(_ context.Context) (map[contracts.State]int, error) {
	counts := make(map[contracts.State]int)
	for _, st := range f.states {
		counts[st.State]++
	}
	return counts, nil
}

func TestApplyHotSetsPromotionFields(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	st := &contracts.InstrumentState{Ticker: "NVDA", State: contracts.StateCold}

	next := Apply(st, contracts.StateHot, "volume_spike_3x", now)

	if next.State != contracts.StateHot || next.PreviousState != contracts.StateCold {
		t.Errorf("state = %s (prev %s)", next.State, next.PreviousState)
	}
	if next.PromotionReason != "volume_spike_3x" {
		t.Errorf("reason = %q", next.PromotionReason)
	}
	if next.PromotionExpires == nil || !next.PromotionExpires.Equal(now.Add(24*time.Hour)) {
		t.Errorf("expires = %v, want now+24h", next.PromotionExpires)
	}
	if next.ConsecutiveHot != 1 {
		t.Errorf("consecutiveHot = %d, want 1", next.ConsecutiveHot)
	}
	if !next.NextUpdateDue.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("nextUpdateDue = %v, want now+30m", next.NextUpdateDue)
	}
}

func TestApplyWarmIntervalExact(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	st := &contracts.InstrumentState{Ticker: "AAPL", State: contracts.StateHot, ConsecutiveHot: 3}

	next := Apply(st, contracts.StateWarm, "promotion_expired", now)

	if !next.NextUpdateDue.Equal(now.Add(120 * time.Minute)) {
		t.Errorf("nextUpdateDue = %v, want lastUpdated+120m", next.NextUpdateDue)
	}
	if next.PromotionReason != "promotion_expired" {
		t.Errorf("WARM keeps its reason, got %q", next.PromotionReason)
	}
	if next.PromotionExpires != nil {
		t.Error("only HOT carries an expiry")
	}
	if next.ConsecutiveHot != 0 {
		t.Errorf("consecutiveHot = %d, want reset to 0", next.ConsecutiveHot)
	}
}

func TestApplyFrozenClearsPromotionFields(t *testing.T) {
	now := time.Now()
	exp := now.Add(time.Hour)
	st := &contracts.InstrumentState{
		Ticker:           "XYZ",
		State:            contracts.StateCold,
		PromotionReason:  "stale",
		PromotionExpires: &exp,
		ConsecutiveHot:   2,
	}

	next := Apply(st, contracts.StateFrozen, "low_volume", now)

	if next.PromotionReason != "" {
		t.Errorf("FROZEN must clear reason, got %q", next.PromotionReason)
	}
	if next.PromotionExpires != nil || next.PromotedAt != nil {
		t.Error("FROZEN must clear promotion timestamps")
	}
	if next.ConsecutiveHot != 0 {
		t.Error("FROZEN must reset consecutiveHot")
	}
}

func TestTransitionHotTwiceIncrementsBothTimes(t *testing.T) {
	repo := newFakeStateRepo()
	repo.states["TSLA"] = &contracts.InstrumentState{Ticker: "TSLA", State: contracts.StateWarm}

	m := NewMachine(repo, logger.NewNop())
	first := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)
	times := []time.Time{first, second}
	m.now = func() time.Time { t := times[0]; times = times[1:]; return t }

	if _, err := m.Transition(context.Background(), "TSLA", contracts.StateHot, "x"); err != nil {
		t.Fatal(err)
	}
	st, err := m.Transition(context.Background(), "TSLA", contracts.StateHot, "x")
	if err != nil {
		t.Fatal(err)
	}

	if st.ConsecutiveHot != 2 {
		t.Errorf("consecutiveHot = %d, want 2 (each HOT entry counts)", st.ConsecutiveHot)
	}
	if !st.NextUpdateDue.Equal(second.Add(30 * time.Minute)) {
		t.Errorf("nextUpdateDue must reflect the second call, got %v", st.NextUpdateDue)
	}
}

func TestTransitionRejectsUnknownState(t *testing.T) {
	m := NewMachine(newFakeStateRepo(), logger.NewNop())
	if _, err := m.Transition(context.Background(), "AAPL", contracts.State("LUKEWARM"), ""); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestSweepExpiredPromotions(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	repo := newFakeStateRepo()
	repo.states["EXP"] = &contracts.InstrumentState{Ticker: "EXP", State: contracts.StateHot, PromotionExpires: &past}
	repo.states["LIVE"] = &contracts.InstrumentState{Ticker: "LIVE", State: contracts.StateHot, PromotionExpires: &future}

	m := NewMachine(repo, logger.NewNop())
	demoted, err := m.SweepExpiredPromotions(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if demoted != 1 {
		t.Fatalf("demoted = %d, want 1", demoted)
	}
	if repo.states["EXP"].State != contracts.StateWarm {
		t.Errorf("expired instrument state = %s, want WARM", repo.states["EXP"].State)
	}
	if repo.states["EXP"].PromotionReason != "promotion_expired" {
		t.Errorf("reason = %q", repo.states["EXP"].PromotionReason)
	}
	if repo.states["LIVE"].State != contracts.StateHot {
		t.Error("live promotion must not be demoted")
	}
}
