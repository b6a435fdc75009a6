package prioritizer

import (
	"reflect"
	"testing"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/logger"
)

func due(ticker string, state contracts.State, overdue time.Duration) *contracts.InstrumentState {
	return &contracts.InstrumentState{
		Ticker:        ticker,
		State:         state,
		NextUpdateDue: time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC).Add(-overdue),
	}
}

func TestBuildOrdersByStateThenDueTime(t *testing.T) {
	p := New(nil, logger.NewNop())

	input := []*contracts.InstrumentState{
		due("COLD1", contracts.StateCold, 2*time.Hour),
		due("HOT2", contracts.StateHot, time.Minute),
		due("WARM1", contracts.StateWarm, time.Hour),
		due("HOT1", contracts.StateHot, 10*time.Minute),
		due("FRZ1", contracts.StateFrozen, 48*time.Hour),
	}

	batch := p.build(input, 500)

	want := []string{"HOT1", "HOT2", "WARM1", "COLD1", "FRZ1"}
	if !reflect.DeepEqual(batch.Tickers, want) {
		t.Errorf("order = %v, want %v", batch.Tickers, want)
	}
	if batch.Truncated {
		t.Error("batch under budget must not be truncated")
	}
	if batch.States[contracts.StateHot] != 2 || batch.States[contracts.StateFrozen] != 1 {
		t.Errorf("state counts = %v", batch.States)
	}
}

func TestBuildTickerTieBreak(t *testing.T) {
	p := New(nil, logger.NewNop())

	input := []*contracts.InstrumentState{
		due("ZULU", contracts.StateWarm, time.Hour),
		due("ALFA", contracts.StateWarm, time.Hour),
	}

	batch := p.build(input, 500)
	want := []string{"ALFA", "ZULU"}
	if !reflect.DeepEqual(batch.Tickers, want) {
		t.Errorf("order = %v, want %v", batch.Tickers, want)
	}
}

func TestBuildTruncatesToBudget(t *testing.T) {
	p := New(nil, logger.NewNop())

	input := []*contracts.InstrumentState{
		due("C1", contracts.StateCold, time.Hour),
		due("H1", contracts.StateHot, time.Hour),
		due("W1", contracts.StateWarm, time.Hour),
	}

	batch := p.build(input, 2)

	want := []string{"H1", "W1"}
	if !reflect.DeepEqual(batch.Tickers, want) {
		t.Errorf("truncated batch = %v, want %v (hottest first)", batch.Tickers, want)
	}
	if !batch.Truncated {
		t.Error("batch over budget must report truncation")
	}
}

func TestBuildZeroBudget(t *testing.T) {
	p := New(nil, logger.NewNop())

	batch := p.build([]*contracts.InstrumentState{due("A", contracts.StateHot, time.Hour)}, 0)
	if len(batch.Tickers) != 0 {
		t.Errorf("zero budget must select nothing, got %v", batch.Tickers)
	}
}
