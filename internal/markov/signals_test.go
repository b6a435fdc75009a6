package markov

import (
	"testing"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
)

func fp(v float64) *float64 { return &v }

func rawWith(volumeRatio, priceChange float64) *contracts.RawAttributes {
	avg := 1_000_000.0
	vol := avg * volumeRatio
	return &contracts.RawAttributes{
		Ticker:         "TEST",
		Volume:         &vol,
		AvgVolume30D:   &avg,
		PriceChangePct: &priceChange,
	}
}

func TestEvaluateSignals(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		state      contracts.State
		consHot    int
		raw        *contracts.RawAttributes
		scoreDelta int
		wantState  contracts.State
		wantReason string
	}{
		{
			name:       "extreme volume spike promotes to HOT",
			state:      contracts.StateCold,
			raw:        rawWith(3.5, 1.0),
			wantState:  contracts.StateHot,
			wantReason: "volume_spike_3x",
		},
		{
			name:       "2x volume alone promotes to HOT",
			state:      contracts.StateWarm,
			raw:        rawWith(2.5, 1.0),
			wantState:  contracts.StateHot,
			wantReason: "volume_spike_2x",
		},
		{
			name:       "moderate volume lifts FROZEN to WARM",
			state:      contracts.StateFrozen,
			raw:        rawWith(1.7, 1.0),
			wantState:  contracts.StateWarm,
			wantReason: "volume_spike_1.5x",
		},
		{
			name:      "moderate volume keeps WARM in place",
			state:     contracts.StateWarm,
			raw:       rawWith(1.7, 1.0),
			wantState: contracts.StateWarm,
		},
		{
			name:       "large price swing promotes to HOT",
			state:      contracts.StateCold,
			raw:        rawWith(1.0, 6.2),
			wantState:  contracts.StateHot,
			wantReason: "price_swing_5pct",
		},
		{
			name:      "moderate swing alone lifts COLD to WARM only",
			state:     contracts.StateCold,
			raw:       rawWith(1.0, 3.5),
			wantState: contracts.StateWarm,
		},
		{
			name:       "dead volume freezes COLD",
			state:      contracts.StateCold,
			raw:        rawWith(0.3, 1.0),
			wantState:  contracts.StateFrozen,
			wantReason: "low_volume",
		},
		{
			name:       "dead volume demotes WARM one level only",
			state:      contracts.StateWarm,
			raw:        rawWith(0.3, 1.0),
			wantState:  contracts.StateCold,
			wantReason: "low_volume",
		},
		{
			name:      "flat price demotes WARM to COLD",
			state:     contracts.StateWarm,
			raw:       rawWith(1.0, 0.2),
			wantState: contracts.StateCold,
		},
		{
			name:       "score jump with moderate swing reaches HOT",
			state:      contracts.StateCold,
			raw:        rawWith(1.0, 3.5),
			scoreDelta: 7,
			wantState:  contracts.StateHot,
		},
		{
			name:       "score jump alone lifts COLD to WARM",
			state:      contracts.StateCold,
			raw:        rawWith(1.0, 1.0),
			scoreDelta: 6,
			wantState:  contracts.StateWarm,
			wantReason: "score_jump",
		},
		{
			name:       "hot fatigue after 48 cycles",
			state:      contracts.StateHot,
			consHot:    50,
			raw:        rawWith(1.0, 1.0),
			wantState:  contracts.StateWarm,
			wantReason: "natural_decay",
		},
		{
			name:      "fresh pressure overrides fatigue",
			state:     contracts.StateHot,
			consHot:   50,
			raw:       rawWith(3.5, 1.0),
			wantState: contracts.StateHot,
		},
		{
			name:       "quiet HOT decays after 6 cycles",
			state:      contracts.StateHot,
			consHot:    7,
			raw:        rawWith(1.0, 1.0),
			wantState:  contracts.StateWarm,
			wantReason: "natural_decay",
		},
		{
			name:      "quiet young HOT stays",
			state:     contracts.StateHot,
			consHot:   2,
			raw:       rawWith(1.0, 1.0),
			wantState: contracts.StateHot,
		},
		{
			name:      "missing volume data defaults neutral",
			state:     contracts.StateCold,
			raw:       &contracts.RawAttributes{Ticker: "TEST", PriceChangePct: fp(1.0)},
			wantState: contracts.StateCold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &contracts.InstrumentState{
				Ticker:         "TEST",
				State:          tt.state,
				ConsecutiveHot: tt.consHot,
			}

			got := EvaluateSignals(st, tt.raw, tt.scoreDelta, now)

			if got.NewState != tt.wantState {
				t.Errorf("NewState = %s, want %s", got.NewState, tt.wantState)
			}
			if tt.wantReason != "" && got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.Changed != (tt.wantState != tt.state) {
				t.Errorf("Changed = %v", got.Changed)
			}
		})
	}
}

func TestEvaluateSignalsExpiredPromotionDecays(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	st := &contracts.InstrumentState{
		Ticker:           "TEST",
		State:            contracts.StateHot,
		PromotionExpires: &past,
	}

	got := EvaluateSignals(st, rawWith(1.0, 1.0), 0, now)
	if got.NewState != contracts.StateWarm {
		t.Errorf("expired HOT should decay to WARM, got %s", got.NewState)
	}
}
