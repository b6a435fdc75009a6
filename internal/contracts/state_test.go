package contracts

import (
	"testing"
	"time"
)

func TestStateInterval(t *testing.T) {
	tests := []struct {
		state State
		want  time.Duration
	}{
		{StateHot, 30 * time.Minute},
		{StateWarm, 120 * time.Minute},
		{StateCold, 360 * time.Minute},
		{StateFrozen, 1440 * time.Minute},
		{State("GARBAGE"), 360 * time.Minute}, // fail safe to COLD
	}

	for _, tt := range tests {
		if got := tt.state.Interval(); got != tt.want {
			t.Errorf("%s.Interval() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestStatePriorityOrdering(t *testing.T) {
	if !(StateHot.Priority() > StateWarm.Priority() &&
		StateWarm.Priority() > StateCold.Priority() &&
		StateCold.Priority() > StateFrozen.Priority()) {
		t.Error("priority must be strictly HOT > WARM > COLD > FROZEN")
	}
}

func TestPromotionExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	hot := &InstrumentState{Ticker: "AAPL", State: StateHot, PromotionExpires: &past}
	if !hot.PromotionExpired(now) {
		t.Error("HOT with past expiry should be expired")
	}

	hotLive := &InstrumentState{Ticker: "AAPL", State: StateHot, PromotionExpires: &future}
	if hotLive.PromotionExpired(now) {
		t.Error("HOT with future expiry should not be expired")
	}

	warm := &InstrumentState{Ticker: "AAPL", State: StateWarm, PromotionExpires: &past}
	if warm.PromotionExpired(now) {
		t.Error("only HOT promotions can expire")
	}

	noExpiry := &InstrumentState{Ticker: "AAPL", State: StateHot}
	if noExpiry.PromotionExpired(now) {
		t.Error("nil expiry never expires")
	}
}

func TestTierForMarketCap(t *testing.T) {
	tests := []struct {
		cap  float64
		want int
	}{
		{250_000_000_000, TierMega},
		{100_000_000_000, TierMega},
		{50_000_000_000, TierLarge},
		{5_000_000_000, TierMid},
		{500_000_000, TierSmall},
		{100_000_000, TierMicro},
	}

	for _, tt := range tests {
		if got := TierForMarketCap(tt.cap); got != tt.want {
			t.Errorf("TierForMarketCap(%v) = %d, want %d", tt.cap, got, tt.want)
		}
	}
}
