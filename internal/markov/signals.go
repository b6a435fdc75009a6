package markov

import (
	"math"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
)

// Signal evaluation thresholds. Probability boosts accumulate across
// independent signals before the successor state is resolved.
const (
	volumeSpikeExtreme  = 3.0
	volumeSpikeHigh     = 2.0
	volumeSpikeModerate = 1.5
	volumeDead          = 0.5

	priceSwingLarge    = 5.0
	priceSwingModerate = 3.0
	priceFlat          = 0.5

	scoreJumpDelta = 5

	hotFatigueCycles = 48
	naturalDecayHot  = 6
)

// Evaluation is the outcome of signal evaluation for one instrument.
type Evaluation struct {
	NewState contracts.State
	Reason   string
	Changed  bool
}

// EvaluateSignals decides whether freshly collected data warrants a
// state change. scoreDelta is the change in total score since the
// previous scoring pass; pass 0 when no previous score exists.
func EvaluateSignals(st *contracts.InstrumentState, raw *contracts.RawAttributes, scoreDelta int, now time.Time) Evaluation {
	volumeRatio := 1.0
	if vr := raw.VolumeRatio(); vr != nil {
		volumeRatio = *vr
	}

	priceChange := 0.0
	if raw.PriceChangePct != nil {
		priceChange = math.Abs(*raw.PriceChangePct)
	}

	var hotProb, warmProb, coldProb, frozenProb float64
	var reason string

	// Volume signals
	switch {
	case volumeRatio > volumeSpikeExtreme:
		hotProb += 0.40
		reason = "volume_spike_3x"
	case volumeRatio > volumeSpikeHigh:
		hotProb += 0.30
		reason = "volume_spike_2x"
	case volumeRatio > volumeSpikeModerate:
		warmProb += 0.20
		if reason == "" {
			reason = "volume_spike_1.5x"
		}
	case volumeRatio < volumeDead:
		frozenProb += 0.20
		if reason == "" {
			reason = "low_volume"
		}
	}

	// Price signals
	switch {
	case priceChange > priceSwingLarge:
		hotProb += 0.30
		if reason == "" {
			reason = "price_swing_5pct"
		}
	case priceChange > priceSwingModerate:
		hotProb += 0.20
		if reason == "" {
			reason = "price_swing_3pct"
		}
	case priceChange < priceFlat:
		coldProb += 0.10
	}

	// Score movement
	if scoreDelta >= scoreJumpDelta {
		hotProb += 0.25
		if reason == "" {
			reason = "score_jump"
		}
	}

	newState := resolveState(st, hotProb, warmProb, coldProb, frozenProb, now)

	if newState != st.State && reason == "" {
		reason = "natural_decay"
	}

	return Evaluation{
		NewState: newState,
		Reason:   reason,
		Changed:  newState != st.State,
	}
}

// resolveState maps accumulated probabilities onto a successor state.
// Demotions move one level at a time; only a strong signal promotes
// straight to HOT.
func resolveState(st *contracts.InstrumentState, hotProb, warmProb, coldProb, frozenProb float64, now time.Time) contracts.State {
	current := st.State
	if !current.Valid() {
		current = contracts.StateCold
	}

	// Expired promotion decays one level even before other signals.
	if st.PromotionExpired(now) {
		return contracts.StateWarm
	}

	// HOT fatigue: held HOT too long without fresh pressure.
	if current == contracts.StateHot && st.ConsecutiveHot > hotFatigueCycles && hotProb < 0.2 {
		return contracts.StateWarm
	}

	if hotProb >= 0.30 {
		return contracts.StateHot
	}

	if hotProb >= 0.15 || warmProb >= 0.20 {
		if current == contracts.StateCold || current == contracts.StateFrozen {
			return contracts.StateWarm
		}
		return current
	}

	if frozenProb >= 0.15 && hotProb < 0.1 && warmProb < 0.1 {
		switch current {
		case contracts.StateCold:
			return contracts.StateFrozen
		case contracts.StateWarm:
			return contracts.StateCold
		}
		return current
	}

	if coldProb >= 0.10 && hotProb < 0.1 {
		if current == contracts.StateWarm {
			return contracts.StateCold
		}
		return current
	}

	// Nothing happening: HOT instruments slowly cool down.
	if hotProb < 0.05 && warmProb < 0.05 {
		if current == contracts.StateHot && st.ConsecutiveHot > naturalDecayHot {
			return contracts.StateWarm
		}
	}

	return current
}
