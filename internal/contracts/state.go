package contracts

import "time"

// State is the activity state of an instrument. It decides how often
// the pipeline refreshes that instrument's data.
type State string

const (
	StateHot    State = "HOT"
	StateWarm   State = "WARM"
	StateCold   State = "COLD"
	StateFrozen State = "FROZEN"
)

// Valid reports whether s is one of the four known states.
func (s State) Valid() bool {
	switch s {
	case StateHot, StateWarm, StateCold, StateFrozen:
		return true
	}
	return false
}

// Interval returns the refresh interval for the state. Unknown states
// fall back to the COLD interval so a corrupted row never refreshes
// faster than intended.
func (s State) Interval() time.Duration {
	switch s {
	case StateHot:
		return 30 * time.Minute
	case StateWarm:
		return 120 * time.Minute
	case StateFrozen:
		return 1440 * time.Minute
	default:
		return 360 * time.Minute
	}
}

// Priority returns the scheduling priority of the state. Higher is
// scheduled first.
func (s State) Priority() int {
	switch s {
	case StateHot:
		return 4
	case StateWarm:
		return 3
	case StateCold:
		return 2
	case StateFrozen:
		return 1
	default:
		return 0
	}
}

// InstrumentState is the per-instrument scheduling row. One row per
// instrument, replaced wholesale on every transition.
type InstrumentState struct {
	Ticker           string     `json:"ticker"`
	State            State      `json:"state"`
	PreviousState    State      `json:"previous_state,omitempty"`
	ConsecutiveHot   int        `json:"consecutive_hot"`
	PromotionReason  string     `json:"promotion_reason,omitempty"`
	PromotedAt       *time.Time `json:"promoted_at,omitempty"`
	PromotionExpires *time.Time `json:"promotion_expires,omitempty"`
	NextUpdateDue    time.Time  `json:"next_update_due"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PromotionExpired reports whether a HOT promotion has lapsed at the
// given time.
func (st *InstrumentState) PromotionExpired(now time.Time) bool {
	return st.State == StateHot &&
		st.PromotionExpires != nil &&
		now.After(*st.PromotionExpires)
}
