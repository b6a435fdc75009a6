package contracts

import "time"

// Score is the scored view of one instrument. Factor scores are 0..20
// integers; composites are weighted horizon blends on the same scale.
type Score struct {
	Ticker string `json:"ticker"`

	Moat      int `json:"moat"`
	Growth    int `json:"growth"`
	Balance   int `json:"balance"`
	Valuation int `json:"valuation"`
	Sentiment int `json:"sentiment"`
	Dividend  int `json:"dividend"`

	Total int `json:"total"` // sum of the six factors, max 120

	CompositeShort float64 `json:"composite_short"`
	CompositeMid   float64 `json:"composite_mid"`
	CompositeLong  float64 `json:"composite_long"`

	GrahamValue *float64 `json:"graham_value,omitempty"` // nil when EPS unusable
	UpsidePct   *float64 `json:"upside_pct,omitempty"`   // graham value vs current price

	TripleCrown     bool `json:"triple_crown"`
	ValueTrap       bool `json:"value_trap"`
	ExpensiveGrowth bool `json:"expensive_growth"`

	DataQuality float64   `json:"data_quality"`
	ScoredAt    time.Time `json:"scored_at"`
}

// ScoreSnapshot is a historical copy of a Score, kept for trend
// queries and pruned by the retention job. At most one row exists per
// instrument per day, written only when the score changed.
type ScoreSnapshot struct {
	ID       int64     `json:"id"`
	Ticker   string    `json:"ticker"`
	Date     time.Time `json:"snapshot_date"`
	Total    int       `json:"total"`
	Short    float64   `json:"composite_short"`
	Mid      float64   `json:"composite_mid"`
	Long     float64   `json:"composite_long"`
	ScoredAt time.Time `json:"scored_at"`
}
