package dashboard

import (
	"time"

	"github.com/seesaw/mfses/internal/contracts"
)

// InstrumentView is the flattened projection one dashboard row shows:
// identity, current state, latest score and the market data behind it.
type InstrumentView struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	Tier   int    `json:"tier"`

	State         contracts.State `json:"state"`
	Priority      int             `json:"priority"`
	NextUpdateDue *time.Time      `json:"next_update_due,omitempty"`

	Total           *int     `json:"total,omitempty"`
	CompositeShort  *float64 `json:"composite_short,omitempty"`
	CompositeMid    *float64 `json:"composite_mid,omitempty"`
	CompositeLong   *float64 `json:"composite_long,omitempty"`
	GrahamValue     *float64 `json:"graham_value,omitempty"`
	UpsidePct       *float64 `json:"upside_pct,omitempty"`
	TripleCrown     bool     `json:"triple_crown"`
	ValueTrap       bool     `json:"value_trap"`
	ExpensiveGrowth bool     `json:"expensive_growth"`

	Price          *float64   `json:"price,omitempty"`
	PriceChangePct *float64   `json:"price_change_pct,omitempty"`
	MarketCap      *float64   `json:"market_cap,omitempty"`
	DividendYield  *float64   `json:"dividend_yield,omitempty"`
	DataQuality    *float64   `json:"data_quality,omitempty"`
	ScoredAt       *time.Time `json:"scored_at,omitempty"`
}

// Filter narrows the instrument projection.
type Filter struct {
	Sector string
	State  contracts.State
	Limit  int
}

// Summary is the system-level dashboard header.
type Summary struct {
	TotalActive     int                     `json:"total_active"`
	StateCounts     map[contracts.State]int `json:"state_counts"`
	ScoredLastHour  int                     `json:"scored_last_hour"`
	ScoredLastDay   int                     `json:"scored_last_day"`
	TripleCrowns    int                     `json:"triple_crowns"`
	APICallsLastDay int                     `json:"api_calls_last_day"`

	LastRun *contracts.PipelineRun `json:"last_run,omitempty"`
}
