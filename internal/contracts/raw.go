package contracts

import "time"

// RawAttributes is the flattened per-instrument snapshot of everything
// the collector gathered in one pass. Pointer fields are nil when the
// upstream source had no value; the scoring engine treats nil as
// "unknown" and scores it neutrally.
type RawAttributes struct {
	Ticker string `json:"ticker"`

	// Market snapshot
	Price          *float64 `json:"price,omitempty"`
	PriceChangePct *float64 `json:"price_change_pct,omitempty"`
	Volume         *float64 `json:"volume,omitempty"`
	AvgVolume30D   *float64 `json:"avg_volume_30d,omitempty"`
	MarketCap      *float64 `json:"market_cap,omitempty"`

	// Fundamentals
	EPSCurrent    *float64 `json:"eps_current,omitempty"`
	EPSGrowthPct  *float64 `json:"eps_growth_pct,omitempty"`
	DebtToEquity  *float64 `json:"debt_to_equity,omitempty"`
	TotalEquity   *float64 `json:"total_equity,omitempty"`
	AnalystRating *float64 `json:"analyst_rating,omitempty"` // 1..5 scale
	PriceTarget   *float64 `json:"price_target,omitempty"`
	ShortInterest *float64 `json:"short_interest_pct,omitempty"`

	// Volume trend
	OBVTrend      *float64 `json:"obv_trend,omitempty"`      // pct change in OBV over 20 days
	OBVDivergence *float64 `json:"obv_divergence,omitempty"` // OBV trend minus price trend

	// Dividends
	DividendYield    *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio      *float64 `json:"payout_ratio,omitempty"`
	DividendGrowth5Y *float64 `json:"dividend_growth_5y,omitempty"`
	DividendYears    *int     `json:"dividend_years,omitempty"` // consecutive increase years

	// Collection metadata
	DataQuality float64   `json:"data_quality"` // 0..100
	CollectedAt time.Time `json:"collected_at"`
}

// UpsidePct returns the analyst upside to the price target in percent,
// or nil when either side is missing or price is zero.
func (r *RawAttributes) UpsidePct() *float64 {
	if r.Price == nil || r.PriceTarget == nil || *r.Price == 0 {
		return nil
	}
	v := (*r.PriceTarget - *r.Price) / *r.Price * 100
	return &v
}

// VolumeRatio returns today's volume relative to the 30 day average,
// or nil when either side is missing or the average is zero.
func (r *RawAttributes) VolumeRatio() *float64 {
	if r.Volume == nil || r.AvgVolume30D == nil || *r.AvgVolume30D == 0 {
		return nil
	}
	v := *r.Volume / *r.AvgVolume30D
	return &v
}
