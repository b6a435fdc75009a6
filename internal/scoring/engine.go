package scoring

import (
	"math"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
)

// Classifier thresholds on the 0..20 scale.
const (
	tripleCrownMin     = 14
	valueTrapValuation = 18
	valueTrapMoat      = 12
	valueTrapBalance   = 10
	expensiveGrowthMin = 18
	expensiveValuation = 8
)

// isTripleCrown flags an instrument strong across every horizon.
func isTripleCrown(short, mid, long float64) bool {
	return short >= tripleCrownMin && mid >= tripleCrownMin && long >= tripleCrownMin
}

// isValueTrap flags deep value without the moat or balance sheet to
// back it.
func isValueTrap(valuation, moat, balance int) bool {
	return valuation >= valueTrapValuation && (moat < valueTrapMoat || balance < valueTrapBalance)
}

// isExpensiveGrowth flags hyper growth priced far above earnings.
func isExpensiveGrowth(growth, valuation int) bool {
	return growth >= expensiveGrowthMin && valuation < expensiveValuation
}

// Engine turns raw attributes into a full Score. It is pure: no I/O,
// no clock beyond the injected now func, so identical inputs always
// produce identical scores.
type Engine struct {
	valuer Valuer
	now    func() time.Time
}

// NewEngine creates a scoring engine with the given valuer.
func NewEngine(valuer Valuer) *Engine {
	return &Engine{
		valuer: valuer,
		now:    time.Now,
	}
}

// Score computes the six factors, the horizon composites, and the
// classifier flags for one instrument.
func (e *Engine) Score(raw *contracts.RawAttributes) *contracts.Score {
	moat := moatScore(raw.MarketCap, raw.AnalystRating)
	growth := growthScore(raw.EPSGrowthPct, raw.OBVTrend, raw.OBVDivergence)
	balance := scoreBalance(raw.DebtToEquity, raw.TotalEquity)

	grahamValue := e.valuer.Value(raw.EPSCurrent, raw.EPSGrowthPct)
	upside := upsideAgainst(grahamValue, raw.Price)
	valuation := scoreValuation(upside)

	sentiment := sentimentScore(raw.AnalystRating, raw.ShortInterest)
	dividend := scoreDividends(raw.DividendYield, raw.PayoutRatio)

	score := &contracts.Score{
		Ticker:      raw.Ticker,
		Moat:        moat,
		Growth:      growth,
		Balance:     balance,
		Valuation:   valuation,
		Sentiment:   sentiment,
		Dividend:    dividend,
		Total:       moat + growth + balance + valuation + sentiment + dividend,
		GrahamValue: grahamValue,
		UpsidePct:   upside,
		DataQuality: raw.DataQuality,
		ScoredAt:    e.now(),
	}

	score.CompositeShort = round2(float64(growth)*0.35 + float64(valuation)*0.20 +
		float64(sentiment)*0.15 + float64(moat)*0.15 +
		float64(balance)*0.10 + float64(dividend)*0.05)

	score.CompositeMid = round2(float64(moat)*0.30 + float64(valuation)*0.20 +
		float64(growth)*0.20 + float64(balance)*0.15 +
		float64(dividend)*0.10 + float64(sentiment)*0.05)

	score.CompositeLong = round2(float64(moat)*0.30 + float64(balance)*0.25 +
		float64(dividend)*0.15 + float64(valuation)*0.15 +
		float64(growth)*0.10 + float64(sentiment)*0.05)

	score.TripleCrown = isTripleCrown(score.CompositeShort, score.CompositeMid, score.CompositeLong)
	score.ValueTrap = isValueTrap(valuation, moat, balance)
	score.ExpensiveGrowth = isExpensiveGrowth(growth, valuation)

	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
