package scoring

import "math"

// Component scorers. Each maps one raw attribute onto a 0..20 integer;
// a nil input scores neutral rather than failing the instrument.

type threshold struct {
	min   float64
	score int
}

var marketCapThresholds = []threshold{
	{1_000_000_000_000, 20},
	{500_000_000_000, 19},
	{200_000_000_000, 18},
	{100_000_000_000, 17},
	{50_000_000_000, 15},
	{20_000_000_000, 13},
	{10_000_000_000, 12},
	{5_000_000_000, 10},
	{2_000_000_000, 8},
	{1_000_000_000, 6},
}

const marketCapDefault = 4

func scoreMarketCap(marketCap *float64) int {
	if marketCap == nil || *marketCap <= 0 {
		return marketCapDefault
	}
	for _, t := range marketCapThresholds {
		if *marketCap >= t.min {
			return t.score
		}
	}
	return marketCapDefault
}

// scoreAnalystRating maps the 1..5 consensus scale onto 0..20.
func scoreAnalystRating(rating *float64) int {
	if rating == nil {
		return 10
	}
	score := int(math.Round((*rating - 1) * 5))
	return clamp(score)
}

var epsGrowthThresholds = []threshold{
	{150, 20},
	{100, 19},
	{75, 18},
	{50, 17},
	{40, 16},
	{30, 15},
	{25, 14},
	{20, 13},
	{15, 12},
	{10, 11},
	{5, 10},
	{0, 8},
	{-10, 6},
	{-25, 4},
}

const epsGrowthDefault = 2

func scoreEPSGrowth(growthPct *float64) int {
	if growthPct == nil {
		return 8
	}
	for _, t := range epsGrowthThresholds {
		if *growthPct >= t.min {
			return t.score
		}
	}
	return epsGrowthDefault
}

// scoreOBVTrend scores the on-balance-volume trend plus any
// price/volume divergence. Starts neutral at 10.
func scoreOBVTrend(trend, divergence *float64) int {
	if trend == nil {
		return 10
	}

	score := 10

	switch tv := *trend; {
	case tv > 50:
		score += 5
	case tv > 25:
		score += 4
	case tv > 10:
		score += 3
	case tv > 5:
		score += 2
	case tv > 0:
		score += 1
	case tv > -5:
		// flat
	case tv > -10:
		score -= 1
	case tv > -25:
		score -= 3
	default:
		score -= 5
	}

	// OBV rising while price falls is bullish divergence.
	if divergence != nil {
		switch dv := *divergence; {
		case dv > 20:
			score += 5
		case dv > 10:
			score += 3
		case dv > 5:
			score += 2
		case dv > -5:
			// no divergence
		case dv > -10:
			score -= 2
		case dv > -20:
			score -= 3
		default:
			score -= 5
		}
	}

	return clamp(score)
}

var balanceThresholds = []threshold{
	{0.1, 20},
	{0.2, 19},
	{0.3, 18},
	{0.5, 16},
	{0.7, 14},
	{1.0, 12},
	{1.5, 10},
	{2.0, 8},
	{3.0, 6},
}

const (
	balanceDefault        = 4
	balanceNegativeEquity = 2
)

// scoreBalance scores debt-to-equity. Negative equity is scored worst
// regardless of the ratio; a negative ratio means net cash.
func scoreBalance(debtToEquity, totalEquity *float64) int {
	if totalEquity != nil && *totalEquity < 0 {
		return balanceNegativeEquity
	}
	if debtToEquity == nil {
		return 10
	}
	if *debtToEquity < 0 {
		return 20
	}
	for _, t := range balanceThresholds {
		if *debtToEquity <= t.min {
			return t.score
		}
	}
	return balanceDefault
}

var valuationThresholds = []threshold{
	{150, 20},
	{100, 19},
	{75, 18},
	{50, 17},
	{40, 16},
	{30, 15},
	{20, 14},
	{10, 13},
	{5, 12},
	{0, 11},
	{-10, 10},
	{-20, 8},
	{-30, 6},
	{-50, 4},
}

const valuationDefault = 2

func scoreValuation(upsidePct *float64) int {
	if upsidePct == nil {
		return 10
	}
	for _, t := range valuationThresholds {
		if *upsidePct >= t.min {
			return t.score
		}
	}
	return valuationDefault
}

// scoreShortInterest is inverse: heavy shorting scores low.
func scoreShortInterest(pct *float64) int {
	if pct == nil {
		return 10
	}
	switch p := *pct; {
	case p < 1:
		return 20
	case p < 2:
		return 18
	case p < 3:
		return 16
	case p < 5:
		return 14
	case p < 7:
		return 12
	case p < 10:
		return 10
	case p < 15:
		return 8
	case p < 20:
		return 6
	case p < 30:
		return 4
	default:
		return 2
	}
}

var dividendYieldThresholds = []threshold{
	{6.0, 18},
	{5.0, 17},
	{4.0, 16},
	{3.5, 15},
	{3.0, 14},
	{2.5, 13},
	{2.0, 12},
	{1.5, 11},
	{1.0, 10},
	{0.5, 8},
}

const (
	dividendNoYield     = 5
	payoutUnsustainable = -5
	payoutRisky         = -2
	payoutRoomToGrow    = 2
)

// scoreDividends scores yield with a payout-ratio adjustment. Payout
// only matters when there actually is a dividend.
func scoreDividends(yield, payoutRatio *float64) int {
	base := dividendNoYield
	if yield != nil && *yield > 0 {
		for _, t := range dividendYieldThresholds {
			if *yield >= t.min {
				base = t.score
				break
			}
		}
	}

	adjustment := 0
	if payoutRatio != nil && yield != nil && *yield > 0 {
		switch {
		case *payoutRatio > 100:
			adjustment = payoutUnsustainable
		case *payoutRatio > 80:
			adjustment = payoutRisky
		case *payoutRatio < 40:
			adjustment = payoutRoomToGrow
		}
	}

	return clamp(base + adjustment)
}

// Factor blends.

func moatScore(marketCap, analystRating *float64) int {
	combined := float64(scoreMarketCap(marketCap))*0.67 + float64(scoreAnalystRating(analystRating))*0.33
	return clamp(int(math.Round(combined)))
}

func growthScore(epsGrowth, obvTrend, obvDivergence *float64) int {
	combined := float64(scoreEPSGrowth(epsGrowth))*0.66 + float64(scoreOBVTrend(obvTrend, obvDivergence))*0.33
	return clamp(int(math.Round(combined)))
}

func sentimentScore(analystRating, shortInterest *float64) int {
	combined := float64(scoreAnalystRating(analystRating))*0.5 + float64(scoreShortInterest(shortInterest))*0.5
	return clamp(int(math.Round(combined)))
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 20 {
		return 20
	}
	return score
}
