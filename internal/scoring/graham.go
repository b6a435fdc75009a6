package scoring

import "math"

// grahamOriginalYield is the AAA corporate bond yield when the formula
// was published (1962).
const grahamOriginalYield = 4.4

// Valuer computes an intrinsic value estimate for an instrument.
type Valuer interface {
	// Value returns the intrinsic value per share, or nil when the
	// inputs cannot support an estimate.
	Value(eps, epsGrowthPct *float64) *float64
}

// GrahamValuer is the bond-adjusted Graham formula:
//
//	value = (EPS x (8.5 + 2g) x 4.4) / Y
//
// where g is the growth rate capped to [0, 25] and Y is the current
// AAA corporate bond yield.
type GrahamValuer struct {
	AAAYield float64
}

// NewGrahamValuer creates a valuer with the given AAA yield. The yield
// comes from config and should be refreshed quarterly.
func NewGrahamValuer(aaaYield float64) *GrahamValuer {
	return &GrahamValuer{AAAYield: aaaYield}
}

// Value implements Valuer. Returns nil when EPS is missing or
// non-positive; the formula is meaningless for unprofitable companies.
func (g *GrahamValuer) Value(eps, epsGrowthPct *float64) *float64 {
	if eps == nil || *eps <= 0 || g.AAAYield <= 0 {
		return nil
	}

	growth := 0.0
	if epsGrowthPct != nil {
		growth = *epsGrowthPct
	}
	growth = math.Min(math.Max(growth, 0), 25)

	value := (*eps * (8.5 + 2*growth) * grahamOriginalYield) / g.AAAYield
	value = math.Round(value*10000) / 10000
	return &value
}

// upsideAgainst returns the upside of value over price in percent,
// rounded to two decimals, or nil when either side is unusable.
func upsideAgainst(value, price *float64) *float64 {
	if value == nil || price == nil || *price <= 0 {
		return nil
	}
	upside := (*value - *price) / *price * 100
	upside = math.Round(upside*100) / 100
	return &upside
}
