package contracts

import "time"

// Instrument is a tradable symbol in the tracked universe.
type Instrument struct {
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector"`
	Tier      int       `json:"tier"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Universe tiers by market capitalization.
const (
	TierMega  = 1 // >= $100B
	TierLarge = 2 // >= $10B
	TierMid   = 3 // >= $2B
	TierSmall = 4 // >= $300M
	TierMicro = 5
)

// TierForMarketCap maps a market capitalization in dollars to a tier.
func TierForMarketCap(marketCap float64) int {
	switch {
	case marketCap >= 100_000_000_000:
		return TierMega
	case marketCap >= 10_000_000_000:
		return TierLarge
	case marketCap >= 2_000_000_000:
		return TierMid
	case marketCap >= 300_000_000:
		return TierSmall
	default:
		return TierMicro
	}
}
