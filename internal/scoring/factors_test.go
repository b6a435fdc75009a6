package scoring

import "testing"

func fp(v float64) *float64 { return &v }

func TestScoreMarketCap(t *testing.T) {
	tests := []struct {
		cap  *float64
		want int
	}{
		{fp(1_500_000_000_000), 20},
		{fp(500_000_000_000), 19},
		{fp(60_000_000_000), 15},
		{fp(1_000_000_000), 6},
		{fp(500_000_000), 4},
		{fp(0), 4},
		{nil, 4},
	}
	for _, tt := range tests {
		if got := scoreMarketCap(tt.cap); got != tt.want {
			t.Errorf("scoreMarketCap(%v) = %d, want %d", tt.cap, got, tt.want)
		}
	}
}

func TestScoreAnalystRating(t *testing.T) {
	tests := []struct {
		rating *float64
		want   int
	}{
		{fp(1.0), 0},
		{fp(3.0), 10},
		{fp(5.0), 20},
		{fp(0.5), 0},  // clamped
		{fp(6.0), 20}, // clamped
		{nil, 10},
	}
	for _, tt := range tests {
		if got := scoreAnalystRating(tt.rating); got != tt.want {
			t.Errorf("scoreAnalystRating(%v) = %d, want %d", tt.rating, got, tt.want)
		}
	}
}

func TestScoreEPSGrowth(t *testing.T) {
	tests := []struct {
		growth *float64
		want   int
	}{
		{fp(200), 20},
		{fp(30), 15},
		{fp(0), 8},
		{fp(-15), 6},
		{fp(-60), 2},
		{nil, 8},
	}
	for _, tt := range tests {
		if got := scoreEPSGrowth(tt.growth); got != tt.want {
			t.Errorf("scoreEPSGrowth(%v) = %d, want %d", tt.growth, got, tt.want)
		}
	}
}

func TestScoreBalance(t *testing.T) {
	tests := []struct {
		name   string
		de     *float64
		equity *float64
		want   int
	}{
		{"fortress", fp(0.1), fp(1e9), 20},
		{"moderate", fp(1.0), fp(1e9), 12},
		{"stretched", fp(2.5), fp(1e9), 6},
		{"leveraged", fp(5.0), fp(1e9), 4},
		{"net cash", fp(-0.5), fp(1e9), 20},
		{"negative equity trumps ratio", fp(0.1), fp(-1e6), 2},
		{"unknown", nil, nil, 10},
	}
	for _, tt := range tests {
		if got := scoreBalance(tt.de, tt.equity); got != tt.want {
			t.Errorf("%s: scoreBalance = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestScoreShortInterest(t *testing.T) {
	tests := []struct {
		pct  *float64
		want int
	}{
		{fp(0.5), 20},
		{fp(4), 14},
		{fp(12), 8},
		{fp(35), 2},
		{nil, 10},
	}
	for _, tt := range tests {
		if got := scoreShortInterest(tt.pct); got != tt.want {
			t.Errorf("scoreShortInterest(%v) = %d, want %d", tt.pct, got, tt.want)
		}
	}
}

func TestScoreDividends(t *testing.T) {
	tests := []struct {
		name   string
		yield  *float64
		payout *float64
		want   int
	}{
		{"no dividend", nil, nil, 5},
		{"zero yield", fp(0), fp(50), 5},
		{"healthy payer with room", fp(3.5), fp(30), 17},
		{"high yield risky payout", fp(6.5), fp(90), 16},
		{"unsustainable payout", fp(5.5), fp(120), 12},
		{"payout ignored without yield", nil, fp(20), 5},
	}
	for _, tt := range tests {
		if got := scoreDividends(tt.yield, tt.payout); got != tt.want {
			t.Errorf("%s: scoreDividends = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestScoreOBVTrend(t *testing.T) {
	tests := []struct {
		name       string
		trend      *float64
		divergence *float64
		want       int
	}{
		{"unknown is neutral", nil, fp(30), 10},
		{"strong trend with divergence", fp(30), fp(10), 16},
		{"collapse with bearish divergence", fp(-30), fp(-25), 0},
		{"flat no divergence", fp(0), fp(0), 10},
		{"clamped high", fp(60), fp(25), 20},
	}
	for _, tt := range tests {
		if got := scoreOBVTrend(tt.trend, tt.divergence); got != tt.want {
			t.Errorf("%s: scoreOBVTrend = %d, want %d", tt.name, got, tt.want)
		}
	}
}
