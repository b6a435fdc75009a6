package universe

import (
	"testing"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/internal/external/polygon"
)

func f64(v float64) *float64 { return &v }

func TestClassifySector(t *testing.T) {
	tests := []struct {
		name string
		sic  string
		want string
	}{
		{"software", "Services-Prepackaged Software", "Technology"},
		{"semis", "Semiconductors & Related Devices", "Technology"},
		{"pharma", "Pharmaceutical Preparations", "Healthcare"},
		{"bank", "National Commercial Banking", "Financials"},
		{"reit", "Real Estate Investment Trusts", "Real Estate"},
		{"oil", "Crude Petroleum & Natural Gas", "Energy"},
		{"utility", "Electric Services", "Utilities"},
		{"telecom", "Telecom Services", "Communication"},
		{"chemicals", "Industrial Organic Chemicals", "Industrials"},
		{"retail", "Retail-Variety Stores", "Consumer"},
		{"empty", "", "Unknown"},
		{"no match", "Blank Checks", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySector(tt.sic); got != tt.want {
				t.Errorf("ClassifySector(%q) = %q, want %q", tt.sic, got, tt.want)
			}
		})
	}
}

func TestTradableTicker(t *testing.T) {
	tests := []struct {
		ticker string
		want   bool
	}{
		{"AAPL", true},
		{"BRK.B", true},
		{"BRK.A", false},
		{"ABCDEF", false},
		{"SPYW", true},
	}
	for _, tt := range tests {
		if got := tradableTicker(tt.ticker); got != tt.want {
			t.Errorf("tradableTicker(%q) = %v, want %v", tt.ticker, got, tt.want)
		}
	}
}

func TestBuildUniverseSeedsAlwaysIncluded(t *testing.T) {
	universe := BuildUniverse(nil, DefaultMaxInstruments, DefaultMinMarketCap)

	if len(universe) != len(SeedTickers) {
		t.Fatalf("universe size = %d, want %d seeds", len(universe), len(SeedTickers))
	}
	for _, inst := range universe {
		if !inst.Active {
			t.Fatalf("%s must start active", inst.Ticker)
		}
	}
}

func TestBuildUniverseEnrichesSeedsFromListings(t *testing.T) {
	listings := []polygon.TickerListing{
		{Ticker: "AAPL", Name: "Apple Inc.", MarketCap: f64(3.4e12), SICDescription: "Electronic Computers"},
	}

	universe := BuildUniverse(listings, DefaultMaxInstruments, DefaultMinMarketCap)

	var aapl *contracts.Instrument
	for _, inst := range universe {
		if inst.Ticker == "AAPL" {
			aapl = inst
			break
		}
	}
	if aapl == nil {
		t.Fatal("AAPL missing from universe")
	}
	if aapl.Name != "Apple Inc." {
		t.Errorf("name = %q", aapl.Name)
	}
	if aapl.Sector != "Technology" {
		t.Errorf("sector = %q", aapl.Sector)
	}
	if aapl.Tier != contracts.TierMega {
		t.Errorf("tier = %d, want mega", aapl.Tier)
	}
}

func TestBuildUniverseTrimsByMarketCap(t *testing.T) {
	listings := []polygon.TickerListing{
		{Ticker: "BIGCO", MarketCap: f64(50e9), SICDescription: "Pharmaceutical Preparations"},
		{Ticker: "MIDCO", MarketCap: f64(5e9)},
		{Ticker: "SMLCO", MarketCap: f64(500e6)},
		{Ticker: "TINY", MarketCap: f64(50e6)},
		{Ticker: "NOCAP"},
	}

	max := len(SeedTickers) + 2
	universe := BuildUniverse(listings, max, DefaultMinMarketCap)

	if len(universe) != max {
		t.Fatalf("universe size = %d, want %d", len(universe), max)
	}

	got := map[string]bool{}
	for _, inst := range universe {
		got[inst.Ticker] = true
	}
	if !got["BIGCO"] || !got["MIDCO"] {
		t.Error("largest discovered caps must fill the remaining slots")
	}
	if got["SMLCO"] {
		t.Error("SMLCO must be trimmed once slots run out")
	}
	if got["TINY"] || got["NOCAP"] {
		t.Error("below-minimum and capless listings must be filtered")
	}
}

func TestBuildUniverseDefaultsWithoutListingData(t *testing.T) {
	universe := BuildUniverse(nil, DefaultMaxInstruments, DefaultMinMarketCap)

	for _, inst := range universe {
		if inst.Ticker != "XOM" {
			continue
		}
		if inst.Name != "XOM" {
			t.Errorf("name fallback = %q, want ticker", inst.Name)
		}
		if inst.Sector != SectorUnknown {
			t.Errorf("sector = %q, want unknown without a listing", inst.Sector)
		}
		if inst.Tier != contracts.TierSmall {
			t.Errorf("tier = %d, want default small", inst.Tier)
		}
		return
	}
	t.Fatal("XOM missing from seeds")
}
