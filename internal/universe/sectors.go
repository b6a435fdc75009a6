package universe

import "strings"

// SectorUnknown is assigned when no keyword matches the SIC
// description.
const SectorUnknown = "Unknown"

// Sectors is the sector taxonomy instruments are classified into.
var Sectors = []string{
	"Technology", "Healthcare", "Financials", "Consumer",
	"Consumer Staples", "Energy", "Industrials", "Utilities",
	"Communication", "Real Estate", "Materials",
}

// sectorKeywords maps SIC description keywords to sectors. Order
// matters: the first matching keyword wins, so broader terms like
// "consumer" must come before narrower ones like "food".
var sectorKeywords = []struct {
	keyword string
	sector  string
}{
	{"technology", "Technology"},
	{"software", "Technology"},
	{"semiconductors", "Technology"},
	{"electronic", "Technology"},
	{"computer", "Technology"},
	{"healthcare", "Healthcare"},
	{"pharmaceutical", "Healthcare"},
	{"biotechnology", "Healthcare"},
	{"medical", "Healthcare"},
	{"finance", "Financials"},
	{"banking", "Financials"},
	{"insurance", "Financials"},
	{"investment", "Financials"},
	{"real estate", "Real Estate"},
	{"reit", "Real Estate"},
	{"consumer", "Consumer"},
	{"retail", "Consumer"},
	{"food", "Consumer Staples"},
	{"beverage", "Consumer Staples"},
	{"household", "Consumer Staples"},
	{"energy", "Energy"},
	{"oil", "Energy"},
	{"gas", "Energy"},
	{"petroleum", "Energy"},
	{"industrial", "Industrials"},
	{"manufacturing", "Industrials"},
	{"aerospace", "Industrials"},
	{"defense", "Industrials"},
	{"transportation", "Industrials"},
	{"utility", "Utilities"},
	{"electric", "Utilities"},
	{"water", "Utilities"},
	{"communication", "Communication"},
	{"telecom", "Communication"},
	{"media", "Communication"},
	{"entertainment", "Communication"},
	{"material", "Materials"},
	{"chemical", "Materials"},
	{"mining", "Materials"},
	{"metal", "Materials"},
}

// ClassifySector maps a SIC description to a sector by keyword.
func ClassifySector(sicDescription string) string {
	if sicDescription == "" {
		return SectorUnknown
	}
	desc := strings.ToLower(sicDescription)
	for _, kw := range sectorKeywords {
		if strings.Contains(desc, kw.keyword) {
			return kw.sector
		}
	}
	return SectorUnknown
}
