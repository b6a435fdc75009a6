package universe

// SeedTickers are always included in the universe regardless of what
// the reference listing returns. Curated large caps across every
// sector.
var SeedTickers = []string{
	// Mega cap tech
	"AAPL", "MSFT", "NVDA", "GOOGL", "GOOG", "AMZN", "META", "TSLA", "AVGO", "ORCL",
	"CRM", "ADBE", "AMD", "INTC", "CSCO", "IBM", "NOW", "QCOM", "TXN", "AMAT",
	"INTU", "MU", "LRCX", "KLAC", "SNPS", "CDNS", "MRVL", "PANW", "CRWD", "FTNT",
	"PLTR", "NET", "DDOG", "ZS", "SNOW", "TEAM", "WDAY", "SHOP", "SQ", "COIN",

	// Healthcare
	"UNH", "JNJ", "LLY", "ABBV", "MRK", "PFE", "TMO", "ABT", "DHR", "AMGN",
	"BMY", "GILD", "ISRG", "VRTX", "REGN", "MDT", "SYK", "BSX", "ZTS", "CI",
	"ELV", "HCA", "MCK", "CVS", "HUM", "DXCM", "IDXX", "IQV", "MRNA", "BIIB",

	// Financials
	"BRK.B", "JPM", "V", "MA", "BAC", "WFC", "GS", "MS", "SPGI", "BLK",
	"C", "AXP", "SCHW", "CB", "MMC", "ICE", "CME", "PGR", "AON", "USB",
	"TFC", "AIG", "MET", "PRU", "ALL", "TRV", "AFL", "FITB", "KEY", "CFG",

	// Consumer discretionary
	"HD", "MCD", "NKE", "LOW", "SBUX", "TJX", "BKNG", "CMG", "ABNB", "ORLY",
	"MAR", "HLT", "GM", "F", "ROST", "DHI", "LEN", "YUM", "DG", "DLTR",
	"LULU", "DECK", "ULTA", "EBAY", "ETSY", "W", "RIVN", "LCID", "DASH", "UBER",

	// Consumer staples
	"PG", "KO", "PEP", "COST", "WMT", "PM", "MO", "CL", "MDLZ", "GIS",
	"KHC", "HSY", "K", "SJM", "CAG", "CPB", "STZ", "TAP", "KDP", "MNST",

	// Energy
	"XOM", "CVX", "COP", "SLB", "EOG", "MPC", "PSX", "VLO", "PXD", "OXY",
	"WMB", "KMI", "HAL", "DVN", "FANG", "HES", "BKR", "CTRA", "OKE", "TRGP",

	// Industrials
	"CAT", "GE", "HON", "UNP", "UPS", "RTX", "BA", "DE", "LMT", "NOC",
	"GD", "MMM", "ETN", "ITW", "EMR", "PH", "ROK", "FDX", "CSX", "NSC",
	"WM", "RSG", "CARR", "OTIS", "TT", "IR", "DOV", "SWK", "GWW", "FAST",

	// Utilities
	"NEE", "SO", "DUK", "D", "AEP", "SRE", "EXC", "XEL", "ED", "WEC",
	"ES", "AWK", "DTE", "PPL", "FE", "CEG", "VST", "AES", "CMS", "EVRG",

	// Communication
	"DIS", "CMCSA", "NFLX", "T", "VZ", "TMUS", "CHTR", "EA", "TTWO", "WBD",
	"PARA", "LYV", "MTCH", "RBLX", "U", "ZM", "PINS", "SNAP", "SPOT", "ROKU",

	// Real estate
	"PLD", "AMT", "CCI", "EQIX", "PSA", "SPG", "O", "DLR", "WELL", "AVB",
	"EQR", "VTR", "ARE", "MAA", "UDR", "ESS", "CPT", "INVH", "PEAK", "KIM",

	// Materials
	"LIN", "APD", "SHW", "ECL", "FCX", "NEM", "NUE", "DOW", "DD", "VMC",
	"MLM", "PPG", "ALB", "CF", "MOS", "IFF", "CE", "EMN", "PKG", "IP",
}
