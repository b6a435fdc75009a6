package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/internal/external/polygon"
	"github.com/seesaw/mfses/pkg/config"
	"github.com/seesaw/mfses/pkg/logger"
)

// barWindow is how many daily bars feed the volume average and OBV
// trend.
const (
	barWindowDays = 30
	barLimit      = 20
)

// Collector gathers raw attributes for instruments. Snapshot data is
// always fetched fresh; fundamentals, dividends, and bar history go
// through the response cache.
type Collector struct {
	client *polygon.Client
	cache  ResponseCache
	raws   contracts.RawRepository
	cfg    *config.Config
	logger *logger.Logger
	now    func() time.Time
}

// New creates a collector.
func New(client *polygon.Client, cache ResponseCache, raws contracts.RawRepository, cfg *config.Config, log *logger.Logger) *Collector {
	return &Collector{
		client: client,
		cache:  cache,
		raws:   raws,
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
}

// FetchSnapshots pulls the market snapshot for a whole batch in as few
// calls as possible.
func (c *Collector) FetchSnapshots(ctx context.Context, tickers []string) (map[string]*polygon.MarketSnapshot, error) {
	return c.client.Snapshots(ctx, tickers)
}

// CollectOne builds and persists the raw attribute row for one
// instrument. snap may be nil when the batch snapshot had no data for
// the ticker; reference details are used as a fallback.
func (c *Collector) CollectOne(ctx context.Context, ticker string, snap *polygon.MarketSnapshot) (*contracts.RawAttributes, error) {
	raw := &contracts.RawAttributes{
		Ticker:      ticker,
		CollectedAt: c.now(),
	}

	// Carry fields no Polygon endpoint provides from the previous row
	// so a refresh never erases them.
	if prev, err := c.raws.Get(ctx, ticker); err == nil && prev != nil {
		raw.AnalystRating = prev.AnalystRating
		raw.PriceTarget = prev.PriceTarget
		raw.ShortInterest = prev.ShortInterest
	}

	if snap != nil && snap.Price > 0 {
		price := snap.Price
		change := snap.PriceChangePct
		volume := snap.Volume
		raw.Price = &price
		raw.PriceChangePct = &change
		raw.Volume = &volume
	}

	details, err := c.fetchDetails(ctx, ticker)
	if err != nil {
		if raw.Price == nil {
			return nil, fmt.Errorf("no snapshot or details for %s: %w", ticker, err)
		}
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Details fetch failed")
	} else if details.MarketCap != nil {
		raw.MarketCap = details.MarketCap
	}

	if err := c.enrichFundamentals(ctx, ticker, raw); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Fundamentals fetch failed")
	}
	if err := c.enrichDividends(ctx, ticker, raw); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Dividends fetch failed")
	}
	if err := c.enrichBars(ctx, ticker, raw); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Bar history fetch failed")
	}

	raw.DataQuality = qualityScore(raw)

	if err := c.raws.Save(ctx, raw); err != nil {
		return nil, fmt.Errorf("save raw attributes for %s: %w", ticker, err)
	}
	return raw, nil
}

func (c *Collector) fetchDetails(ctx context.Context, ticker string) (*polygon.TickerDetails, error) {
	var details polygon.TickerDetails
	if hit, err := c.cache.Get(ctx, KindDetails, ticker, &details); err == nil && hit {
		return &details, nil
	}

	fresh, err := c.client.Details(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, KindDetails, ticker, fresh, c.cfg.Pipeline.FundamentalsTTL); err != nil {
		c.logger.WithError(err).Debug("Details cache write failed")
	}
	return fresh, nil
}

func (c *Collector) enrichFundamentals(ctx context.Context, ticker string, raw *contracts.RawAttributes) error {
	var fin polygon.Financials
	hit, err := c.cache.Get(ctx, KindFundamentals, ticker, &fin)
	if err != nil || !hit {
		fresh, err := c.client.Financials(ctx, ticker)
		if err != nil {
			return err
		}
		fin = *fresh
		if err := c.cache.Set(ctx, KindFundamentals, ticker, fresh, c.cfg.Pipeline.FundamentalsTTL); err != nil {
			c.logger.WithError(err).Debug("Fundamentals cache write failed")
		}
	}

	raw.EPSCurrent = fin.EPSCurrent
	raw.EPSGrowthPct = fin.EPSGrowthPct
	raw.DebtToEquity = fin.DebtToEquity
	raw.TotalEquity = fin.TotalEquity
	return nil
}

func (c *Collector) enrichDividends(ctx context.Context, ticker string, raw *contracts.RawAttributes) error {
	var div polygon.DividendSummary
	hit, err := c.cache.Get(ctx, KindDividends, ticker, &div)
	if err != nil || !hit {
		fresh, err := c.client.Dividends(ctx, ticker)
		if err != nil {
			return err
		}
		div = *fresh
		if err := c.cache.Set(ctx, KindDividends, ticker, fresh, c.cfg.Pipeline.DividendsTTL); err != nil {
			c.logger.WithError(err).Debug("Dividends cache write failed")
		}
	}

	raw.DividendGrowth5Y = div.GrowthPct5Y
	if div.ConsecutiveIncreases > 0 {
		years := div.ConsecutiveIncreases
		raw.DividendYears = &years
	}

	if div.AnnualDividend > 0 && raw.Price != nil && *raw.Price > 0 {
		yield := math.Round(div.AnnualDividend / *raw.Price * 100 * 10000) / 10000
		raw.DividendYield = &yield
	}
	if div.AnnualDividend > 0 && raw.EPSCurrent != nil && *raw.EPSCurrent > 0 {
		payout := math.Round(div.AnnualDividend / *raw.EPSCurrent * 100 * 10000) / 10000
		raw.PayoutRatio = &payout
	}
	return nil
}

func (c *Collector) enrichBars(ctx context.Context, ticker string, raw *contracts.RawAttributes) error {
	var bars []polygon.DailyBar
	hit, err := c.cache.Get(ctx, KindBars, ticker, &bars)
	if err != nil || !hit {
		bars, err = c.client.DailyBars(ctx, ticker, barWindowDays, barLimit)
		if err != nil {
			return err
		}
		if err := c.cache.Set(ctx, KindBars, ticker, bars, c.cfg.Pipeline.FundamentalsTTL); err != nil {
			c.logger.WithError(err).Debug("Bars cache write failed")
		}
	}

	raw.AvgVolume30D = polygon.AvgVolume(bars)
	raw.OBVTrend, raw.OBVDivergence = polygon.OBVTrend(bars)
	return nil
}

// qualityScore counts how many of the five core inputs are present
// and scales to 0..100.
func qualityScore(raw *contracts.RawAttributes) float64 {
	checks := 0
	if raw.Price != nil && *raw.Price > 0 {
		checks++
	}
	if raw.MarketCap != nil && *raw.MarketCap > 0 {
		checks++
	}
	if raw.EPSCurrent != nil {
		checks++
	}
	if raw.DebtToEquity != nil {
		checks++
	}
	if raw.Volume != nil && *raw.Volume > 0 {
		checks++
	}
	return float64(checks) / 5 * 100
}
