package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/database"
)

// Repository is the PostgreSQL implementation of RawRepository. One
// row per ticker, replaced on every collection pass.
type Repository struct {
	db *database.DB
}

// NewRepository creates a raw attribute repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ contracts.RawRepository = (*Repository)(nil)

// Get returns the latest raw attributes for one instrument, or nil
// when none were ever collected.
func (r *Repository) Get(ctx context.Context, ticker string) (*contracts.RawAttributes, error) {
	query := `
		SELECT ticker, price, price_change_pct, volume, avg_volume_30d, market_cap,
			eps_current, eps_growth_pct, debt_to_equity, total_equity,
			analyst_rating, price_target, short_interest_pct,
			obv_trend, obv_divergence,
			dividend_yield, payout_ratio, dividend_growth_5y, dividend_years,
			data_quality, collected_at
		FROM data.raw_attributes WHERE ticker = $1`

	var raw contracts.RawAttributes
	err := r.db.Pool.QueryRow(ctx, query, ticker).Scan(
		&raw.Ticker, &raw.Price, &raw.PriceChangePct, &raw.Volume, &raw.AvgVolume30D, &raw.MarketCap,
		&raw.EPSCurrent, &raw.EPSGrowthPct, &raw.DebtToEquity, &raw.TotalEquity,
		&raw.AnalystRating, &raw.PriceTarget, &raw.ShortInterest,
		&raw.OBVTrend, &raw.OBVDivergence,
		&raw.DividendYield, &raw.PayoutRatio, &raw.DividendGrowth5Y, &raw.DividendYears,
		&raw.DataQuality, &raw.CollectedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get raw attributes: %w", err)
	}
	return &raw, nil
}

// Save upserts the raw attribute row for one instrument.
func (r *Repository) Save(ctx context.Context, raw *contracts.RawAttributes) error {
	query := `
		INSERT INTO data.raw_attributes (
			ticker, price, price_change_pct, volume, avg_volume_30d, market_cap,
			eps_current, eps_growth_pct, debt_to_equity, total_equity,
			analyst_rating, price_target, short_interest_pct,
			obv_trend, obv_divergence,
			dividend_yield, payout_ratio, dividend_growth_5y, dividend_years,
			data_quality, collected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (ticker) DO UPDATE SET
			price = EXCLUDED.price,
			price_change_pct = EXCLUDED.price_change_pct,
			volume = EXCLUDED.volume,
			avg_volume_30d = EXCLUDED.avg_volume_30d,
			market_cap = EXCLUDED.market_cap,
			eps_current = EXCLUDED.eps_current,
			eps_growth_pct = EXCLUDED.eps_growth_pct,
			debt_to_equity = EXCLUDED.debt_to_equity,
			total_equity = EXCLUDED.total_equity,
			analyst_rating = EXCLUDED.analyst_rating,
			price_target = EXCLUDED.price_target,
			short_interest_pct = EXCLUDED.short_interest_pct,
			obv_trend = EXCLUDED.obv_trend,
			obv_divergence = EXCLUDED.obv_divergence,
			dividend_yield = EXCLUDED.dividend_yield,
			payout_ratio = EXCLUDED.payout_ratio,
			dividend_growth_5y = EXCLUDED.dividend_growth_5y,
			dividend_years = EXCLUDED.dividend_years,
			data_quality = EXCLUDED.data_quality,
			collected_at = EXCLUDED.collected_at`

	_, err := r.db.Pool.Exec(ctx, query,
		raw.Ticker, raw.Price, raw.PriceChangePct, raw.Volume, raw.AvgVolume30D, raw.MarketCap,
		raw.EPSCurrent, raw.EPSGrowthPct, raw.DebtToEquity, raw.TotalEquity,
		raw.AnalystRating, raw.PriceTarget, raw.ShortInterest,
		raw.OBVTrend, raw.OBVDivergence,
		raw.DividendYield, raw.PayoutRatio, raw.DividendGrowth5Y, raw.DividendYears,
		raw.DataQuality, raw.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save raw attributes: %w", err)
	}
	return nil
}
