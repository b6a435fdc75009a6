package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/database"
)

// Repository is the PostgreSQL implementation of ScoreRepository.
// Current scores are one row per ticker; snapshots keep at most one
// row per ticker per day.
type Repository struct {
	db *database.DB
}

// NewRepository creates a score repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ contracts.ScoreRepository = (*Repository)(nil)

// Get returns the current score for one instrument, or nil when absent.
func (r *Repository) Get(ctx context.Context, ticker string) (*contracts.Score, error) {
	query := `
		SELECT ticker, moat, growth, balance, valuation, sentiment, dividend,
			total, composite_short, composite_mid, composite_long,
			graham_value, graham_upside_pct, triple_crown, value_trap, expensive_growth,
			data_quality, scored_at
		FROM data.scores WHERE ticker = $1`

	var s contracts.Score
	err := r.db.Pool.QueryRow(ctx, query, ticker).Scan(
		&s.Ticker, &s.Moat, &s.Growth, &s.Balance, &s.Valuation, &s.Sentiment, &s.Dividend,
		&s.Total, &s.CompositeShort, &s.CompositeMid, &s.CompositeLong,
		&s.GrahamValue, &s.UpsidePct, &s.TripleCrown, &s.ValueTrap, &s.ExpensiveGrowth,
		&s.DataQuality, &s.ScoredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get score: %w", err)
	}
	return &s, nil
}

// Save upserts the current score row for one instrument.
func (r *Repository) Save(ctx context.Context, s *contracts.Score) error {
	query := `
		INSERT INTO data.scores (
			ticker, moat, growth, balance, valuation, sentiment, dividend,
			total, composite_short, composite_mid, composite_long,
			graham_value, graham_upside_pct, triple_crown, value_trap, expensive_growth,
			data_quality, scored_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (ticker) DO UPDATE SET
			moat = EXCLUDED.moat,
			growth = EXCLUDED.growth,
			balance = EXCLUDED.balance,
			valuation = EXCLUDED.valuation,
			sentiment = EXCLUDED.sentiment,
			dividend = EXCLUDED.dividend,
			total = EXCLUDED.total,
			composite_short = EXCLUDED.composite_short,
			composite_mid = EXCLUDED.composite_mid,
			composite_long = EXCLUDED.composite_long,
			graham_value = EXCLUDED.graham_value,
			graham_upside_pct = EXCLUDED.graham_upside_pct,
			triple_crown = EXCLUDED.triple_crown,
			value_trap = EXCLUDED.value_trap,
			expensive_growth = EXCLUDED.expensive_growth,
			data_quality = EXCLUDED.data_quality,
			scored_at = EXCLUDED.scored_at`

	_, err := r.db.Pool.Exec(ctx, query,
		s.Ticker, s.Moat, s.Growth, s.Balance, s.Valuation, s.Sentiment, s.Dividend,
		s.Total, s.CompositeShort, s.CompositeMid, s.CompositeLong,
		s.GrahamValue, s.UpsidePct, s.TripleCrown, s.ValueTrap, s.ExpensiveGrowth,
		s.DataQuality, s.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save score: %w", err)
	}
	return nil
}

// SaveSnapshot writes the historical copy of the score, at most one
// row per ticker per day. A later write on the same day replaces the
// earlier one.
func (r *Repository) SaveSnapshot(ctx context.Context, s *contracts.Score) error {
	query := `
		INSERT INTO data.score_snapshots (
			ticker, snapshot_date, total, composite_short, composite_mid, composite_long, scored_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, snapshot_date) DO UPDATE SET
			total = EXCLUDED.total,
			composite_short = EXCLUDED.composite_short,
			composite_mid = EXCLUDED.composite_mid,
			composite_long = EXCLUDED.composite_long,
			scored_at = EXCLUDED.scored_at`

	day := s.ScoredAt.UTC().Truncate(24 * time.Hour)
	_, err := r.db.Pool.Exec(ctx, query,
		s.Ticker, day, s.Total, s.CompositeShort, s.CompositeMid, s.CompositeLong, s.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save score snapshot: %w", err)
	}
	return nil
}

// PruneSnapshots deletes snapshots older than the cutoff. Safe to run
// repeatedly.
func (r *Repository) PruneSnapshots(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM data.score_snapshots WHERE scored_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune score snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
