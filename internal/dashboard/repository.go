package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/database"
)

const defaultLimit = 200

// Repository serves the read-only projections behind the dashboard.
// It never writes; the pipeline owns every table it reads.
type Repository struct {
	db   *database.DB
	runs contracts.RunRepository
}

// NewRepository creates a dashboard repository.
func NewRepository(db *database.DB, runs contracts.RunRepository) *Repository {
	return &Repository{db: db, runs: runs}
}

// ListInstruments returns the joined instrument projection for active
// instruments, hottest first.
func (r *Repository) ListInstruments(ctx context.Context, filter Filter) ([]*InstrumentView, error) {
	query := `
		SELECT i.ticker, i.name, i.sector, i.tier,
			COALESCE(st.state, 'COLD'), st.next_update_due,
			sc.total, sc.composite_short, sc.composite_mid, sc.composite_long,
			sc.graham_value, sc.graham_upside_pct,
			COALESCE(sc.triple_crown, false),
			COALESCE(sc.value_trap, false),
			COALESCE(sc.expensive_growth, false),
			ra.price, ra.price_change_pct, ra.market_cap, ra.dividend_yield,
			ra.data_quality, sc.scored_at
		FROM data.instruments i
		LEFT JOIN data.instrument_states st ON st.ticker = i.ticker
		LEFT JOIN data.scores sc ON sc.ticker = i.ticker
		LEFT JOIN data.raw_attributes ra ON ra.ticker = i.ticker
		WHERE i.active = true`

	args := []interface{}{}
	if filter.Sector != "" {
		args = append(args, filter.Sector)
		query += fmt.Sprintf(" AND i.sector = $%d", len(args))
	}
	if filter.State != "" {
		args = append(args, string(filter.State))
		query += fmt.Sprintf(" AND COALESCE(st.state, 'COLD') = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(`
		ORDER BY CASE COALESCE(st.state, 'COLD')
			WHEN 'HOT' THEN 4 WHEN 'WARM' THEN 3 WHEN 'COLD' THEN 2 ELSE 1 END DESC,
			sc.total DESC NULLS LAST, i.ticker ASC
		LIMIT $%d`, len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboard instruments: %w", err)
	}
	defer rows.Close()

	views := make([]*InstrumentView, 0)
	for rows.Next() {
		var v InstrumentView
		var state string
		err := rows.Scan(
			&v.Ticker, &v.Name, &v.Sector, &v.Tier,
			&state, &v.NextUpdateDue,
			&v.Total, &v.CompositeShort, &v.CompositeMid, &v.CompositeLong,
			&v.GrahamValue, &v.UpsidePct, &v.TripleCrown, &v.ValueTrap, &v.ExpensiveGrowth,
			&v.Price, &v.PriceChangePct, &v.MarketCap, &v.DividendYield,
			&v.DataQuality, &v.ScoredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dashboard row: %w", err)
		}
		v.State = contracts.State(state)
		v.Priority = v.State.Priority()
		views = append(views, &v)
	}
	return views, rows.Err()
}

// Summary aggregates the system-level header: universe size, state
// distribution, scoring recency and the latest run.
func (r *Repository) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	s := &Summary{StateCounts: make(map[contracts.State]int)}

	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM data.instruments WHERE active = true`).Scan(&s.TotalActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count instruments: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT state, COUNT(*) FROM data.instrument_states GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("failed to count states: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan state count: %w", err)
		}
		s.StateCounts[contracts.State(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE scored_at >= $1),
			COUNT(*) FILTER (WHERE scored_at >= $2),
			COUNT(*) FILTER (WHERE triple_crown)
		FROM data.scores`,
		now.Add(-time.Hour), now.Add(-24*time.Hour),
	).Scan(&s.ScoredLastHour, &s.ScoredLastDay, &s.TripleCrowns)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scores: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(api_calls), 0)
		FROM data.pipeline_runs WHERE started_at >= $1`,
		now.Add(-24*time.Hour),
	).Scan(&s.APICallsLastDay)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to aggregate api calls: %w", err)
	}

	recent, err := r.runs.ListRecent(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load last run: %w", err)
	}
	if len(recent) > 0 {
		s.LastRun = recent[0]
	}
	return s, nil
}
