package markov

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/database"
)

// Repository is the PostgreSQL implementation of StateRepository.
type Repository struct {
	db *database.DB
}

// NewRepository creates a state repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ contracts.StateRepository = (*Repository)(nil)

const stateColumns = `ticker, state, previous_state, consecutive_hot,
	promotion_reason, promoted_at, promotion_expires, next_update_due, updated_at`

const stateJoinColumns = `s.ticker, s.state, s.previous_state, s.consecutive_hot,
	s.promotion_reason, s.promoted_at, s.promotion_expires, s.next_update_due, s.updated_at`

// Deactivated instruments keep their state row but must never
// re-enter the due queue, so both list queries join on active.
var dueQuery = fmt.Sprintf(`
	SELECT %s FROM data.instrument_states s
	JOIN data.instruments i ON i.ticker = s.ticker AND i.active = true
	WHERE s.next_update_due <= $1
	ORDER BY s.next_update_due ASC`, stateJoinColumns)

var expiredPromotionsQuery = fmt.Sprintf(`
	SELECT %s FROM data.instrument_states s
	JOIN data.instruments i ON i.ticker = s.ticker AND i.active = true
	WHERE s.state = 'HOT' AND s.promotion_expires IS NOT NULL AND s.promotion_expires < $1`, stateJoinColumns)

// Get returns the state row for one instrument, or nil when absent.
func (r *Repository) Get(ctx context.Context, ticker string) (*contracts.InstrumentState, error) {
	query := fmt.Sprintf(`SELECT %s FROM data.instrument_states WHERE ticker = $1`, stateColumns)

	st, err := scanState(r.db.Pool.QueryRow(ctx, query, ticker))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return st, nil
}

// ListDue returns every active instrument whose next update is due at
// or before now, ordered by next_update_due.
func (r *Repository) ListDue(ctx context.Context, now time.Time) ([]*contracts.InstrumentState, error) {
	rows, err := r.db.Pool.Query(ctx, dueQuery, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due states: %w", err)
	}
	defer rows.Close()

	return collectStates(rows)
}

// ListExpiredPromotions returns active HOT instruments whose promotion
// window has lapsed.
func (r *Repository) ListExpiredPromotions(ctx context.Context, now time.Time) ([]*contracts.InstrumentState, error) {
	rows, err := r.db.Pool.Query(ctx, expiredPromotionsQuery, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired promotions: %w", err)
	}
	defer rows.Close()

	return collectStates(rows)
}

// Save replaces the whole state row for one instrument.
func (r *Repository) Save(ctx context.Context, st *contracts.InstrumentState) error {
	query := `
		INSERT INTO data.instrument_states (
			ticker, state, previous_state, consecutive_hot,
			promotion_reason, promoted_at, promotion_expires, next_update_due, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (ticker) DO UPDATE SET
			state = EXCLUDED.state,
			previous_state = EXCLUDED.previous_state,
			consecutive_hot = EXCLUDED.consecutive_hot,
			promotion_reason = EXCLUDED.promotion_reason,
			promoted_at = EXCLUDED.promoted_at,
			promotion_expires = EXCLUDED.promotion_expires,
			next_update_due = EXCLUDED.next_update_due,
			updated_at = EXCLUDED.updated_at`

	var reason *string
	if st.PromotionReason != "" {
		reason = &st.PromotionReason
	}
	var prev *string
	if st.PreviousState != "" {
		s := string(st.PreviousState)
		prev = &s
	}

	_, err := r.db.Pool.Exec(ctx, query,
		st.Ticker, string(st.State), prev, st.ConsecutiveHot,
		reason, st.PromotedAt, st.PromotionExpires, st.NextUpdateDue, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// CountByState returns the number of instruments in each state.
func (r *Repository) CountByState(ctx context.Context) (map[contracts.State]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT state, COUNT(*) FROM data.instrument_states GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("failed to count states: %w", err)
	}
	defer rows.Close()

	counts := make(map[contracts.State]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan state count: %w", err)
		}
		counts[contracts.State(state)] = count
	}
	return counts, rows.Err()
}

func collectStates(rows pgx.Rows) ([]*contracts.InstrumentState, error) {
	var states []*contracts.InstrumentState
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

func scanState(row pgx.Row) (*contracts.InstrumentState, error) {
	var st contracts.InstrumentState
	var prev, reason *string

	err := row.Scan(
		&st.Ticker, (*string)(&st.State), &prev, &st.ConsecutiveHot,
		&reason, &st.PromotedAt, &st.PromotionExpires, &st.NextUpdateDue, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if prev != nil {
		st.PreviousState = contracts.State(*prev)
	}
	if reason != nil {
		st.PromotionReason = *reason
	}
	return &st, nil
}
