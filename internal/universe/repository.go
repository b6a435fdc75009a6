package universe

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/database"
)

// Repository is the PostgreSQL implementation of
// InstrumentRepository.
type Repository struct {
	db *database.DB
}

// NewRepository creates an instrument repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ contracts.InstrumentRepository = (*Repository)(nil)

const instrumentUpsert = `
	INSERT INTO data.instruments (ticker, name, sector, tier, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	ON CONFLICT (ticker) DO UPDATE SET
		name = EXCLUDED.name,
		sector = EXCLUDED.sector,
		tier = EXCLUDED.tier,
		active = EXCLUDED.active,
		updated_at = NOW()`

// Get returns one instrument, or nil when unknown.
func (r *Repository) Get(ctx context.Context, ticker string) (*contracts.Instrument, error) {
	var inst contracts.Instrument
	err := r.db.Pool.QueryRow(ctx, `
		SELECT ticker, name, sector, tier, active, created_at, updated_at
		FROM data.instruments WHERE ticker = $1`, ticker,
	).Scan(&inst.Ticker, &inst.Name, &inst.Sector, &inst.Tier, &inst.Active,
		&inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get instrument: %w", err)
	}
	return &inst, nil
}

// ListActive returns every active instrument ordered by ticker.
func (r *Repository) ListActive(ctx context.Context) ([]*contracts.Instrument, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ticker, name, sector, tier, active, created_at, updated_at
		FROM data.instruments WHERE active = true ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	defer rows.Close()

	var insts []*contracts.Instrument
	for rows.Next() {
		var inst contracts.Instrument
		err := rows.Scan(&inst.Ticker, &inst.Name, &inst.Sector, &inst.Tier,
			&inst.Active, &inst.CreatedAt, &inst.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		insts = append(insts, &inst)
	}
	return insts, rows.Err()
}

// Save upserts one instrument.
func (r *Repository) Save(ctx context.Context, inst *contracts.Instrument) error {
	_, err := r.db.Pool.Exec(ctx, instrumentUpsert,
		inst.Ticker, inst.Name, inst.Sector, inst.Tier, inst.Active)
	if err != nil {
		return fmt.Errorf("failed to save instrument: %w", err)
	}
	return nil
}

// SaveBatch upserts instruments in one round trip per batch.
func (r *Repository) SaveBatch(ctx context.Context, insts []*contracts.Instrument) error {
	const batchSize = 500

	for start := 0; start < len(insts); start += batchSize {
		end := start + batchSize
		if end > len(insts) {
			end = len(insts)
		}

		batch := &pgx.Batch{}
		for _, inst := range insts[start:end] {
			batch.Queue(instrumentUpsert,
				inst.Ticker, inst.Name, inst.Sector, inst.Tier, inst.Active)
		}

		results := r.db.Pool.SendBatch(ctx, batch)
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to save instrument batch: %w", err)
		}
	}
	return nil
}

// Count returns the number of active instruments.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM data.instruments WHERE active = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count instruments: %w", err)
	}
	return count, nil
}
