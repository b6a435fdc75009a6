package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/database"
)

// Repository is the PostgreSQL implementation of RunRepository.
// Run records are append-only; only the owning run updates its row.
type Repository struct {
	db *database.DB
}

// NewRepository creates a run repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ contracts.RunRepository = (*Repository)(nil)

// Create inserts the initial running row.
func (r *Repository) Create(ctx context.Context, run *contracts.PipelineRun) error {
	query := `
		INSERT INTO data.pipeline_runs (id, trigger, status, started_at, retry_count)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Pool.Exec(ctx, query, run.ID, run.Trigger, string(run.Status), run.StartedAt, run.RetryCount)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// Finish writes the terminal fields. The status guard keeps a
// finished run from being overwritten by a stale writer.
func (r *Repository) Finish(ctx context.Context, run *contracts.PipelineRun) error {
	query := `
		UPDATE data.pipeline_runs SET
			status = $2, finished_at = $3,
			selected = $4, collected = $5, scored = $6,
			promoted = $7, demoted = $8,
			api_calls = $9, api_errors = $10,
			error_step = $11, error_message = $12
		WHERE id = $1 AND status = 'running'`

	tag, err := r.db.Pool.Exec(ctx, query,
		run.ID, string(run.Status), run.FinishedAt,
		run.Selected, run.Collected, run.Scored,
		run.Promoted, run.Demoted,
		run.APICalls, run.APIErrors,
		nullIfEmpty(run.ErrorStep), nullIfEmpty(run.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s is not running", run.ID)
	}
	return nil
}

// Get returns one run by id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*contracts.PipelineRun, error) {
	query := runSelect + ` WHERE id = $1`

	run, err := scanRun(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRecent returns the latest runs, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*contracts.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := runSelect + ` ORDER BY started_at DESC LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*contracts.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PruneRuns deletes runs older than the cutoff.
func (r *Repository) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM data.pipeline_runs WHERE started_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

const runSelect = `
	SELECT id, trigger, status, started_at, finished_at, retry_count,
		selected, collected, scored, promoted, demoted,
		api_calls, api_errors, error_step, error_message
	FROM data.pipeline_runs`

func scanRun(row pgx.Row) (*contracts.PipelineRun, error) {
	var run contracts.PipelineRun
	var errStep, errMsg *string

	err := row.Scan(
		&run.ID, &run.Trigger, (*string)(&run.Status), &run.StartedAt, &run.FinishedAt, &run.RetryCount,
		&run.Selected, &run.Collected, &run.Scored, &run.Promoted, &run.Demoted,
		&run.APICalls, &run.APIErrors, &errStep, &errMsg,
	)
	if err != nil {
		return nil, err
	}

	if errStep != nil {
		run.ErrorStep = *errStep
	}
	if errMsg != nil {
		run.ErrorMessage = *errMsg
	}
	return &run, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
