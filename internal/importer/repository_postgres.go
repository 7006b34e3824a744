package importer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, job *ImportJob) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO import_jobs (
			id,
			store_id,
			original_filename,
			file_type,
			file_key,
			status,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at
	`,
		job.ID,
		job.StoreID,
		job.OriginalFilename,
		job.FileType,
		job.FileKey,
		StatusProcessing,
	).Scan(&job.CreatedAt)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*ImportJob, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `
		SELECT id, store_id, original_filename, file_type, file_key,
		       status, error_message, comparison_data, created_at
		FROM import_jobs
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *PostgresRepository) ListByStore(ctx context.Context, storeID string, limit int) ([]*ImportJob, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, store_id, original_filename, file_type, file_key,
		       status, error_message, comparison_data, created_at
		FROM import_jobs
		WHERE store_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*ImportJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// FetchPending retrieves and CLAIMS the next import job waiting for
// the processor. Returns (nil, nil) when no jobs are available.
func (r *PostgresRepository) FetchPending(ctx context.Context) (*ImportJob, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	job, err := scanJob(tx.QueryRow(ctx, `
		SELECT id, store_id, original_filename, file_type, file_key,
		       status, error_message, comparison_data, created_at
		FROM import_jobs
		WHERE status = $1
		  AND claimed_at IS NULL
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, StatusProcessing))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	// Atomic claim, so a second worker never picks up the same job.
	_, err = tx.Exec(ctx, `
		UPDATE import_jobs
		SET claimed_at = now(), updated_at = now()
		WHERE id = $1
	`, job.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return job, nil
}

func (r *PostgresRepository) MarkReady(ctx context.Context, id string, data *ComparisonData) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return err
	}

	cmd, err := r.db.Exec(ctx, `
		UPDATE import_jobs
		SET status = $1,
		    comparison_data = $2,
		    updated_at = now()
		WHERE id = $3
		  AND status = $4
	`, StatusReady, blob, id, StatusProcessing)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.transitionError(ctx, id)
	}
	return nil
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id, message string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE import_jobs
		SET status = $1,
		    error_message = $2,
		    updated_at = now()
		WHERE id = $3
		  AND status = $4
	`, StatusFailed, message, id, StatusProcessing)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.transitionError(ctx, id)
	}
	return nil
}

func (r *PostgresRepository) MarkCompleted(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE import_jobs
		SET status = $1,
		    updated_at = now()
		WHERE id = $2
		  AND status = $3
	`, StatusCompleted, id, StatusReady)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.transitionError(ctx, id)
	}
	return nil
}

// transitionError distinguishes a missing job from a guarded
// transition that matched zero rows.
func (r *PostgresRepository) transitionError(ctx context.Context, id string) error {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM import_jobs WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrJobNotFound
	}
	return ErrInvalidJobState
}

func scanJob(row pgx.Row) (*ImportJob, error) {
	var (
		job  ImportJob
		blob []byte
	)

	err := row.Scan(
		&job.ID,
		&job.StoreID,
		&job.OriginalFilename,
		&job.FileType,
		&job.FileKey,
		&job.Status,
		&job.ErrorMessage,
		&blob,
		&job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(blob) > 0 {
		var data ComparisonData
		if err := json.Unmarshal(blob, &data); err != nil {
			return nil, err
		}
		job.ComparisonData = &data
	}

	return &job, nil
}
