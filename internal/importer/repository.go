package importer

import (
	"context"
	"errors"
)

var (
	// ErrJobNotFound means no import job exists for the given id.
	ErrJobNotFound = errors.New("import job not found")

	// ErrInvalidJobState is returned by state transitions attempted
	// from the wrong status (e.g. MarkReady on a FAILED job). The
	// existing row is left untouched.
	ErrInvalidJobState = errors.New("import job is not in a valid state for this operation")
)

// Repository defines all database operations on import jobs. The
// guarded transitions implement the job state machine:
// PROCESSING → READY | FAILED ; READY → COMPLETED.
type Repository interface {

	// Create persists a new job in PROCESSING.
	Create(ctx context.Context, job *ImportJob) error

	GetByID(ctx context.Context, id string) (*ImportJob, error)

	// ListByStore returns a store's jobs, newest first.
	ListByStore(ctx context.Context, storeID string, limit int) ([]*ImportJob, error)

	// FetchPending atomically claims the next unprocessed job.
	// Returns (nil, nil) when no jobs are waiting — that is NOT an
	// error.
	FetchPending(ctx context.Context) (*ImportJob, error)

	// MarkReady stores the comparison and moves PROCESSING → READY.
	MarkReady(ctx context.Context, id string, data *ComparisonData) error

	// MarkFailed moves PROCESSING → FAILED, preserving the error
	// message verbatim. Comparison data stays null.
	MarkFailed(ctx context.Context, id, message string) error

	// MarkCompleted moves READY → COMPLETED.
	MarkCompleted(ctx context.Context, id string) error
}
