package importer

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository backs tests; same transition guards as Postgres.
type InMemoryRepository struct {
	mu      sync.Mutex
	jobs    map[string]*ImportJob
	claimed map[string]bool
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		jobs:    make(map[string]*ImportJob),
		claimed: make(map[string]bool),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, job *ImportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job.Status = StatusProcessing
	job.CreatedAt = time.Now()
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*ImportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (r *InMemoryRepository) ListByStore(ctx context.Context, storeID string, limit int) ([]*ImportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	var jobs []*ImportJob
	for _, job := range r.jobs {
		if job.StoreID == storeID {
			copied := *job
			jobs = append(jobs, &copied)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (r *InMemoryRepository) FetchPending(ctx context.Context) (*ImportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldest *ImportJob
	for _, job := range r.jobs {
		if job.Status != StatusProcessing || r.claimed[job.ID] {
			continue
		}
		if oldest == nil || job.CreatedAt.Before(oldest.CreatedAt) {
			oldest = job
		}
	}
	if oldest == nil {
		return nil, nil
	}

	r.claimed[oldest.ID] = true
	copied := *oldest
	return &copied, nil
}

func (r *InMemoryRepository) MarkReady(ctx context.Context, id string, data *ComparisonData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if job.Status != StatusProcessing {
		return ErrInvalidJobState
	}

	job.Status = StatusReady
	job.ComparisonData = data
	return nil
}

func (r *InMemoryRepository) MarkFailed(ctx context.Context, id, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if job.Status != StatusProcessing {
		return ErrInvalidJobState
	}

	job.Status = StatusFailed
	job.ErrorMessage = &message
	return nil
}

func (r *InMemoryRepository) MarkCompleted(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if job.Status != StatusReady {
		return ErrInvalidJobState
	}

	job.Status = StatusCompleted
	return nil
}
