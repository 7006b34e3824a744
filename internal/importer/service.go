package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"menuvo/internal/extraction"
	"menuvo/internal/menu"
	"menuvo/internal/store"

	"github.com/google/uuid"
)

var (
	// ErrNotStoreOwner means the caller's merchant does not own the
	// store the request is scoped to.
	ErrNotStoreOwner = errors.New("store is not owned by this merchant")

	ErrEmptySelections = errors.New("at least one selection is required")

	ErrComparisonMissing = errors.New("import job has no comparison data yet")
)

// Storage is the object-storage surface the pipeline needs.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

// Service owns the import pipeline: job creation, asynchronous
// processing, status reads, and the transactional apply step.
type Service struct {
	jobs       Repository
	menus      menu.Repository
	stores     store.Repository
	storage    Storage
	extractors *extraction.Registry
	builder    *ComparisonBuilder
}

func NewService(
	jobs Repository,
	menus menu.Repository,
	stores store.Repository,
	storage Storage,
	extractors *extraction.Registry,
) *Service {
	return &Service{
		jobs:       jobs,
		menus:      menus,
		stores:     stores,
		storage:    storage,
		extractors: extractors,
		builder:    NewComparisonBuilder(NewNameMatcher()),
	}
}

// --------------------------------------------------
// Create Import Job (returns immediately; processing is async)
// --------------------------------------------------
func (s *Service) CreateJob(
	ctx context.Context,
	merchantID, storeID, filename string,
	file io.Reader,
) (*ImportJob, error) {

	if err := s.authorize(ctx, storeID, merchantID); err != nil {
		return nil, err
	}

	fileType, err := FileTypeOf(filename)
	if err != nil {
		return nil, err
	}
	if _, err := s.extractors.Lookup(fileType); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("imports/%s/%s.%s", storeID, uuid.New().String(), fileType)
	if _, err := s.storage.Upload(ctx, key, file); err != nil {
		return nil, err
	}

	job := &ImportJob{
		ID:               uuid.New().String(),
		StoreID:          storeID,
		OriginalFilename: filename,
		FileType:         fileType,
		FileKey:          key,
		Status:           StatusProcessing,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	log.Printf("IMPORT_CREATED job=%s store=%s file=%s", job.ID, storeID, filename)
	return job, nil
}

// --------------------------------------------------
// Status (polled by the frontend until READY/FAILED/COMPLETED)
// --------------------------------------------------
func (s *Service) GetJob(
	ctx context.Context,
	merchantID, storeID, jobID string,
) (*ImportJob, error) {

	if err := s.authorize(ctx, storeID, merchantID); err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	// Jobs of other stores are indistinguishable from missing ones.
	if job.StoreID != storeID {
		return nil, ErrJobNotFound
	}

	return job, nil
}

func (s *Service) ListJobs(
	ctx context.Context,
	merchantID, storeID string,
) ([]*ImportJob, error) {

	if err := s.authorize(ctx, storeID, merchantID); err != nil {
		return nil, err
	}
	return s.jobs.ListByStore(ctx, storeID, 20)
}

// --------------------------------------------------
// Worker entry point
// --------------------------------------------------

// ProcessOne claims ONE pending import job and runs it to READY or
// FAILED. Job-level failures are persisted on the job, never
// returned — the worker loop must not stop on a bad upload.
func (s *Service) ProcessOne(ctx context.Context) error {
	job, err := s.jobs.FetchPending(ctx)
	if err != nil {
		return err
	}
	if job == nil {
		// No pending jobs is NOT an error.
		return nil
	}

	if err := s.process(ctx, job); err != nil {
		log.Printf("IMPORT_FAILED job=%s err=%v", job.ID, err)
		if markErr := s.jobs.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			log.Printf("IMPORT_MARK_FAILED job=%s err=%v", job.ID, markErr)
		}
	}
	return nil
}

func (s *Service) process(ctx context.Context, job *ImportJob) error {
	data, err := s.storage.Download(ctx, job.FileKey)
	if err != nil {
		return err
	}

	extractor, err := s.extractors.Lookup(job.FileType)
	if err != nil {
		return err
	}

	extracted, err := extractor.Extract(ctx, data, job.FileType)
	if err != nil {
		return err
	}

	language, err := s.stores.DefaultLanguage(ctx, job.StoreID)
	if err != nil {
		return err
	}

	existing, err := s.menus.GetMenu(ctx, job.StoreID, language)
	if err != nil {
		return err
	}

	comparison := s.builder.Build(extracted, existing)
	if err := s.jobs.MarkReady(ctx, job.ID, comparison); err != nil {
		return err
	}

	log.Printf(
		"IMPORT_READY job=%s categories=%d items=%d new_items=%d updated_items=%d",
		job.ID,
		comparison.Summary.TotalCategories,
		comparison.Summary.TotalItems,
		comparison.Summary.NewItems,
		comparison.Summary.UpdatedItems,
	)
	return nil
}

func (s *Service) authorize(ctx context.Context, storeID, merchantID string) error {
	ok, err := s.stores.IsOwner(ctx, storeID, merchantID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotStoreOwner
	}
	return nil
}
