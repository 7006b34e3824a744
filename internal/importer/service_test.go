package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"menuvo/internal/extraction"
	"menuvo/internal/menu"
	"menuvo/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStoreID    = "11111111-1111-1111-1111-111111111111"
	testMerchantID = "22222222-2222-2222-2222-222222222222"
	otherMerchant  = "33333333-3333-3333-3333-333333333333"
)

// --------------------------------------------------
// Fakes
// --------------------------------------------------

type fakeStorage struct {
	files       map[string][]byte
	downloadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(ctx context.Context, key string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.files[key] = data
	return "https://files.test/" + key, nil
}

func (s *fakeStorage) Download(ctx context.Context, key string) ([]byte, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("storage fetch failed for %s", key)
	}
	return data, nil
}

type fakeExtractor struct {
	menu *extraction.ExtractedMenu
	err  error
}

func (e *fakeExtractor) Extract(ctx context.Context, data []byte, fileType string) (*extraction.ExtractedMenu, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.menu, nil
}

// --------------------------------------------------
// Harness
// --------------------------------------------------

type testEnv struct {
	service  *Service
	jobs     *InMemoryRepository
	menus    *menu.InMemoryRepository
	storage  *fakeStorage
	extract  *fakeExtractor
	registry *extraction.Registry
}

func newTestEnv() *testEnv {
	jobs := NewInMemoryRepository()
	menus := menu.NewInMemoryRepository()

	stores := store.NewInMemoryRepository()
	stores.Seed(store.Store{
		ID:              testStoreID,
		OwnerID:         testMerchantID,
		Name:            "Golden Dragon",
		DefaultLanguage: "en",
	})

	stg := newFakeStorage()
	extract := &fakeExtractor{menu: &extraction.ExtractedMenu{}}

	registry := extraction.NewRegistry()
	registry.Register("csv", extract)
	registry.Register("json", extract)
	registry.Register("pdf", extract)

	return &testEnv{
		service:  NewService(jobs, menus, stores, stg, registry),
		jobs:     jobs,
		menus:    menus,
		storage:  stg,
		extract:  extract,
		registry: registry,
	}
}

func (e *testEnv) createJob(t *testing.T) *ImportJob {
	t.Helper()

	job, err := e.service.CreateJob(
		context.Background(),
		testMerchantID,
		testStoreID,
		"menu.csv",
		bytes.NewReader([]byte("category,name,price\n")),
	)
	require.NoError(t, err)
	return job
}

// processJob runs the worker until the created job leaves PROCESSING.
func (e *testEnv) processJob(t *testing.T, jobID string) *ImportJob {
	t.Helper()

	require.NoError(t, e.service.ProcessOne(context.Background()))

	job, err := e.jobs.GetByID(context.Background(), jobID)
	require.NoError(t, err)
	return job
}

// --------------------------------------------------
// Job creation
// --------------------------------------------------

func TestCreateJob_StartsProcessing(t *testing.T) {
	env := newTestEnv()

	job := env.createJob(t)

	assert.Equal(t, StatusProcessing, job.Status)
	assert.Equal(t, testStoreID, job.StoreID)
	assert.Equal(t, "menu.csv", job.OriginalFilename)
	assert.Equal(t, "csv", job.FileType)

	// The raw bytes are in object storage under the job's key.
	assert.Contains(t, env.storage.files, job.FileKey)
}

func TestCreateJob_RejectsForeignMerchant(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.CreateJob(
		context.Background(),
		otherMerchant,
		testStoreID,
		"menu.csv",
		strings.NewReader(""),
	)
	assert.ErrorIs(t, err, ErrNotStoreOwner)
}

func TestCreateJob_RejectsUnknownExtension(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.CreateJob(
		context.Background(),
		testMerchantID,
		testStoreID,
		"menu.docx",
		strings.NewReader(""),
	)
	assert.Error(t, err)
}

// --------------------------------------------------
// Processor
// --------------------------------------------------

func TestProcessOne_NoPendingJobsIsNotAnError(t *testing.T) {
	env := newTestEnv()
	assert.NoError(t, env.service.ProcessOne(context.Background()))
}

func TestProcessOne_HappyPathMarksReady(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()

	job := env.createJob(t)
	processed := env.processJob(t, job.ID)

	assert.Equal(t, StatusReady, processed.Status)
	assert.Nil(t, processed.ErrorMessage)
	require.NotNil(t, processed.ComparisonData)
	assert.Equal(t, 2, processed.ComparisonData.Summary.NewCategories)
	assert.Equal(t, 3, processed.ComparisonData.Summary.NewItems)
}

func TestProcessOne_ExtractionFailureMarksFailed(t *testing.T) {
	env := newTestEnv()
	env.extract.err = errors.New("model returned malformed output")

	job := env.createJob(t)
	processed := env.processJob(t, job.ID)

	assert.Equal(t, StatusFailed, processed.Status)
	require.NotNil(t, processed.ErrorMessage)
	// Error message is preserved verbatim for the merchant.
	assert.Equal(t, "model returned malformed output", *processed.ErrorMessage)
	assert.Nil(t, processed.ComparisonData)
}

func TestProcessOne_StorageFailureMarksFailed(t *testing.T) {
	env := newTestEnv()
	env.storage.downloadErr = errors.New("object not found")

	job := env.createJob(t)
	processed := env.processJob(t, job.ID)

	assert.Equal(t, StatusFailed, processed.Status)
	require.NotNil(t, processed.ErrorMessage)
	assert.Equal(t, "object not found", *processed.ErrorMessage)
}

func TestProcessOne_JobIsClaimedOnce(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()

	job := env.createJob(t)

	// First call claims and processes; second call finds nothing.
	require.NoError(t, env.service.ProcessOne(context.Background()))
	require.NoError(t, env.service.ProcessOne(context.Background()))

	processed, err := env.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, processed.Status)
}

// --------------------------------------------------
// Status reads
// --------------------------------------------------

func TestGetJob_ScopedToOwningStore(t *testing.T) {
	env := newTestEnv()
	job := env.createJob(t)

	got, err := env.service.GetJob(context.Background(), testMerchantID, testStoreID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = env.service.GetJob(context.Background(), otherMerchant, testStoreID, job.ID)
	assert.ErrorIs(t, err, ErrNotStoreOwner)

	_, err = env.service.GetJob(context.Background(), testMerchantID, testStoreID, "no-such-job")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

// --------------------------------------------------
// State machine guards
// --------------------------------------------------

func TestTransitions_TerminalStatesAreGuarded(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	job := env.createJob(t)
	require.NoError(t, env.jobs.MarkFailed(ctx, job.ID, "boom"))

	// FAILED is terminal: no transition out, data untouched.
	assert.ErrorIs(t, env.jobs.MarkReady(ctx, job.ID, &ComparisonData{}), ErrInvalidJobState)
	assert.ErrorIs(t, env.jobs.MarkFailed(ctx, job.ID, "again"), ErrInvalidJobState)
	assert.ErrorIs(t, env.jobs.MarkCompleted(ctx, job.ID), ErrInvalidJobState)

	got, err := env.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "boom", *got.ErrorMessage)
	assert.Nil(t, got.ComparisonData)
}

func TestTransitions_CompletedOnlyFromReady(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	job := env.createJob(t)

	assert.ErrorIs(t, env.jobs.MarkCompleted(ctx, job.ID), ErrInvalidJobState)

	require.NoError(t, env.jobs.MarkReady(ctx, job.ID, &ComparisonData{}))
	require.NoError(t, env.jobs.MarkCompleted(ctx, job.ID))

	// COMPLETED is terminal.
	assert.ErrorIs(t, env.jobs.MarkCompleted(ctx, job.ID), ErrInvalidJobState)
}
