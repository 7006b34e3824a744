package importer

import (
	"context"
	"errors"
	"testing"

	"menuvo/internal/menu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readyJob runs a job through the pipeline and asserts it is READY.
func readyJob(t *testing.T, env *testEnv) *ImportJob {
	t.Helper()

	job := env.createJob(t)
	processed := env.processJob(t, job.ID)
	require.Equal(t, StatusReady, processed.Status)
	return processed
}

func applySel(entityType, name string) ImportSelection {
	return ImportSelection{Type: entityType, ExtractedName: name, Action: SelectionApply}
}

func allCreates(t *testing.T) []ImportSelection {
	t.Helper()
	return []ImportSelection{
		applySel(SelectionCategory, "Starters"),
		applySel(SelectionItem, "Spring Rolls"),
		applySel(SelectionItem, "Soup"),
		applySel(SelectionCategory, "Mains"),
		applySel(SelectionItem, "Pad Thai"),
		applySel(SelectionOptionGroup, "Size"),
	}
}

func itemCount(m *menu.Menu) int {
	n := 0
	for _, c := range m.Categories {
		n += len(c.Items)
	}
	return n
}

func findItem(m *menu.Menu, name string) *menu.Item {
	for _, c := range m.Categories {
		for i := range c.Items {
			if c.Items[i].Name == name {
				return &c.Items[i]
			}
		}
	}
	return nil
}

// --------------------------------------------------
// Happy paths
// --------------------------------------------------

func TestApply_FreshImportCreatesEverything(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()
	ctx := context.Background()

	job := readyJob(t, env)

	warnings, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID, allCreates(t))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	got, err := env.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	m, err := env.menus.GetMenu(ctx, testStoreID, "en")
	require.NoError(t, err)
	assert.Len(t, m.Categories, 2)
	assert.Equal(t, 3, itemCount(m))
	require.Len(t, m.OptionGroups, 1)
	assert.Equal(t, "Size", m.OptionGroups[0].Name)
	assert.Len(t, m.OptionGroups[0].Choices, 2)

	item := findItem(m, "Pad Thai")
	require.NotNil(t, item)
	assert.Equal(t, 1250, item.PriceCents)
}

func TestApply_PriceUpdateDoesNotDuplicate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	catID := env.menus.SeedCategory(testStoreID, "en", menu.CategoryInput{Name: "Starters"})
	env.menus.SeedItem(testStoreID, catID, "en", menu.ItemInput{Name: "Spring Rolls", PriceCents: 599})

	env.extract.menu = freshMenu() // Spring Rolls at 599: identical, planned skip
	env.extract.menu.Categories[0].Items[0].PriceCents = 699

	job := readyJob(t, env)

	// Only the repriced item is selected. The matched category resolves
	// on its own, it needs no selection of its own.
	warnings, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID,
		[]ImportSelection{applySel(SelectionItem, "Spring Rolls")})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	m, err := env.menus.GetMenu(ctx, testStoreID, "en")
	require.NoError(t, err)
	assert.Equal(t, 1, itemCount(m))

	item := findItem(m, "Spring Rolls")
	require.NotNil(t, item)
	assert.Equal(t, 699, item.PriceCents)
}

func TestApply_SubsetCreatesExactlyThatSubset(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()
	ctx := context.Background()

	job := readyJob(t, env)

	warnings, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID,
		[]ImportSelection{
			applySel(SelectionCategory, "Starters"),
			applySel(SelectionItem, "Soup"),
		})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	m, err := env.menus.GetMenu(ctx, testStoreID, "en")
	require.NoError(t, err)
	require.Len(t, m.Categories, 1)
	assert.Equal(t, "Starters", m.Categories[0].Name)
	assert.Equal(t, 1, itemCount(m))
	assert.NotNil(t, findItem(m, "Soup"))
	assert.Nil(t, findItem(m, "Spring Rolls"))
	assert.Empty(t, m.OptionGroups)
}

func TestApply_SelectionNamesMatchCaseInsensitively(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()
	ctx := context.Background()

	job := readyJob(t, env)

	_, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID,
		[]ImportSelection{
			applySel(SelectionCategory, "  STARTERS "),
			applySel(SelectionItem, "soup"),
		})
	require.NoError(t, err)

	m, err := env.menus.GetMenu(ctx, testStoreID, "en")
	require.NoError(t, err)
	assert.Len(t, m.Categories, 1)
	assert.NotNil(t, findItem(m, "Soup"))
}

func TestApply_CreateOverriddenToMatchedEntityUpdates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	catID := env.menus.SeedCategory(testStoreID, "en", menu.CategoryInput{Name: "Starters"})
	itemID := env.menus.SeedItem(testStoreID, catID, "en", menu.ItemInput{Name: "Spring Roll", PriceCents: 599})

	env.extract.menu = freshMenu() // extracted "Spring Rolls" will not match "Spring Roll"

	job := readyJob(t, env)

	sel := applySel(SelectionItem, "Spring Rolls")
	sel.MatchedEntityID = &itemID

	warnings, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID,
		[]ImportSelection{sel})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// The manual match turns the planned create into a full update of
	// the chosen row: no new item, every field taken from the import.
	m, err := env.menus.GetMenu(ctx, testStoreID, "en")
	require.NoError(t, err)
	assert.Equal(t, 1, itemCount(m))

	item := findItem(m, "Spring Rolls")
	require.NotNil(t, item)
	assert.Equal(t, itemID, item.ID)
	assert.Equal(t, 599, item.PriceCents)
}

func TestApply_PlannedSkipIsNeverExecuted(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	catID := env.menus.SeedCategory(testStoreID, "en", menu.CategoryInput{Name: "Starters"})
	env.menus.SeedItem(testStoreID, catID, "en", menu.ItemInput{Name: "Spring Rolls", PriceCents: 599})

	env.extract.menu = freshMenu() // Spring Rolls identical: planned skip

	job := readyJob(t, env)

	before, err := env.menus.GetMenu(ctx, testStoreID, "en")
	require.NoError(t, err)

	// Selecting "apply" on a planned skip is a no-op.
	_, err = env.service.Apply(ctx, testMerchantID, testStoreID, job.ID,
		[]ImportSelection{applySel(SelectionItem, "Spring Rolls")})
	require.NoError(t, err)

	after, err := env.menus.GetMenu(ctx, testStoreID, "en")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// --------------------------------------------------
// Warnings
// --------------------------------------------------

func TestApply_ItemWithoutItsCategoryIsSkippedWithWarning(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()
	ctx := context.Background()

	job := readyJob(t, env)

	warnings, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID,
		[]ImportSelection{applySel(SelectionItem, "Soup")})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Soup")
	assert.Contains(t, warnings[0], "category was not applied")

	// The apply still completes.
	got, err := env.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestApply_VanishedUpdateTargetDowngradesToWarning(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	catID := env.menus.SeedCategory(testStoreID, "en", menu.CategoryInput{
		Name:        "Starters",
		Description: "old copy",
	})

	env.extract.menu = freshMenu()
	env.extract.menu.Categories[0].Description = "new copy" // forces an update plan

	job := readyJob(t, env)

	// The category is deleted between comparison and apply.
	env.menus.RemoveCategory(testStoreID, catID)

	warnings, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID,
		[]ImportSelection{applySel(SelectionCategory, "Starters")})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Starters")
	assert.Contains(t, warnings[0], "no longer exists")

	got, err := env.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

// --------------------------------------------------
// Atomicity
// --------------------------------------------------

func TestApply_FailureRollsBackAndLeavesJobReady(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()
	ctx := context.Background()

	job := readyJob(t, env)

	writeErr := errors.New("write failed")
	env.menus.FailItemCreate("Soup", writeErr)

	_, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID, allCreates(t))
	require.ErrorIs(t, err, writeErr)

	// Nothing from the aborted transaction is visible.
	m, err := env.menus.GetMenu(ctx, testStoreID, "en")
	require.NoError(t, err)
	assert.Empty(t, m.Categories)
	assert.Empty(t, m.OptionGroups)

	// The job stays READY so the merchant can retry.
	got, err := env.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, got.Status)
}

// --------------------------------------------------
// Preconditions
// --------------------------------------------------

func TestApply_RequiresSelections(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()

	job := readyJob(t, env)

	_, err := env.service.Apply(context.Background(), testMerchantID, testStoreID, job.ID, nil)
	assert.ErrorIs(t, err, ErrEmptySelections)
}

func TestApply_RequiresOwnership(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()

	job := readyJob(t, env)

	_, err := env.service.Apply(context.Background(), otherMerchant, testStoreID, job.ID,
		[]ImportSelection{applySel(SelectionCategory, "Starters")})
	assert.ErrorIs(t, err, ErrNotStoreOwner)
}

func TestApply_RequiresReadyStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Still PROCESSING: the worker has not picked it up yet.
	job := env.createJob(t)

	_, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID,
		[]ImportSelection{applySel(SelectionCategory, "Starters")})
	assert.ErrorIs(t, err, ErrInvalidJobState)
}

func TestApply_CannotBeAppliedTwice(t *testing.T) {
	env := newTestEnv()
	env.extract.menu = freshMenu()
	ctx := context.Background()

	job := readyJob(t, env)
	selections := allCreates(t)

	_, err := env.service.Apply(ctx, testMerchantID, testStoreID, job.ID, selections)
	require.NoError(t, err)

	_, err = env.service.Apply(ctx, testMerchantID, testStoreID, job.ID, selections)
	assert.ErrorIs(t, err, ErrInvalidJobState)

	// The second attempt created nothing.
	m, err := env.menus.GetMenu(ctx, testStoreID, "en")
	require.NoError(t, err)
	assert.Len(t, m.Categories, 2)
	assert.Equal(t, 3, itemCount(m))
}
