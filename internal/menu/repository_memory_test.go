package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storeID = "store-1"

func TestInTx_CommitPublishesMutations(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	err := repo.InTx(ctx, func(tx Tx) error {
		catID, err := tx.CreateCategory(ctx, storeID, "en", CategoryInput{Name: "Starters"})
		if err != nil {
			return err
		}
		_, err = tx.CreateItem(ctx, storeID, catID, "en", ItemInput{Name: "Soup", PriceCents: 450})
		return err
	})
	require.NoError(t, err)

	m, err := repo.GetMenu(ctx, storeID, "en")
	require.NoError(t, err)
	require.Len(t, m.Categories, 1)
	require.Len(t, m.Categories[0].Items, 1)
	assert.Equal(t, "Soup", m.Categories[0].Items[0].Name)
}

func TestInTx_FailureDiscardsEverything(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(tx Tx) error {
		if _, err := tx.CreateCategory(ctx, storeID, "en", CategoryInput{Name: "Starters"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	m, err := repo.GetMenu(ctx, storeID, "en")
	require.NoError(t, err)
	assert.Empty(t, m.Categories)
}

func TestInTx_UpdateMissingRowReturnsNotFound(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	name := "Renamed"
	err := repo.InTx(ctx, func(tx Tx) error {
		err := tx.UpdateCategory(ctx, storeID, "missing", "en", CategoryPatch{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)

		err = tx.UpdateItem(ctx, storeID, "missing", "en", ItemPatch{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)

		err = tx.UpdateOptionGroup(ctx, storeID, "missing", "en", OptionGroupPatch{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestInTx_PatchOnlyTouchesSetFields(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	catID := repo.SeedCategory(storeID, "en", CategoryInput{Name: "Starters"})
	itemID := repo.SeedItem(storeID, catID, "en", ItemInput{
		Name:        "Soup",
		Description: "Tom yum",
		PriceCents:  450,
		Allergens:   []string{"shellfish"},
	})

	price := 500
	err := repo.InTx(ctx, func(tx Tx) error {
		return tx.UpdateItem(ctx, storeID, itemID, "en", ItemPatch{PriceCents: &price})
	})
	require.NoError(t, err)

	m, err := repo.GetMenu(ctx, storeID, "en")
	require.NoError(t, err)
	item := m.Categories[0].Items[0]
	assert.Equal(t, 500, item.PriceCents)
	assert.Equal(t, "Soup", item.Name)
	assert.Equal(t, "Tom yum", item.Description)
	assert.Equal(t, []string{"shellfish"}, item.Allergens)
}
