package menu

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Tx update methods when the target row no
// longer exists in the store. The apply step downgrades that entity to
// a skip instead of failing the whole transaction.
var ErrNotFound = errors.New("menu entity not found")

// Repository defines all database operations on a store's menu.
type Repository interface {

	// GetMenu loads the full menu tree for one store in one language,
	// ordered by display order.
	GetMenu(ctx context.Context, storeID, language string) (*Menu, error)

	// InTx runs fn inside a single transaction. If fn returns an
	// error the transaction is rolled back and nothing persists.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional mutator handed to InTx callbacks. All writes
// are scoped by storeID; updates against rows outside the store (or
// rows that vanished) return ErrNotFound.
type Tx interface {
	CreateCategory(ctx context.Context, storeID, language string, in CategoryInput) (string, error)
	UpdateCategory(ctx context.Context, storeID, categoryID, language string, patch CategoryPatch) error

	CreateItem(ctx context.Context, storeID, categoryID, language string, in ItemInput) (string, error)
	UpdateItem(ctx context.Context, storeID, itemID, language string, patch ItemPatch) error

	CreateOptionGroup(ctx context.Context, storeID, language string, in OptionGroupInput) (string, error)
	UpdateOptionGroup(ctx context.Context, storeID, groupID, language string, patch OptionGroupPatch) error
}
