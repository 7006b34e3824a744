package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store not found")

// Repository defines the store lookups the import pipeline needs.
type Repository interface {

	// IsOwner reports whether the merchant owns the store. Every
	// read/write on a store's jobs or menu checks this first.
	IsOwner(ctx context.Context, storeID, merchantID string) (bool, error)

	// DefaultLanguage is the language slot extractions are written
	// into; other languages' translations are never touched.
	DefaultLanguage(ctx context.Context, storeID string) (string, error)
}
