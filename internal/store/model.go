package store

import "time"

// Store is a merchant's storefront. Every menu entity and import job
// is scoped to exactly one store.
type Store struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Name            string    `json:"name"`
	DefaultLanguage string    `json:"default_language"`
	CreatedAt       time.Time `json:"created_at"`
}
