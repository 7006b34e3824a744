package store

import (
	"context"
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

func (r *PostgresRepository) IsOwner(
	ctx context.Context,
	storeID, merchantID string,
) (bool, error) {

	var owner string
	err := r.db.QueryRow(ctx, `
		SELECT owner_id
		FROM stores
		WHERE id = $1
	`, storeID).Scan(&owner)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}

	return owner == merchantID, nil
}

func (r *PostgresRepository) DefaultLanguage(
	ctx context.Context,
	storeID string,
) (string, error) {

	var lang string
	err := r.db.QueryRow(ctx, `
		SELECT default_language
		FROM stores
		WHERE id = $1
	`, storeID).Scan(&lang)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}

	return lang, nil
}
