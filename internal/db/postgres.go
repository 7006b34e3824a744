package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectPostgres() *pgxpool.Pool {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal(err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal("Postgres connection failed:", err)
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize schema
	if err := initSchema(db); err != nil {
		log.Fatal("Failed to initialize schema:", err)
	}

	return db
}

// initSchema creates or updates the database schema
func initSchema(db *pgxpool.Pool) error {
	ctx := context.Background()

	// -------------------------------
	// STORES
	// -------------------------------
	storesSQL := `
		CREATE TABLE IF NOT EXISTS stores (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			default_language VARCHAR(8) NOT NULL DEFAULT 'en',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(ctx, storesSQL); err != nil {
		return err
	}

	// -------------------------------
	// MENU: CATEGORIES + ITEMS (translated per language)
	// -------------------------------
	menuSQL := `
		CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			store_id UUID NOT NULL REFERENCES stores(id),
			display_order INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS category_translations (
			category_id UUID NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			language VARCHAR(8) NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (category_id, language)
		);

		CREATE TABLE IF NOT EXISTS items (
			id UUID PRIMARY KEY,
			category_id UUID NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			store_id UUID NOT NULL REFERENCES stores(id),
			price_cents INT NOT NULL,
			allergens TEXT[] NOT NULL DEFAULT '{}',
			display_order INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS item_translations (
			item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			language VARCHAR(8) NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (item_id, language)
		);
	`
	if _, err := db.Exec(ctx, menuSQL); err != nil {
		return err
	}

	// -------------------------------
	// MENU: OPTION GROUPS + CHOICES
	// -------------------------------
	optionsSQL := `
		CREATE TABLE IF NOT EXISTS option_groups (
			id UUID PRIMARY KEY,
			store_id UUID NOT NULL REFERENCES stores(id),
			group_type VARCHAR(20) NOT NULL DEFAULT 'single',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS option_group_translations (
			option_group_id UUID NOT NULL REFERENCES option_groups(id) ON DELETE CASCADE,
			language VARCHAR(8) NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (option_group_id, language)
		);

		CREATE TABLE IF NOT EXISTS option_choices (
			id UUID PRIMARY KEY,
			option_group_id UUID NOT NULL REFERENCES option_groups(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			price_modifier_cents INT NOT NULL DEFAULT 0,
			display_order INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.Exec(ctx, optionsSQL); err != nil {
		return err
	}

	// -------------------------------
	// IMPORT JOBS
	// -------------------------------
	importJobsSQL := `
		CREATE TABLE IF NOT EXISTS import_jobs (
			id UUID PRIMARY KEY,
			store_id UUID NOT NULL REFERENCES stores(id),
			original_filename VARCHAR(500) NOT NULL,
			file_type VARCHAR(10) NOT NULL,
			file_key VARCHAR(500) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'PROCESSING',
			error_message TEXT NULL,
			comparison_data JSONB NULL,
			claimed_at TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_import_jobs_pending
			ON import_jobs (created_at)
			WHERE status = 'PROCESSING' AND claimed_at IS NULL;
	`
	if _, err := db.Exec(ctx, importJobsSQL); err != nil {
		return err
	}

	log.Println("✅ Schema initialized successfully")
	return nil
}
