package main

import (
	"context"
	"log"
	"os"
	"time"

	"menuvo/internal/db"
	"menuvo/internal/extraction"
	"menuvo/internal/importer"
	"menuvo/internal/menu"
	"menuvo/internal/storage"
	"menuvo/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, using environment variables")
	}

	log.Println("🧠 Import worker starting...")

	if os.Getenv("DATABASE_URL") == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	// Database connection
	pgDB := db.ConnectPostgres()
	defer pgDB.Close()

	log.Println("✅ Connected to PostgreSQL")

	r2Client, err := storage.NewR2Client(context.Background())
	if err != nil {
		log.Fatal("❌ R2 init failed:", err)
	}

	gemini := extraction.NewGeminiExtractor()

	extractors := extraction.NewRegistry()
	extractors.Register("csv", extraction.NewCSVExtractor())
	extractors.Register("xlsx", gemini)
	extractors.Register("json", gemini)
	extractors.Register("txt", gemini)
	extractors.Register("pdf", gemini)

	service := importer.NewService(
		importer.NewPostgresRepository(pgDB),
		menu.NewPostgresRepository(pgDB),
		store.NewPostgresRepository(pgDB),
		r2Client,
		extractors,
	)

	log.Println("✅ Import worker initialized and running...")
	log.Println("Processing menu imports every 2 seconds. Press Ctrl+C to stop.")

	// Process import jobs indefinitely
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := service.ProcessOne(context.Background()); err != nil {
			log.Printf("⚠️  import error: %v", err)
		}
	}
}
