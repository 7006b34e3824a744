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
	"menuvo/internal/middleware"
	"menuvo/internal/storage"
	"menuvo/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	required := []string{
		"JWT_SECRET",
		"DATABASE_URL",
		"GEMINI_API_KEY",
		"GEMINI_MODEL",
		"R2_ACCESS_KEY",
		"R2_SECRET_KEY",
		"R2_BUCKET_NAME",
		"R2_ENDPOINT",
		"R2_PUBLIC_BASE_URL",
	}

	for _, k := range required {
		if os.Getenv(k) == "" {
			log.Fatalf("❌ Missing env var: %s", k)
		}
	}

	// ───────────────────────── DB ─────────────────────────
	pgDB := db.ConnectPostgres()
	defer pgDB.Close()

	// ───────────────────────── GIN ─────────────────────────
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ───────────────────────── STORAGE ─────────────────────────
	r2Client, err := storage.NewR2Client(context.Background())
	if err != nil {
		log.Fatal("❌ R2 init failed:", err)
	}

	// ───────────────────────── EXTRACTORS ─────────────────────────
	// Explicit registry built here and injected — extractors never
	// self-register through import side effects.
	gemini := extraction.NewGeminiExtractor()

	extractors := extraction.NewRegistry()
	extractors.Register("csv", extraction.NewCSVExtractor())
	extractors.Register("xlsx", gemini)
	extractors.Register("json", gemini)
	extractors.Register("txt", gemini)
	extractors.Register("pdf", gemini)

	// ───────────────────────── REPOS ─────────────────────────
	storeRepo := store.NewPostgresRepository(pgDB)
	menuRepo := menu.NewPostgresRepository(pgDB)
	importRepo := importer.NewPostgresRepository(pgDB)

	// ───────────────────────── SERVICES ─────────────────────────
	importService := importer.NewService(
		importRepo,
		menuRepo,
		storeRepo,
		r2Client,
		extractors,
	)

	// ───────────────────────── HANDLERS ─────────────────────────
	importHandler := importer.NewHandler(importService)
	menuHandler := menu.NewHandler(menuRepo, storeRepo)

	// ───────────────────────── IMPORT ROUTES ─────────────────────────
	imports := r.Group("/stores/:store_id/menu-imports")
	imports.Use(
		middleware.AuthMiddleware(),
		middleware.RequireRole("MERCHANT"),
	)
	{
		imports.POST("", importHandler.Upload)
		imports.GET("", importHandler.List)

		// Status polling (poll every ~2s until READY / FAILED / COMPLETED)
		imports.GET("/:job_id", importHandler.GetStatus)

		imports.POST("/:job_id/apply", importHandler.Apply)
	}

	// ───────────────────────── PUBLIC ─────────────────────────
	r.GET("/stores/:store_id/menu", menuHandler.GetMenu)

	// ───────────────────────── IMPORT WORKER ─────────────────────────
	go runImportWorker(importService)

	// ───────────────────────── HEALTH ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ───────────────────────── START ─────────────────────────
	log.Println("🚀 API running at http://localhost:8000")
	r.Run(":8000")
}

// --------------------------------------------------
func runImportWorker(service *importer.Service) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := service.ProcessOne(context.Background()); err != nil {
			log.Printf("⚠️  import worker error: %v", err)
		}
	}
}
