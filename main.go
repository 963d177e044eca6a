package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"neeledger/adapters/llm"
	"neeledger/adapters/memory"
	"neeledger/adapters/postgres"
	"neeledger/adapters/predictor"
	"neeledger/app"
	"neeledger/internal/config"
	"neeledger/internal/errors"
	"neeledger/internal/migration"
	"neeledger/internal/ops"
	"neeledger/ports"
	"neeledger/ui"
)

// initDatabase connects to PostgreSQL and runs schema migrations.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

// setupAnalyzer wires the Gemini qualitative path when an API key is
// configured. Returns nil when analysis is disabled; the pipeline then runs
// numeric-only.
func setupAnalyzer(appConfig *config.Config) (ports.Analyzer, error) {
	if appConfig.AI.APIKey == "" {
		return nil, nil
	}

	client, err := llm.NewGeminiClient(llm.Config{
		APIKey:          appConfig.AI.APIKey,
		Model:           appConfig.AI.Model,
		BaseURL:         appConfig.AI.BaseURL,
		Temperature:     appConfig.AI.Temperature,
		MaxOutputTokens: appConfig.AI.MaxOutputTokens,
		Timeout:         appConfig.AI.RequestTimeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}

	return llm.NewGeminiAnalyzer(client, appConfig.AI.MaxConcurrent), nil
}

func main() {
	// Load environment variables from .env file (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Review store: Postgres when configured, in-memory otherwise
	var reviews ports.ReviewRepository
	if appConfig.Database.URL != "" {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		reviews = postgres.NewReviewRepository(db)
		log.Println("[Main] Review store: postgres")
	} else {
		reviews = memory.NewReviewRepository()
		log.Println("[Main] DATABASE_URL not set, review store: in-memory")
	}

	analyzer, err := setupAnalyzer(appConfig)
	if err != nil {
		log.Fatalf("Failed to set up Gemini analyzer: %v", err)
	}
	if analyzer == nil {
		log.Println("[Main] GEMINI_API_KEY not set, qualitative analysis disabled")
	} else {
		log.Printf("[Main] Qualitative analysis enabled (model %s)", appConfig.AI.Model)
	}

	biomassPredictor := predictor.NewBiomassPredictor()
	pipeline := app.NewPipelineService(biomassPredictor, analyzer, reviews, appConfig.Pipeline.AnalysisTimeout)
	reviewService := app.NewReviewService(reviews)

	server := ui.NewServer(biomassPredictor, pipeline, reviewService)

	if appConfig.Profiling.Enabled {
		go func() {
			if err := ops.NewServer().Start(":" + appConfig.Profiling.Port); err != nil {
				log.Printf("[Main] ops server failed: %v", err)
			}
		}()
	}

	log.Printf("[Main] Starting NeeLedger server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
