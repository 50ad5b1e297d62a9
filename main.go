package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"

	"gokinet/adapters/export"
	"gokinet/adapters/memstore"
	"gokinet/adapters/plot"
	"gokinet/adapters/postgres"
	"gokinet/app"
	"gokinet/internal/config"
	"gokinet/internal/errors"
	"gokinet/internal/migration"
	"gokinet/ports"
	"gokinet/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	// Run migrations
	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Select the analysis store: PostgreSQL when configured, in-memory otherwise
	var store ports.AnalysisStore
	if appConfig.Database.URL != "" {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		defer db.Close()
		store = postgres.NewAnalysisRepository(db)
		log.Println("Using PostgreSQL analysis store")
	} else {
		store = memstore.New()
		log.Println("No DATABASE_URL configured, using in-memory analysis store")
	}

	// Wire the analysis pipeline
	service := app.NewAnalysisService(store, appConfig.Fitting)
	exporter := export.NewExporter()
	renderer := plot.NewRenderer()

	// Initialize web server
	server, err := ui.NewServer(service, exporter, renderer, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("🚀 Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("❌ pprof server failed: %v", err)
			}
		}()
	}

	// Start the server
	log.Printf("🚀 Starting GoKinet server on port %s", appConfig.Server.Port)
	log.Fatal(server.Run(":" + appConfig.Server.Port))
}
