package main

import (
	"context"
	"log"
	"net/http"

	"gokinet/adapters/api"
	"gokinet/adapters/memstore"
	"gokinet/adapters/postgres"
	"gokinet/app"
	"gokinet/internal/config"
	"gokinet/internal/migration"
	"gokinet/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var store ports.AnalysisStore
	if appConfig.Database.URL != "" {
		db, err := sqlx.Connect("postgres", appConfig.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		migrator := migration.NewRunner()
		if err := migrator.Run(context.Background(), db); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		store = postgres.NewAnalysisRepository(db)
	} else {
		store = memstore.New()
		log.Println("No DATABASE_URL configured, using in-memory analysis store")
	}

	service := app.NewAnalysisService(store, appConfig.Fitting)
	handler := api.NewHandler(service)

	addr := ":" + appConfig.Server.Port
	log.Printf("Starting GoKinet API server on %s", addr)
	if err := http.ListenAndServe(addr, handler.Router()); err != nil {
		log.Fatal("Server failed:", err)
	}
}
