package main

import (
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"fleet-tracking-service/internal/adapters/repositories"
	"fleet-tracking-service/internal/config"
	"fleet-tracking-service/internal/platform/db"
	"fleet-tracking-service/internal/platform/obs"
)

// dbtool prepares a Postgres route store: it creates the schema and loads
// the seed file.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (using environment variables)")
	}
	obs.Init(config.Get("LOG_LEVEL", "info"))

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(db.DriverPostgres, databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Info("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Info("Schema ready.")

	seedPath := config.Get("SEED_PATH", "data/seeds/routes.json")
	log.WithField("path", seedPath).Info("Seeding database...")
	if err := repositories.SeedFromJSON(conn, repositories.Postgres, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Info("Seeding complete.")
}
