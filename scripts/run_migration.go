package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ridwanfathin/invoice-extractor-service/internal/database"
)

func main() {
	// Load .env file if present; the environment may already be set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Fatalf("Error loading .env file: %v", err)
	}

	// Get database URL
	dbURL := os.Getenv("POSTGRES_DB_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		logrus.Fatal("POSTGRES_DB_URL environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, dbURL)
	if err != nil {
		logrus.Fatalf("Unable to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		logrus.Fatalf("Failed to execute migrations: %v", err)
	}

	logrus.Info("Migrations successfully executed!")
}
