package main

import (
	"log"
	"os"
	"strconv"

	"decision-ledger-be/internal/migration"
	"decision-ledger-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	dims := 1024
	if raw := os.Getenv("EMBEDDING_DIMENSIONS"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("Error: EMBEDDING_DIMENSIONS must be an integer: %v", err)
		}
		dims = v
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting decision ledger migration...")
	if err := migration.Run(db, dims); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
