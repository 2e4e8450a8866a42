package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/config"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/db"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/migrate"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if cfg.LedgerDSN == "" {
		logger.Fatalf("LEDGER_DB_DSN is required to run migrations")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.LedgerDSN)
	if err != nil {
		logger.Fatalf("connect ledger db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Println("migrations applied")
}
