// Command orphans lists payments that were created on the platform but never
// linked to a cart, so an operator can cancel or reconcile them.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/config"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/db"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/ledger"
)

func main() {
	olderThan := flag.Duration("older-than", time.Hour, "only list payments created at least this long ago")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := log.New(os.Stdout, "[orphans] ", log.LstdFlags|log.LUTC)

	if cfg.LedgerDSN == "" {
		logger.Fatalf("LEDGER_DB_DSN is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.LedgerDSN)
	if err != nil {
		logger.Fatalf("connect ledger db: %v", err)
	}
	defer pool.Close()

	entries, err := ledger.NewPostgres(pool).Orphans(ctx, *olderThan)
	if err != nil {
		logger.Fatalf("list orphans: %v", err)
	}

	if len(entries) == 0 {
		logger.Printf("no orphaned payments older than %s", *olderThan)
		return
	}
	for _, e := range entries {
		logger.Printf("payment=%s cart=%s provider=%s amount=%d %s created=%s",
			e.PaymentID, e.CartID, e.Provider, e.CentAmount, e.Currency, e.CreatedAt.Format(time.RFC3339))
	}
}
