package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/config"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/db"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/httpserver"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/ledger"
	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/session"
)

func main() {
	// Best effort; production injects real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	// The ledger database is optional; without it payment attachment still
	// works, orphaned payments are just not reconcilable.
	var pool *pgxpool.Pool
	var ledgerRepo ledger.Repository
	if cfg.LedgerDSN != "" {
		pool, err = db.Connect(ctx, cfg.LedgerDSN)
		if err != nil {
			logger.Fatalf("connect ledger db: %v", err)
		}
		defer pool.Close()
		ledgerRepo = ledger.NewPostgres(pool)
	} else {
		logger.Printf("no ledger db configured, payment ledger disabled")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Config:   cfg,
		Redis:    rdb,
		Sessions: session.NewStore(rdb),
		Ledger:   ledgerRepo,
		DB:       pool,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
