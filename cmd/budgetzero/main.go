package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"budgetzero/internal/amqp"
	"budgetzero/internal/config"
	"budgetzero/internal/core"
	applog "budgetzero/internal/log"
	"budgetzero/internal/services"
	"budgetzero/internal/storage"
)

const lastMaterializedKey = "last_materialized_month"

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	logger.Info("Starting budgetzero")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite store
	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize AMQP client for publishing ledger-changed events.
	// The export-worker consumes these and mirrors months to Google Sheets.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - ledger changes will sync via export-worker")
		}
	} else {
		logger.Info("AMQP disabled - ledger changes will not be published")
	}

	ledger := services.NewLedgerService(store, amqpClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Month materializer configured",
		"interval", cfg.MaterializeInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	// Run initial materialization on startup so the current month is ready
	// before the first tick.
	if err := materializeCurrentMonth(ctx, store, ledger, time.Now()); err != nil {
		logger.Error("Initial materialization failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(cfg.MaterializeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-ticker.C:
				if err := materializeCurrentMonth(ctx, store, ledger, now); err != nil {
					logger.Error("Periodic materialization failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Budgetzero shutdown complete")
}

// materializeCurrentMonth makes sure the wall-clock month has its template
// entries and a cached balance, and records progress so a restart can tell
// whether a month boundary was crossed while the process was down.
func materializeCurrentMonth(ctx context.Context, store *storage.SQLiteStore, ledger *services.LedgerService, now time.Time) error {
	month, year := int(now.Month()), now.Year()

	entries, err := ledger.LoadMonth(ctx, month, year)
	if err != nil {
		return fmt.Errorf("materialize %d/%d: %w", month, year, err)
	}

	balance, err := ledger.Balances().RecalculateAndCache(ctx, month, year)
	if err != nil {
		return fmt.Errorf("recalculate %d/%d: %w", month, year, err)
	}

	key := strconv.Itoa(core.YearMonth(month, year))
	prev, err := store.GetSetting(ctx, lastMaterializedKey)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("read last materialized month: %w", err)
	}
	if prev != key {
		slog.InfoContext(ctx, "Entered new ledger month",
			"month", month, "year", year, "entries", len(entries), "ending_balance", balance)
	}
	if err := store.PutSetting(ctx, lastMaterializedKey, key); err != nil {
		return fmt.Errorf("record last materialized month: %w", err)
	}

	slog.InfoContext(ctx, "Month materialization complete",
		"month", month, "year", year, "entries", len(entries), "ending_balance", balance)
	return nil
}
