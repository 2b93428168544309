// Command api is the ScoutDesk API server.
//
// Usage:
//
//	scoutdesk-api
//	API_PORT=8080 scoutdesk-api

// @title ScoutDesk API
// @version 1.0.0
// @description Football player aggregation and squad balance analytics. Proxies an upstream scrape gateway, caches normalized player records, and serves legacy-shaped JSON for the scouting frontend.
// @host localhost:8000
// @BasePath /
// @schemes http https
// @contact.name ScoutDesk
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/ferranmarti/scoutdesk/internal/api"
	"github.com/ferranmarti/scoutdesk/internal/api/handler"
	"github.com/ferranmarti/scoutdesk/internal/config"
	"github.com/ferranmarti/scoutdesk/internal/db"
	"github.com/ferranmarti/scoutdesk/internal/fetch"
	"github.com/ferranmarti/scoutdesk/internal/provider/transfermarkt"
	"github.com/ferranmarti/scoutdesk/internal/store"

	_ "github.com/ferranmarti/scoutdesk/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Upstream gateway client
	client := transfermarkt.NewClient(transfermarkt.Config{
		BaseURL:           cfg.GatewayURL,
		APIKey:            cfg.GatewayAPIKey,
		RequestsPerMinute: cfg.GatewayRPM,
		MaxRetries:        cfg.GatewayRetries,
		HTTPClient:        &http.Client{Timeout: cfg.GatewayTimeout},
		Logger:            logger,
	})

	// Optional Postgres archive
	var (
		pool         *db.Pool
		storeOptions = []store.Option{store.WithLogger(logger)}
	)
	if cfg.DatabaseURL != "" {
		logger.Info("Connecting to archive database...")
		pool, err = db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Archive database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
		storeOptions = append(storeOptions, store.WithArchive(db.NewArchive(pool)))
	} else {
		logger.Info("Archive disabled (no DATABASE_URL)")
	}

	// Player record store
	st := store.New(client, storeOptions...)
	if pool != nil {
		n, err := st.WarmFromArchive(ctx)
		if err != nil {
			logger.Warn("Archive warm-up failed", "error", err)
		} else {
			logger.Info("Store warmed from archive", "players", n)
		}
	}

	// Fetch orchestrator
	orch := fetch.New(st, fetch.Config{
		Workers: cfg.FetchWorkers,
		Timeout: cfg.FetchTimeout,
		Logger:  logger,
	})

	// Create router
	h := handler.New(st, orch, client, pool, cfg, logger)
	router := api.NewRouter(h, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting ScoutDesk API",
			"addr", addr,
			"environment", cfg.Environment,
			"gateway", cfg.GatewayURL,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
