package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/kofiadu/staffsync/internal/audit"
	"github.com/kofiadu/staffsync/internal/config"
	"github.com/kofiadu/staffsync/internal/engine"
	"github.com/kofiadu/staffsync/internal/entity"
	"github.com/kofiadu/staffsync/internal/logging"
	"github.com/kofiadu/staffsync/internal/notify"
	"github.com/kofiadu/staffsync/internal/repository"
	"github.com/kofiadu/staffsync/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"fuzzy_threshold", cfg.Import.FuzzyThreshold,
		"primary_min_overlap", cfg.Import.PrimaryMinOverlap,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	slog.Info("entity kinds registered", "count", entity.Count())

	hub := notify.NewSummaryHub()
	dispatcher := notify.NewDispatcher(notify.LogSender{}, hub, cfg.Notify.QueueSize)
	defer dispatcher.Stop()

	store := repository.NewStore()
	audits := audit.NewStore()

	importer := engine.NewService(pool, store, dispatcher, audits, engine.Config{
		FuzzyThreshold:    cfg.Import.FuzzyThreshold,
		PrimaryMinOverlap: cfg.Import.PrimaryMinOverlap,
	})

	server := web.NewServer(importer, pool, audits, hub, cfg)

	// Graceful shutdown on SIGINT/SIGTERM
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(runCtx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}
