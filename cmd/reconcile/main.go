package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/vncsmyrnk/sketchbook/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/sketchbook/internal/config"
	"github.com/vncsmyrnk/sketchbook/internal/core/services"
	"github.com/vncsmyrnk/sketchbook/internal/logger"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum time the job may run")
	flag.Parse()

	log := logger.New(logger.Config{
		Environment: os.Getenv("ENVIRONMENT"),
		Level:       logger.ParseLevel(os.Getenv("LOG_LEVEL")),
	})

	pg, err := config.LoadPostgres()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := postgres.Open(ctx, pg.ConnString())
	if err != nil {
		log.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	reconciler := services.NewReconcileService(postgres.NewReconcileRepository(db))

	log.Info("starting counter reconciliation")
	start := time.Now()
	if err := reconciler.ReconcileAll(ctx); err != nil {
		log.Error("reconciliation failed", "error", err)
		os.Exit(1)
	}
	log.Info("counter reconciliation completed", "duration", time.Since(start))
}
