package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vncsmyrnk/sketchbook/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/sketchbook/internal/adapters/handler/http"
	"github.com/vncsmyrnk/sketchbook/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/sketchbook/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/sketchbook/internal/app"
	"github.com/vncsmyrnk/sketchbook/internal/config"
	"github.com/vncsmyrnk/sketchbook/internal/core/ports"
	"github.com/vncsmyrnk/sketchbook/internal/logger"
	"github.com/vncsmyrnk/sketchbook/internal/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Format:      cfg.LogFormat,
		Environment: cfg.Environment,
		Level:       logger.ParseLevel(cfg.LogLevel),
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repos app.Repositories
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		repos = app.MemoryRepositories(memory.NewStore())
	default:
		db, err := postgres.Open(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return err
		}
		defer db.Close()
		repos = app.PostgresRepositories(db)
	}

	var cache ports.SpendCache
	if cfg.RedisURL != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("spend cache disabled", "error", err)
		} else {
			defer rdb.Close()
			cache = redis.NewSpendCache(rdb, cfg.SpendCacheTTL)
		}
	}

	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Idle)
	defer limiter.Stop()

	svc := app.NewServices(repos, cache, log)
	handler := http.NewHandler(http.RouterConfig{
		Service:        svc.Sketchbooks,
		Auth:           http.NewAuthenticator(cfg.JWTSecret),
		Limiter:        limiter,
		Logger:         log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	server := &stdhttp.Server{Addr: "0.0.0.0:" + cfg.Port, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", server.Addr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
