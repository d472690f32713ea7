package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kubetodo/internal/adapter/cache/memory"
	rediscache "kubetodo/internal/adapter/cache/redis"
	"kubetodo/internal/adapter/database/postgres"
	pgrepository "kubetodo/internal/adapter/database/postgres/repository"
	"kubetodo/internal/adapter/database/sqlite"
	"kubetodo/internal/core/port"
	coretelemetry "kubetodo/internal/core/telemetry"
	"kubetodo/pkg/config"
	"kubetodo/pkg/logging"
	"kubetodo/pkg/telemetry"
)

// StartServer builds the store, cache and router from config and serves
// until the context is cancelled, then drains with a shutdown grace period.
func StartServer(ctx context.Context, metrics *telemetry.AppMetrics, logger *logging.AppLogger, cfg *config.AppConfig) error {
	probe := coretelemetry.NewOTELProbe(slog.Default(), metrics)

	container, closeStore, err := buildContainer(ctx, cfg, logger, probe, metrics)

	if err != nil {
		return fmt.Errorf("store init: %w", err)
	}

	defer closeStore()

	cacheRepo, err := buildCacheRepository(ctx, cfg)

	if err != nil {
		return fmt.Errorf("cache init: %w", err)
	}

	defer cacheRepo.Close()

	router := SetupRouter(HandlersConfig{
		TodoHandler: container.TodoHandler,
	}, metrics, logger, cacheRepo, cfg)

	slog.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"database_driver", cfg.DatabaseDriver,
		"rate_limit_enabled", cfg.RateLimitEnabled,
		"cache_enabled", cfg.CacheEnabled)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func buildContainer(ctx context.Context, cfg *config.AppConfig, logger *logging.AppLogger, probe port.Telemetry, metrics *telemetry.AppMetrics) (*Container, func(), error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err := postgres.NewDB(ctx, postgres.Config{
			URL:            cfg.DatabaseURL,
			MigrationsPath: cfg.MigrationsPath,
		})

		if err != nil {
			return nil, nil, err
		}

		repo := pgrepository.NewTodoRepository(db)

		return NewContainerWithRepository(repo, logger, probe, metrics), db.Close, nil

	default:
		db, err := sqlite.NewDB(sqlite.Config{
			Path:           cfg.DatabasePath,
			MigrationsPath: cfg.MigrationsPath,
		})

		if err != nil {
			return nil, nil, err
		}

		return NewContainer(db, logger, probe, metrics), func() { db.Close() }, nil
	}
}

func buildCacheRepository(ctx context.Context, cfg *config.AppConfig) (port.CacheRepository, error) {
	if cfg.RedisURL != "" {
		return rediscache.NewRedisRepository(ctx, cfg.RedisURL)
	}

	return memory.NewMemoryRepository(), nil
}
