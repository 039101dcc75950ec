// Package server runs the storefront process: it opens the store, builds
// the kernel and serves until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/cubeshop/app/services"
	"github.com/shashiranjanraj/cubeshop/config"
	"github.com/shashiranjanraj/cubeshop/internal/kernel"
	"github.com/shashiranjanraj/cubeshop/pkg/cache"
	"github.com/shashiranjanraj/cubeshop/pkg/logger"
)

const shutdownGrace = 15 * time.Second

// Start blocks until ctx is cancelled (SIGINT/SIGTERM in the CLI) or the
// listener fails, then drains in-flight requests and releases resources.
func Start(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if uri := config.LogMongoURI(); uri != "" {
		sink, err := logger.NewMongoHandler(uri, config.DatabaseName(), "logs", slog.LevelInfo)
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			defer sink.Close()
			logger.Use(slog.New(logger.NewMultiHandler(logger.L.Handler(), sink)))
		}
	}

	backend, err := Open(ctx)
	if err != nil {
		return err
	}
	defer backend.Close(context.Background())

	if err := backend.Migrate(ctx); err != nil {
		return err
	}

	verifier, err := NewVerifier()
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if addr := config.RedisAddr(); addr != "" {
		rdb, err = cache.Connect(ctx, cache.Options{Addr: addr, Password: config.RedisPassword()})
		if err != nil {
			logger.Warn("redis unavailable, rate limiting per process", "error", err)
		} else {
			defer rdb.Close()
		}
	}

	k := kernel.NewHTTPKernel(kernel.Deps{
		Store:              backend.Store,
		Verifier:           verifier,
		Redis:              rdb,
		Services:           services.Options{BindOrderOwner: config.OrdersBindOwner()},
		RateLimitPerMinute: config.RateLimitPerMinute(),
		CORSOrigins:        config.CORSAllowedOrigins(),
		TrustProxy:         config.TrustProxy(),
	})

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv(), "auth", config.AuthMode())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
