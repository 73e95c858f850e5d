// Package main is the entry point for the credential security API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/storefront/credential-security/config"
	"github.com/storefront/credential-security/internal/infra/cache"
	"github.com/storefront/credential-security/internal/infra/db"
	"github.com/storefront/credential-security/internal/infra/dependency"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting credential security API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	deps := dependency.Dependencies{}

	// Without a database only the attempts endpoint is unavailable.
	if cfg.Database.AuditEnabled {
		database, err := db.NewPostgresConnection(&cfg.Database)
		if err != nil {
			slog.Warn("Database connection failed, running without audit trail", "error", err)
			deps.DBHealthChecker = func() bool { return false }
		} else {
			if err := database.MigrateAuditTrail(); err != nil {
				slog.Error("Failed to run database migrations", "error", err)
				os.Exit(1)
			}
			slog.Info("Database migrations completed successfully")

			deps.DB = database.DB()
			deps.DBHealthChecker = database.HealthCheck
			defer func() {
				if err := database.Close(); err != nil {
					slog.Error("Failed to close database connection", "error", err)
				}
			}()
		}
	}

	// No fallback to memory once the redis backend is selected.
	if cfg.Lockout.Backend == config.LockoutBackendRedis {
		conn, err := cache.NewRedisConnection(&cfg.Redis)
		if err != nil {
			slog.Error("Redis connection failed", "error", err)
			os.Exit(1)
		}
		deps.Redis = conn.Client()
		deps.RedisHealthChecker = conn.HealthCheck
		defer func() {
			if err := conn.Close(); err != nil {
				slog.Error("Failed to close redis connection", "error", err)
			}
		}()
	}

	injector, err := dependency.NewInjector(cfg, deps)
	if err != nil {
		slog.Error("Failed to wire dependencies", "error", err)
		os.Exit(1)
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	injector.Start(workerCtx)

	engine := injector.Router.Setup(cfg.Server.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	stopWorkers()
	injector.Stop()

	slog.Info("Server exited properly")
}
