// Package maintenance runs periodic housekeeping for the credential subsystem.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/storefront/credential-security/internal/application/adapter"
)

// Pruner removes idle entries and reports how many were dropped.
type Pruner interface {
	Cleanup() int
}

// Worker prunes the audit trail and idle rate-limit buckets on a fixed interval.
type Worker struct {
	attempts      adapter.AttemptRepository
	pruners       []Pruner
	interval      time.Duration
	retentionDays int
}

// WorkerConfig holds configuration for the maintenance worker.
type WorkerConfig struct {
	Interval      time.Duration
	RetentionDays int
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Interval:      time.Hour,
		RetentionDays: 90,
	}
}

// NewWorker creates a new maintenance worker. attempts may be nil when the
// audit trail is disabled.
func NewWorker(attempts adapter.AttemptRepository, config WorkerConfig, pruners ...Pruner) *Worker {
	if config.Interval <= 0 {
		config.Interval = DefaultWorkerConfig().Interval
	}
	return &Worker{
		attempts:      attempts,
		pruners:       pruners,
		interval:      config.Interval,
		retentionDays: config.RetentionDays,
	}
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Maintenance worker started",
		"interval", w.interval,
		"retention_days", w.retentionDays,
		"audit_enabled", w.attempts != nil,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Maintenance worker shutting down")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single maintenance pass.
func (w *Worker) RunOnce(ctx context.Context) {
	if w.attempts != nil && w.retentionDays > 0 {
		deleted, err := w.attempts.DeleteOlderThan(ctx, w.retentionDays)
		if err != nil {
			slog.Error("Failed to prune authentication attempts", "error", err)
		} else if deleted > 0 {
			slog.Info("Pruned authentication attempts", "deleted", deleted, "retention_days", w.retentionDays)
		}
	}

	for _, p := range w.pruners {
		if removed := p.Cleanup(); removed > 0 {
			slog.Debug("Pruned idle entries", "removed", removed)
		}
	}
}
