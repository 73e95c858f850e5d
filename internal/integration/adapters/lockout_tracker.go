package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// defaultSweepInterval is how often stale records are evicted when none is configured.
const defaultSweepInterval = 5 * time.Minute

// MemoryLockoutTracker keeps lockout state for one process.
// Every read, write and sweep goes through mu.
type MemoryLockoutTracker struct {
	mu      sync.Mutex
	records map[string]*entity.LockoutRecord

	policy        entity.LockoutPolicy
	clock         adapter.Clock
	sweepInterval time.Duration
	// sweep is what the background loop runs; it is Sweep outside tests.
	sweep func(context.Context) (int, error)

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

var _ adapter.LockoutTracker = (*MemoryLockoutTracker)(nil)

// NewMemoryLockoutTracker creates an in-memory tracker. Call Start to enable periodic sweeping.
func NewMemoryLockoutTracker(policy entity.LockoutPolicy, clock adapter.Clock, sweepInterval time.Duration) (*MemoryLockoutTracker, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if sweepInterval < 0 {
		return nil, fmt.Errorf("%w: sweep interval must not be negative", domainerror.ErrInvalidParameters)
	}
	if sweepInterval == 0 {
		sweepInterval = defaultSweepInterval
	}
	if clock == nil {
		clock = NewSystemClock()
	}

	t := &MemoryLockoutTracker{
		records:       make(map[string]*entity.LockoutRecord),
		policy:        policy,
		clock:         clock,
		sweepInterval: sweepInterval,
	}
	t.sweep = t.Sweep
	return t, nil
}

// RecordFailedAttempt registers one failure for identifier.
func (t *MemoryLockoutTracker) RecordFailedAttempt(_ context.Context, identifier string) (entity.LockoutStatus, error) {
	key := entity.NormalizeIdentifier(identifier)
	now := t.clock.Now()

	t.mu.Lock()
	record, exists := t.records[key]
	if !exists {
		record = &entity.LockoutRecord{}
		t.records[key] = record
	}
	wasLocked := record.IsLockedAt(now)
	status := record.RegisterFailure(now, t.policy)
	t.mu.Unlock()

	if status.IsLocked && !wasLocked {
		slog.Warn("Identifier locked after repeated failures",
			"identifier", key,
			"lockout_duration", t.policy.LockoutDuration,
		)
	}

	return status, nil
}

// IsLocked reports the status of identifier without modifying it.
func (t *MemoryLockoutTracker) IsLocked(_ context.Context, identifier string) (entity.LockoutStatus, error) {
	key := entity.NormalizeIdentifier(identifier)
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	record, exists := t.records[key]
	if !exists {
		return entity.LockoutStatus{AttemptsRemaining: t.policy.MaxAttempts}, nil
	}
	return record.StatusAt(now, t.policy), nil
}

// ResetAttempts removes all state for identifier.
func (t *MemoryLockoutTracker) ResetAttempts(_ context.Context, identifier string) error {
	key := entity.NormalizeIdentifier(identifier)

	t.mu.Lock()
	delete(t.records, key)
	t.mu.Unlock()

	return nil
}

// Sweep evicts records whose lock has passed and whose last attempt is older than one window.
func (t *MemoryLockoutTracker) Sweep(_ context.Context) (int, error) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, record := range t.records {
		if record.EvictableAt(now, t.policy.AttemptWindow) {
			delete(t.records, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked identifiers.
func (t *MemoryLockoutTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Start launches the periodic sweep. Calling Start on a running tracker is a no-op.
func (t *MemoryLockoutTracker) Start(ctx context.Context) {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.run(ctx, t.done)
}

// Stop halts the periodic sweep and waits for it to exit.
func (t *MemoryLockoutTracker) Stop() {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
}

func (t *MemoryLockoutTracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	slog.Info("Lockout sweeper started", "sweep_interval", t.sweepInterval)

	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Lockout sweeper shutting down")
			return
		case <-ticker.C:
			removed, err := t.sweep(ctx)
			if err != nil {
				slog.Warn("Failed to sweep lockout records", "error", err)
				continue
			}
			if removed > 0 {
				slog.Debug("Swept stale lockout records", "removed", removed)
			}
		}
	}
}
