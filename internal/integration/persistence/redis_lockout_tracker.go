// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
)

const (
	// lockoutKeyPrefix namespaces lockout records in a shared Redis.
	lockoutKeyPrefix = "credential:lockout:"
	// maxTxRetries bounds optimistic retries when another instance updates the same key.
	maxTxRetries = 16
)

// ErrLockoutContention is returned when an update keeps losing the optimistic race.
var ErrLockoutContention = errors.New("lockout record is under heavy contention")

// redisLockoutTracker implements adapter.LockoutTracker on Redis so several
// service instances share one view of failures. Each identifier is one key
// holding the JSON record, expiring when the record stops carrying information.
type redisLockoutTracker struct {
	client *redis.Client
	policy entity.LockoutPolicy
	clock  adapter.Clock
}

// NewRedisLockoutTracker creates a Redis-backed lockout tracker.
func NewRedisLockoutTracker(client *redis.Client, policy entity.LockoutPolicy, clock adapter.Clock) (adapter.LockoutTracker, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &redisLockoutTracker{
		client: client,
		policy: policy,
		clock:  clock,
	}, nil
}

func lockoutKey(identifier string) string {
	return lockoutKeyPrefix + entity.NormalizeIdentifier(identifier)
}

// RecordFailedAttempt registers one failure inside a WATCH/MULTI transaction, retrying on conflict.
func (t *redisLockoutTracker) RecordFailedAttempt(ctx context.Context, identifier string) (entity.LockoutStatus, error) {
	key := lockoutKey(identifier)

	var status entity.LockoutStatus
	var justLocked bool

	update := func(tx *redis.Tx) error {
		record, err := loadLockoutRecord(ctx, tx, key)
		if err != nil {
			return err
		}

		now := t.clock.Now()
		if record.IsLockedAt(now) {
			status = record.StatusAt(now, t.policy)
			justLocked = false
			return nil
		}

		status = record.RegisterFailure(now, t.policy)
		justLocked = status.IsLocked

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode lockout record: %w", err)
		}
		ttl := record.ExpiresAt(t.policy.AttemptWindow).Sub(now) + time.Millisecond

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := t.client.Watch(ctx, update, key)
		if err == nil {
			if justLocked {
				slog.Warn("Identifier locked after repeated failures",
					"identifier", entity.NormalizeIdentifier(identifier),
					"lockout_duration", t.policy.LockoutDuration,
				)
			}
			return status, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return entity.LockoutStatus{}, fmt.Errorf("failed to record failed attempt: %w", err)
	}

	return entity.LockoutStatus{}, ErrLockoutContention
}

// IsLocked reads the record and reports its status.
func (t *redisLockoutTracker) IsLocked(ctx context.Context, identifier string) (entity.LockoutStatus, error) {
	record, err := loadLockoutRecord(ctx, t.client, lockoutKey(identifier))
	if err != nil {
		return entity.LockoutStatus{}, fmt.Errorf("failed to read lockout record: %w", err)
	}
	return record.StatusAt(t.clock.Now(), t.policy), nil
}

// ResetAttempts deletes the record.
func (t *redisLockoutTracker) ResetAttempts(ctx context.Context, identifier string) error {
	if err := t.client.Del(ctx, lockoutKey(identifier)).Err(); err != nil {
		return fmt.Errorf("failed to reset lockout record: %w", err)
	}
	return nil
}

// Sweep is a no-op: keys expire on their own.
func (t *redisLockoutTracker) Sweep(context.Context) (int, error) {
	return 0, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// loadLockoutRecord returns an empty record when the key does not exist.
func loadLockoutRecord(ctx context.Context, c stringGetter, key string) (*entity.LockoutRecord, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &entity.LockoutRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	var record entity.LockoutRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode lockout record %s: %w", key, err)
	}
	return &record, nil
}
