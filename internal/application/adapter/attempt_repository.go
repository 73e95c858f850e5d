package adapter

import (
	"context"

	"github.com/storefront/credential-security/internal/domain/entity"
)

// AttemptRepository defines the interface for authentication attempt audit persistence.
type AttemptRepository interface {
	// Record stores one audit event.
	Record(ctx context.Context, attempt *entity.AuthAttempt) error

	// ListRecent returns the newest events for identifier, newest first.
	ListRecent(ctx context.Context, identifier string, limit int) ([]*entity.AuthAttempt, error)

	// DeleteOlderThan removes events that occurred before the cutoff age in days.
	DeleteOlderThan(ctx context.Context, olderThanDays int) (int64, error)
}
