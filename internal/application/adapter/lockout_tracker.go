package adapter

import (
	"context"
	"time"

	"github.com/storefront/credential-security/internal/domain/entity"
)

// LockoutTracker counts failed attempts per identifier and locks identifiers that exceed the policy.
// Identifiers are normalized before any lookup.
type LockoutTracker interface {
	// RecordFailedAttempt registers one failure and returns the resulting status.
	RecordFailedAttempt(ctx context.Context, identifier string) (entity.LockoutStatus, error)

	// IsLocked reports the current status without registering anything.
	IsLocked(ctx context.Context, identifier string) (entity.LockoutStatus, error)

	// ResetAttempts forgets everything known about identifier.
	ResetAttempts(ctx context.Context, identifier string) error

	// Sweep removes records that no longer carry information and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}
