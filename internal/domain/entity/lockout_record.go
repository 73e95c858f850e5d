package entity

import (
	"fmt"
	"strings"
	"time"

	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// LockoutPolicy holds the thresholds of the sliding-window lockout.
type LockoutPolicy struct {
	MaxAttempts     int
	AttemptWindow   time.Duration
	LockoutDuration time.Duration
}

// DefaultLockoutPolicy returns 5 attempts per 15 minutes with a 30 minute lockout.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts:     5,
		AttemptWindow:   15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
	}
}

// Validate rejects policies that could never lock or never unlock.
func (p LockoutPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: maxAttempts must be at least 1, got %d", domainerror.ErrInvalidParameters, p.MaxAttempts)
	}
	if p.AttemptWindow <= 0 {
		return fmt.Errorf("%w: attemptWindow must be positive", domainerror.ErrInvalidParameters)
	}
	if p.LockoutDuration <= 0 {
		return fmt.Errorf("%w: lockoutDuration must be positive", domainerror.ErrInvalidParameters)
	}
	return nil
}

// LockoutStatus is what callers learn about an identifier after a check or a failure.
type LockoutStatus struct {
	IsLocked          bool          `json:"isLocked"`
	RemainingTime     time.Duration `json:"remainingTime"`
	AttemptsRemaining int           `json:"attemptsRemaining"`
}

// LockoutRecord tracks failures for one normalized identifier.
// A zero LockedUntil means the identifier is not locked.
type LockoutRecord struct {
	Count        int       `json:"count"`
	FirstAttempt time.Time `json:"firstAttempt"`
	LastAttempt  time.Time `json:"lastAttempt"`
	LockedUntil  time.Time `json:"lockedUntil"`
}

// NormalizeIdentifier case-folds and trims an identifier before lookup.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// IsLockedAt reports whether the lock is still in force at now.
func (r *LockoutRecord) IsLockedAt(now time.Time) bool {
	return !r.LockedUntil.IsZero() && now.Before(r.LockedUntil)
}

// RemainingAt returns how long the lock lasts past now, or 0 when unlocked.
func (r *LockoutRecord) RemainingAt(now time.Time) time.Duration {
	if !r.IsLockedAt(now) {
		return 0
	}
	return r.LockedUntil.Sub(now)
}

// RegisterFailure applies one failed attempt at now and returns the resulting status.
// While locked the record is left untouched. An expired lock or a window older
// than AttemptWindow starts a fresh window instead of accumulating.
func (r *LockoutRecord) RegisterFailure(now time.Time, p LockoutPolicy) LockoutStatus {
	if r.IsLockedAt(now) {
		return LockoutStatus{IsLocked: true, RemainingTime: r.RemainingAt(now)}
	}

	switch {
	case r.Count == 0, !r.LockedUntil.IsZero(), now.Sub(r.FirstAttempt) > p.AttemptWindow:
		r.Count = 1
		r.FirstAttempt = now
		r.LockedUntil = time.Time{}
	default:
		r.Count++
	}
	r.LastAttempt = now

	if r.Count >= p.MaxAttempts {
		r.LockedUntil = now.Add(p.LockoutDuration)
		return LockoutStatus{IsLocked: true, RemainingTime: p.LockoutDuration}
	}

	return LockoutStatus{AttemptsRemaining: p.MaxAttempts - r.Count}
}

// StatusAt reports the status at now without changing the record.
func (r *LockoutRecord) StatusAt(now time.Time, p LockoutPolicy) LockoutStatus {
	if r.IsLockedAt(now) {
		return LockoutStatus{IsLocked: true, RemainingTime: r.RemainingAt(now)}
	}
	if r.Count == 0 || !r.LockedUntil.IsZero() || now.Sub(r.FirstAttempt) > p.AttemptWindow {
		return LockoutStatus{AttemptsRemaining: p.MaxAttempts}
	}
	return LockoutStatus{AttemptsRemaining: p.MaxAttempts - r.Count}
}

// EvictableAt reports whether the record carries no information anymore:
// any lock has passed and the last attempt is older than one window.
func (r *LockoutRecord) EvictableAt(now time.Time, window time.Duration) bool {
	if r.IsLockedAt(now) {
		return false
	}
	return now.Sub(r.LastAttempt) > window
}

// ExpiresAt returns the earliest instant at which the record becomes evictable.
func (r *LockoutRecord) ExpiresAt(window time.Duration) time.Time {
	expires := r.LastAttempt.Add(window)
	if r.LockedUntil.After(expires) {
		return r.LockedUntil
	}
	return expires
}
