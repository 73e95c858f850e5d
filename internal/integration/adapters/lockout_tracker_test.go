package adapters

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

func newTestTracker(t *testing.T, clock *fakeClock) *MemoryLockoutTracker {
	t.Helper()
	tracker, err := NewMemoryLockoutTracker(entity.LockoutPolicy{
		MaxAttempts:     3,
		AttemptWindow:   time.Second,
		LockoutDuration: time.Minute,
	}, clock, time.Hour)
	require.NoError(t, err)
	return tracker
}

func TestMemoryLockoutTracker_EndToEndScenario(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(t, clock)
	ctx := context.Background()

	status, err := tracker.RecordFailedAttempt(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, status.AttemptsRemaining)

	clock.Advance(100 * time.Millisecond)
	status, _ = tracker.RecordFailedAttempt(ctx, "user@example.com")
	assert.Equal(t, 1, status.AttemptsRemaining)

	clock.Advance(100 * time.Millisecond)
	status, _ = tracker.RecordFailedAttempt(ctx, "user@example.com")
	assert.True(t, status.IsLocked)
	assert.Equal(t, time.Minute, status.RemainingTime)

	status, _ = tracker.IsLocked(ctx, "user@example.com")
	assert.True(t, status.IsLocked)

	clock.Advance(1800 * time.Millisecond)
	status, _ = tracker.RecordFailedAttempt(ctx, "other@example.com")
	assert.False(t, status.IsLocked)
	assert.Equal(t, 2, status.AttemptsRemaining)
}

func TestMemoryLockoutTracker_NormalizesIdentifiers(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(t, clock)
	ctx := context.Background()

	_, _ = tracker.RecordFailedAttempt(ctx, "User@Example.com")
	_, _ = tracker.RecordFailedAttempt(ctx, " user@example.com ")
	status, _ := tracker.RecordFailedAttempt(ctx, "USER@EXAMPLE.COM")

	assert.True(t, status.IsLocked)
	assert.Equal(t, 1, tracker.Len())
}

func TestMemoryLockoutTracker_WindowReset(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(t, clock)
	ctx := context.Background()

	_, _ = tracker.RecordFailedAttempt(ctx, "alice")
	_, _ = tracker.RecordFailedAttempt(ctx, "alice")
	clock.Advance(1500 * time.Millisecond)

	status, _ := tracker.RecordFailedAttempt(ctx, "alice")
	assert.False(t, status.IsLocked)
	assert.Equal(t, 2, status.AttemptsRemaining)
}

func TestMemoryLockoutTracker_LockExpiry(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(t, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = tracker.RecordFailedAttempt(ctx, "bob")
	}

	clock.Advance(30 * time.Second)
	status, _ := tracker.IsLocked(ctx, "bob")
	assert.True(t, status.IsLocked)
	assert.Equal(t, 30*time.Second, status.RemainingTime)

	// failures during the lock do not extend it
	_, _ = tracker.RecordFailedAttempt(ctx, "bob")
	clock.Advance(30 * time.Second)

	status, _ = tracker.IsLocked(ctx, "bob")
	assert.False(t, status.IsLocked)
	assert.Equal(t, 3, status.AttemptsRemaining)
}

func TestMemoryLockoutTracker_Reset(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(t, clock)
	ctx := context.Background()

	_, _ = tracker.RecordFailedAttempt(ctx, "carol")
	_, _ = tracker.RecordFailedAttempt(ctx, "carol")
	require.NoError(t, tracker.ResetAttempts(ctx, "Carol"))

	status, _ := tracker.IsLocked(ctx, "carol")
	assert.Equal(t, entity.LockoutStatus{AttemptsRemaining: 3}, status)

	status, _ = tracker.RecordFailedAttempt(ctx, "carol")
	assert.Equal(t, 2, status.AttemptsRemaining)
}

func TestMemoryLockoutTracker_Sweep(t *testing.T) {
	clock := newFakeClock()
	tracker := newTestTracker(t, clock)
	ctx := context.Background()

	_, _ = tracker.RecordFailedAttempt(ctx, "stale")
	for i := 0; i < 3; i++ {
		_, _ = tracker.RecordFailedAttempt(ctx, "locked")
	}

	clock.Advance(2 * time.Second)
	removed, err := tracker.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, tracker.Len())

	status, _ := tracker.IsLocked(ctx, "locked")
	assert.True(t, status.IsLocked)

	clock.Advance(time.Minute)
	removed, _ = tracker.Sweep(ctx)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, tracker.Len())
}

func TestMemoryLockoutTracker_StartStop(t *testing.T) {
	clock := newFakeClock()
	tracker, err := NewMemoryLockoutTracker(entity.LockoutPolicy{
		MaxAttempts:     3,
		AttemptWindow:   time.Second,
		LockoutDuration: time.Minute,
	}, clock, 10*time.Millisecond)
	require.NoError(t, err)

	_, _ = tracker.RecordFailedAttempt(context.Background(), "stale")
	clock.Advance(2 * time.Second)

	tracker.Start(context.Background())
	tracker.Start(context.Background())
	defer tracker.Stop()

	assert.Eventually(t, func() bool { return tracker.Len() == 0 }, time.Second, 10*time.Millisecond)

	tracker.Stop()
	tracker.Stop()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMemoryLockoutTracker_SweepErrorIsLogged(t *testing.T) {
	logs := &syncBuffer{}
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	tracker, err := NewMemoryLockoutTracker(entity.LockoutPolicy{
		MaxAttempts:     3,
		AttemptWindow:   time.Second,
		LockoutDuration: time.Minute,
	}, newFakeClock(), 10*time.Millisecond)
	require.NoError(t, err)
	tracker.sweep = func(context.Context) (int, error) {
		return 0, errors.New("backend unavailable")
	}

	tracker.Start(context.Background())
	defer tracker.Stop()

	assert.Eventually(t, func() bool {
		out := logs.String()
		return strings.Contains(out, "Failed to sweep lockout records") &&
			strings.Contains(out, "backend unavailable")
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryLockoutTracker_Concurrent(t *testing.T) {
	clock := newFakeClock()
	tracker, err := NewMemoryLockoutTracker(entity.LockoutPolicy{
		MaxAttempts:     50,
		AttemptWindow:   time.Hour,
		LockoutDuration: time.Hour,
	}, clock, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tracker.RecordFailedAttempt(ctx, "shared")
			_, _ = tracker.IsLocked(ctx, "shared")
		}()
	}
	wg.Wait()

	status, _ := tracker.IsLocked(ctx, "shared")
	assert.True(t, status.IsLocked)
}

func TestMemoryLockoutTracker_InvalidPolicy(t *testing.T) {
	_, err := NewMemoryLockoutTracker(entity.LockoutPolicy{}, nil, 0)
	assert.True(t, errors.Is(err, domainerror.ErrInvalidParameters))

	_, err = NewMemoryLockoutTracker(entity.DefaultLockoutPolicy(), nil, -time.Second)
	assert.True(t, errors.Is(err, domainerror.ErrInvalidParameters))
}
