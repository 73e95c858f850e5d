package adapters

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/storefront/credential-security/internal/application/adapter"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errEntropyGone
}

var errEntropyGone = errors.New("getrandom: not available")

// testHasherConfig keeps derivations fast in unit tests.
func testHasherConfig() HasherConfig {
	return HasherConfig{
		Iterations: 1000,
		Digest:     "SHA-256",
		SaltLength: 16,
		KeyLength:  32,
	}
}

func newTestHasher(t *testing.T) adapter.PasswordHasher {
	t.Helper()

	engine, err := NewPBKDF2Engine(KDFConfig{Workers: 4, Timeout: 10 * time.Second})
	require.NoError(t, err)
	policy, err := NewPolicyEvaluator(DefaultPolicyConfig())
	require.NoError(t, err)
	hasher, err := NewPasswordHasher(engine, NewRandomSource(), policy, newFakeClock(), testHasherConfig())
	require.NoError(t, err)
	return hasher
}
