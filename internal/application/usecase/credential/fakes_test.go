package credential

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

var errBackendDown = errors.New("backend down")

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

// fakeHasher stores "hash:"+password as the hash so tests can reason about outcomes.
type fakeHasher struct {
	currentIterations int
	rehashErr         error
	verifyErr         error
	dummyCalls        int
	verifyCalls       int
}

func newFakeHasher() *fakeHasher {
	return &fakeHasher{currentIterations: 10}
}

func (h *fakeHasher) record(password string, iterations int) *entity.PasswordRecord {
	return &entity.PasswordRecord{
		Hash:       "hash:" + password,
		Salt:       "salt",
		Algorithm:  entity.AlgorithmPBKDF2,
		Digest:     entity.DigestSHA256,
		Iterations: iterations,
		KeyLength:  32,
	}
}

func (h *fakeHasher) GenerateSalt(length int) ([]byte, error) {
	return make([]byte, length), nil
}

func (h *fakeHasher) CreatePasswordData(_ context.Context, password string, history ...*entity.PasswordRecord) (*entity.PasswordRecord, error) {
	var violations []string
	if len(password) < 8 {
		violations = append(violations, "password must be at least 8 characters long")
	}
	for _, r := range history {
		if r.Hash == "hash:"+password {
			violations = append(violations, "password was used recently")
		}
	}
	if len(violations) > 0 {
		return nil, domainerror.NewPolicyViolationError(violations)
	}
	return h.record(password, h.currentIterations), nil
}

func (h *fakeHasher) VerifyPassword(_ context.Context, password string, record *entity.PasswordRecord) (bool, error) {
	h.verifyCalls++
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	if record == nil || record.Hash == "" {
		return false, domainerror.ErrMalformedRecord
	}
	return record.Hash == "hash:"+password, nil
}

func (h *fakeHasher) NeedsRehash(record *entity.PasswordRecord) bool {
	return record.Iterations < h.currentIterations
}

func (h *fakeHasher) Rehash(_ context.Context, password string) (*entity.PasswordRecord, error) {
	if h.rehashErr != nil {
		return nil, h.rehashErr
	}
	return h.record(password, h.currentIterations), nil
}

func (h *fakeHasher) DummyVerify(context.Context, string) {
	h.dummyCalls++
}

// fakeTracker applies the real lockout state machine over a plain map.
type fakeTracker struct {
	mu       sync.Mutex
	clock    *fakeClock
	policy   entity.LockoutPolicy
	records  map[string]*entity.LockoutRecord
	resets   []string
	err      error
	resetErr error
}

func newFakeTracker(clock *fakeClock) *fakeTracker {
	return &fakeTracker{
		clock: clock,
		policy: entity.LockoutPolicy{
			MaxAttempts:     3,
			AttemptWindow:   time.Minute,
			LockoutDuration: 30 * time.Minute,
		},
		records: make(map[string]*entity.LockoutRecord),
	}
}

func (t *fakeTracker) RecordFailedAttempt(_ context.Context, identifier string) (entity.LockoutStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return entity.LockoutStatus{}, t.err
	}
	key := entity.NormalizeIdentifier(identifier)
	r, ok := t.records[key]
	if !ok {
		r = &entity.LockoutRecord{}
		t.records[key] = r
	}
	return r.RegisterFailure(t.clock.Now(), t.policy), nil
}

func (t *fakeTracker) IsLocked(_ context.Context, identifier string) (entity.LockoutStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return entity.LockoutStatus{}, t.err
	}
	r, ok := t.records[entity.NormalizeIdentifier(identifier)]
	if !ok {
		return entity.LockoutStatus{AttemptsRemaining: t.policy.MaxAttempts}, nil
	}
	return r.StatusAt(t.clock.Now(), t.policy), nil
}

func (t *fakeTracker) ResetAttempts(_ context.Context, identifier string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.resetErr != nil {
		return t.resetErr
	}
	key := entity.NormalizeIdentifier(identifier)
	t.resets = append(t.resets, key)
	delete(t.records, key)
	return nil
}

func (t *fakeTracker) Sweep(context.Context) (int, error) {
	return 0, nil
}

type fakeAttempts struct {
	recorded []*entity.AuthAttempt
	err      error
}

func (a *fakeAttempts) Record(_ context.Context, attempt *entity.AuthAttempt) error {
	if a.err != nil {
		return a.err
	}
	a.recorded = append(a.recorded, attempt)
	return nil
}

func (a *fakeAttempts) ListRecent(_ context.Context, identifier string, limit int) ([]*entity.AuthAttempt, error) {
	if a.err != nil {
		return nil, a.err
	}
	var out []*entity.AuthAttempt
	for i := len(a.recorded) - 1; i >= 0 && len(out) < limit; i-- {
		if a.recorded[i].Identifier == identifier {
			out = append(out, a.recorded[i])
		}
	}
	return out, nil
}

func (a *fakeAttempts) DeleteOlderThan(context.Context, int) (int64, error) {
	return 0, nil
}
