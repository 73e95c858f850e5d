package adapters

import (
	"context"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"time"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// KDFConfig bounds the derivation worker pool.
type KDFConfig struct {
	Workers int
	Timeout time.Duration
	// MaxIterations caps the work of a single derivation. Zero means no cap.
	MaxIterations int
}

// pbkdf2Engine implements adapter.KeyDerivationEngine.
// At most Workers derivations run at once; further callers wait for a slot.
type pbkdf2Engine struct {
	slots         *semaphore.Weighted
	timeout       time.Duration
	maxIterations int
}

// NewPBKDF2Engine creates a PBKDF2 engine with a bounded worker pool.
func NewPBKDF2Engine(config KDFConfig) (adapter.KeyDerivationEngine, error) {
	if config.Workers < 1 {
		return nil, fmt.Errorf("%w: kdf workers must be at least 1, got %d", domainerror.ErrInvalidParameters, config.Workers)
	}
	if config.Timeout < 0 {
		return nil, fmt.Errorf("%w: kdf timeout must not be negative", domainerror.ErrInvalidParameters)
	}
	if config.MaxIterations < 0 {
		return nil, fmt.Errorf("%w: kdf max iterations must not be negative", domainerror.ErrInvalidParameters)
	}
	return &pbkdf2Engine{
		slots:         semaphore.NewWeighted(int64(config.Workers)),
		timeout:       config.Timeout,
		maxIterations: config.MaxIterations,
	}, nil
}

// Derive runs PBKDF2 on the pool. If ctx ends first the call fails and no key is returned;
// the slot is released once the in-flight derivation finishes.
func (e *pbkdf2Engine) Derive(ctx context.Context, password, salt []byte, iterations int, digest entity.Digest, keyLength int) ([]byte, error) {
	switch {
	case len(password) == 0:
		return nil, fmt.Errorf("%w: password must not be empty", domainerror.ErrInvalidParameters)
	case len(salt) == 0:
		return nil, fmt.Errorf("%w: salt must not be empty", domainerror.ErrInvalidParameters)
	case iterations < 1:
		return nil, fmt.Errorf("%w: iterations must be at least 1, got %d", domainerror.ErrInvalidParameters, iterations)
	case e.maxIterations > 0 && iterations > e.maxIterations:
		return nil, fmt.Errorf("%w: iterations %d exceed the ceiling of %d", domainerror.ErrInvalidParameters, iterations, e.maxIterations)
	case keyLength < 1:
		return nil, fmt.Errorf("%w: key length must be at least 1, got %d", domainerror.ErrInvalidParameters, keyLength)
	}

	h, ok := digest.Hash()
	if !ok {
		return nil, fmt.Errorf("%w: unsupported digest %q", domainerror.ErrInvalidParameters, digest)
	}
	if !h.Available() {
		return nil, fmt.Errorf("%w: digest %s is not linked into the binary", domainerror.ErrUnsupportedEnvironment, digest)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if err := e.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for key derivation slot: %w", err)
	}

	result := make(chan []byte, 1)
	go func() {
		defer e.slots.Release(1)
		result <- pbkdf2.Key(password, salt, iterations, keyLength, h.New)
	}()

	select {
	case key := <-result:
		return key, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("key derivation: %w", ctx.Err())
	}
}
