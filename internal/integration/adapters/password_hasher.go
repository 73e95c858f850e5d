package adapters

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// iterationCeilingFactor derives the default MaxIterations from Iterations.
const iterationCeilingFactor = 10

// HasherConfig holds the parameters new records are derived with.
type HasherConfig struct {
	Iterations int
	Digest     entity.Digest
	SaltLength int
	KeyLength  int
	// MaxIterations is the most work a stored record may ask for during verification.
	// Zero selects ten times Iterations.
	MaxIterations int
}

// DefaultHasherConfig returns PBKDF2-SHA256 with 100000 iterations, a 32-byte salt and a 32-byte key.
func DefaultHasherConfig() HasherConfig {
	return HasherConfig{
		Iterations: 100000,
		Digest:     entity.DigestSHA256,
		SaltLength: 32,
		KeyLength:  32,
	}
}

// Validate checks the parameters before any record is derived.
func (c HasherConfig) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", domainerror.ErrInvalidParameters, c.Iterations)
	}
	if c.SaltLength < 1 {
		return fmt.Errorf("%w: salt length must be at least 1, got %d", domainerror.ErrInvalidParameters, c.SaltLength)
	}
	if c.KeyLength < 1 {
		return fmt.Errorf("%w: key length must be at least 1, got %d", domainerror.ErrInvalidParameters, c.KeyLength)
	}
	if c.MaxIterations != 0 && c.MaxIterations < c.Iterations {
		return fmt.Errorf("%w: max iterations %d is below iterations %d", domainerror.ErrInvalidParameters, c.MaxIterations, c.Iterations)
	}
	if _, ok := c.Digest.Hash(); !ok {
		return fmt.Errorf("%w: unsupported digest %q", domainerror.ErrInvalidParameters, c.Digest)
	}
	return nil
}

// passwordHasher implements adapter.PasswordHasher.
type passwordHasher struct {
	engine adapter.KeyDerivationEngine
	random adapter.RandomSource
	policy adapter.PasswordPolicy
	clock  adapter.Clock
	config HasherConfig

	// dummySalt keeps DummyVerify on the same code path as a real verification.
	dummySalt []byte
}

// NewPasswordHasher creates a password hasher. It fails if the parameters are
// invalid or if the random source cannot produce bytes.
func NewPasswordHasher(
	engine adapter.KeyDerivationEngine,
	random adapter.RandomSource,
	policy adapter.PasswordPolicy,
	clock adapter.Clock,
	config HasherConfig,
) (adapter.PasswordHasher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.MaxIterations == 0 {
		config.MaxIterations = config.Iterations * iterationCeilingFactor
	}

	h := &passwordHasher{
		engine: engine,
		random: random,
		policy: policy,
		clock:  clock,
		config: config,
	}

	salt, err := h.GenerateSalt(config.SaltLength)
	if err != nil {
		return nil, err
	}
	h.dummySalt = salt

	return h, nil
}

// GenerateSalt returns length bytes from the random source.
func (h *passwordHasher) GenerateSalt(length int) ([]byte, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: salt length must be at least 1, got %d", domainerror.ErrInvalidParameters, length)
	}
	salt := make([]byte, length)
	if err := h.random.Fill(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// CreatePasswordData runs the policy, then derives a record with a fresh salt.
func (h *passwordHasher) CreatePasswordData(ctx context.Context, password string, history ...*entity.PasswordRecord) (*entity.PasswordRecord, error) {
	result, err := h.policy.ValidateWithHistory(ctx, password, history, h)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return nil, domainerror.NewPolicyViolationError(result.Errors)
	}

	return h.Rehash(ctx, password)
}

// Rehash derives a record under the current parameters.
func (h *passwordHasher) Rehash(ctx context.Context, password string) (*entity.PasswordRecord, error) {
	salt, err := h.GenerateSalt(h.config.SaltLength)
	if err != nil {
		return nil, err
	}

	key, err := h.engine.Derive(ctx, []byte(password), salt, h.config.Iterations, h.config.Digest, h.config.KeyLength)
	if err != nil {
		return nil, err
	}

	return entity.NewPasswordRecord(key, salt, h.config.Digest, h.config.Iterations, h.clock.Now()), nil
}

// VerifyPassword re-derives with the record's own parameters and compares in constant time.
// Records above the iteration ceiling are malformed and never reach the engine.
func (h *passwordHasher) VerifyPassword(ctx context.Context, password string, record *entity.PasswordRecord) (bool, error) {
	expected, salt, err := record.Decode(h.config.MaxIterations)
	if err != nil {
		return false, err
	}

	// The engine rejects empty input; an empty password can never match.
	if password == "" {
		return false, nil
	}

	actual, err := h.engine.Derive(ctx, []byte(password), salt, record.Iterations, record.Digest, record.KeyLength)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

// NeedsRehash reports whether record differs from the current parameters or uses fewer iterations.
func (h *passwordHasher) NeedsRehash(record *entity.PasswordRecord) bool {
	if record == nil {
		return true
	}
	return record.Algorithm != entity.AlgorithmPBKDF2 ||
		record.Digest != h.config.Digest ||
		record.KeyLength != h.config.KeyLength ||
		record.Iterations < h.config.Iterations
}

// DummyVerify burns one derivation so an unknown identifier costs as much as a wrong password.
func (h *passwordHasher) DummyVerify(ctx context.Context, password string) {
	if password == "" {
		password = "-"
	}
	if _, err := h.engine.Derive(ctx, []byte(password), h.dummySalt, h.config.Iterations, h.config.Digest, h.config.KeyLength); err != nil {
		slog.Debug("Dummy key derivation failed", "error", err)
	}
}
