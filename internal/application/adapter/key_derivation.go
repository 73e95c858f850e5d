package adapter

import (
	"context"

	"github.com/storefront/credential-security/internal/domain/entity"
)

// RandomSource fills buffers with cryptographically secure random bytes.
type RandomSource interface {
	// Fill overwrites b entirely or returns ErrEntropySourceUnavailable.
	Fill(b []byte) error
}

// KeyDerivationEngine derives a fixed-length key from a password and salt.
type KeyDerivationEngine interface {
	// Derive is deterministic for identical inputs.
	Derive(ctx context.Context, password, salt []byte, iterations int, digest entity.Digest, keyLength int) ([]byte, error)
}
