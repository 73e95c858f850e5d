// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/storefront/credential-security/internal/domain/entity"
)

// PasswordVerifier checks a plaintext password against a stored record.
type PasswordVerifier interface {
	// VerifyPassword reports whether password matches record.
	// A record that cannot be used for verification yields ErrMalformedRecord.
	VerifyPassword(ctx context.Context, password string, record *entity.PasswordRecord) (bool, error)
}

// PasswordHasher defines the interface for password hashing and verification.
type PasswordHasher interface {
	PasswordVerifier

	// GenerateSalt returns length random bytes from the secure random source.
	GenerateSalt(length int) ([]byte, error)

	// CreatePasswordData validates password against the policy and, if it passes,
	// derives a new record under the current parameters.
	// Previous records in history are rejected as reuse.
	CreatePasswordData(ctx context.Context, password string, history ...*entity.PasswordRecord) (*entity.PasswordRecord, error)

	// NeedsRehash reports whether record was produced with weaker or different parameters.
	NeedsRehash(record *entity.PasswordRecord) bool

	// Rehash derives a new record under the current parameters without a policy check.
	Rehash(ctx context.Context, password string) (*entity.PasswordRecord, error)

	// DummyVerify performs one derivation with the current parameters and discards it.
	DummyVerify(ctx context.Context, password string)
}

// PasswordPolicy evaluates candidate passwords.
type PasswordPolicy interface {
	// Validate applies every rule and returns the full result.
	Validate(password string) entity.PolicyResult

	// ValidateWithHistory additionally rejects a password that matches any record in history.
	ValidateWithHistory(ctx context.Context, password string, history []*entity.PasswordRecord, verifier PasswordVerifier) (entity.PolicyResult, error)
}
