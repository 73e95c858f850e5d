// Package entity defines the core business entities for the domain layer.
package entity

import (
	"crypto"
	"encoding/base64"
	"fmt"
	"time"

	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// AlgorithmPBKDF2 identifies the PBKDF2 key derivation scheme.
const AlgorithmPBKDF2 = "PBKDF2"

// Digest names the hash function used inside the key derivation function.
type Digest string

const (
	DigestSHA256 Digest = "SHA-256"
	DigestSHA384 Digest = "SHA-384"
	DigestSHA512 Digest = "SHA-512"
)

// Hash maps the digest to its crypto.Hash identifier.
func (d Digest) Hash() (crypto.Hash, bool) {
	switch d {
	case DigestSHA256:
		return crypto.SHA256, true
	case DigestSHA384:
		return crypto.SHA384, true
	case DigestSHA512:
		return crypto.SHA512, true
	default:
		return 0, false
	}
}

// PasswordRecord is the durable artifact produced for one credential.
// The JSON field names are the at-rest format and must not change.
type PasswordRecord struct {
	Hash       string    `json:"hash"`
	Salt       string    `json:"salt"`
	Algorithm  string    `json:"algorithm"`
	Digest     Digest    `json:"digest"`
	Iterations int       `json:"iterations"`
	KeyLength  int       `json:"keyLength"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewPasswordRecord builds a record from raw derived key and salt bytes.
func NewPasswordRecord(key, salt []byte, digest Digest, iterations int, now time.Time) *PasswordRecord {
	return &PasswordRecord{
		Hash:       base64.StdEncoding.EncodeToString(key),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Algorithm:  AlgorithmPBKDF2,
		Digest:     digest,
		Iterations: iterations,
		KeyLength:  len(key),
		CreatedAt:  now.UTC(),
	}
}

// Decode checks that every field needed for verification is present and
// consistent, and returns the decoded hash and salt. Records asking for more
// than maxIterations are rejected; a maxIterations of zero disables the ceiling.
func (r *PasswordRecord) Decode(maxIterations int) (hash, salt []byte, err error) {
	if r == nil {
		return nil, nil, malformed("record is nil")
	}
	if r.Hash == "" {
		return nil, nil, malformed("hash is missing")
	}
	if r.Salt == "" {
		return nil, nil, malformed("salt is missing")
	}
	if r.Algorithm == "" {
		return nil, nil, malformed("algorithm is missing")
	}
	if r.Algorithm != AlgorithmPBKDF2 {
		return nil, nil, malformed("unknown algorithm %q", r.Algorithm)
	}
	if _, ok := r.Digest.Hash(); !ok {
		return nil, nil, malformed("unknown digest %q", r.Digest)
	}
	if r.Iterations < 1 {
		return nil, nil, malformed("iterations must be positive")
	}
	if maxIterations > 0 && r.Iterations > maxIterations {
		return nil, nil, malformed("iterations %d exceed the ceiling of %d", r.Iterations, maxIterations)
	}
	if r.KeyLength < 1 {
		return nil, nil, malformed("keyLength must be positive")
	}

	hash, err = base64.StdEncoding.DecodeString(r.Hash)
	if err != nil {
		return nil, nil, malformed("hash is not valid base64")
	}
	salt, err = base64.StdEncoding.DecodeString(r.Salt)
	if err != nil {
		return nil, nil, malformed("salt is not valid base64")
	}
	if len(hash) != r.KeyLength {
		return nil, nil, malformed("hash length %d does not match keyLength %d", len(hash), r.KeyLength)
	}

	return hash, salt, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domainerror.ErrMalformedRecord}, args...)...)
}
