// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/storefront/credential-security/internal/application/adapter"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// randomSource implements adapter.RandomSource on top of an io.Reader.
type randomSource struct {
	reader io.Reader
}

// NewRandomSource returns the operating system CSPRNG.
func NewRandomSource() adapter.RandomSource {
	return &randomSource{reader: rand.Reader}
}

// NewRandomSourceFromReader wraps reader; tests use it to simulate entropy failures.
func NewRandomSourceFromReader(reader io.Reader) adapter.RandomSource {
	return &randomSource{reader: reader}
}

// Fill overwrites b with random bytes. There is no fallback generator.
func (s *randomSource) Fill(b []byte) error {
	if _, err := io.ReadFull(s.reader, b); err != nil {
		return fmt.Errorf("%w: %v", domainerror.ErrEntropySourceUnavailable, err)
	}
	return nil
}
