package adapters

import (
	"time"

	"github.com/storefront/credential-security/internal/application/adapter"
)

type systemClock struct{}

// NewSystemClock returns a clock backed by time.Now.
func NewSystemClock() adapter.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
