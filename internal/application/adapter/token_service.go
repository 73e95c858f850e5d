package adapter

import (
	"context"
	"time"
)

// ServiceClaims identifies the backend service a token was issued to.
type ServiceClaims struct {
	Service   string
	ExpiresAt time.Time
}

// TokenService issues and validates the bearer tokens trusted callers present.
type TokenService interface {
	// IssueServiceToken signs a token for service that expires after the configured TTL.
	IssueServiceToken(ctx context.Context, service string) (string, error)
	// ValidateServiceToken returns ErrInvalidToken for anything but a current token from this issuer.
	ValidateServiceToken(ctx context.Context, token string) (*ServiceClaims, error)
}
