package credential

import (
	"context"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

const (
	defaultAttemptsLimit = 20
	maxAttemptsLimit     = 100
)

// ListAttemptsInput represents the input for listing audit events.
type ListAttemptsInput struct {
	Identifier string
	Limit      int
}

// ListAttemptsUseCase returns recent authentication attempts for an identifier.
type ListAttemptsUseCase struct {
	attempts adapter.AttemptRepository
}

// NewListAttemptsUseCase creates a new ListAttemptsUseCase instance. attempts may be nil.
func NewListAttemptsUseCase(attempts adapter.AttemptRepository) *ListAttemptsUseCase {
	return &ListAttemptsUseCase{attempts: attempts}
}

// Execute lists the newest events first.
func (uc *ListAttemptsUseCase) Execute(ctx context.Context, input ListAttemptsInput) ([]*entity.AuthAttempt, error) {
	if uc.attempts == nil {
		return nil, domainerror.NewCredentialError(
			domainerror.ErrCodeAuditUnavailable,
			"attempt audit trail is disabled",
			nil,
		)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultAttemptsLimit
	}
	if limit > maxAttemptsLimit {
		limit = maxAttemptsLimit
	}

	return uc.attempts.ListRecent(ctx, input.Identifier, limit)
}
