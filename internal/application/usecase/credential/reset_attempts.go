package credential

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
)

// ResetAttemptsInput represents the input for clearing an identifier.
type ResetAttemptsInput struct {
	Identifier string
}

// ResetAttemptsUseCase clears failures and any lock for an identifier.
type ResetAttemptsUseCase struct {
	tracker adapter.LockoutTracker
}

// NewResetAttemptsUseCase creates a new ResetAttemptsUseCase instance.
func NewResetAttemptsUseCase(tracker adapter.LockoutTracker) *ResetAttemptsUseCase {
	return &ResetAttemptsUseCase{tracker: tracker}
}

// Execute clears the identifier.
func (uc *ResetAttemptsUseCase) Execute(ctx context.Context, input ResetAttemptsInput) error {
	if err := uc.tracker.ResetAttempts(ctx, input.Identifier); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}
	slog.Info("Lockout state cleared", "identifier", entity.NormalizeIdentifier(input.Identifier))
	return nil
}
