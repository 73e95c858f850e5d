package credential

import (
	"context"
	"fmt"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
)

// RecordFailureInput represents the input for registering a failed attempt.
type RecordFailureInput struct {
	Identifier string
}

// RecordFailureUseCase registers a failed authentication that happened outside VerifyCredential.
type RecordFailureUseCase struct {
	tracker adapter.LockoutTracker
}

// NewRecordFailureUseCase creates a new RecordFailureUseCase instance.
func NewRecordFailureUseCase(tracker adapter.LockoutTracker) *RecordFailureUseCase {
	return &RecordFailureUseCase{tracker: tracker}
}

// Execute registers the failure and returns the resulting status.
func (uc *RecordFailureUseCase) Execute(ctx context.Context, input RecordFailureInput) (entity.LockoutStatus, error) {
	status, err := uc.tracker.RecordFailedAttempt(ctx, input.Identifier)
	if err != nil {
		return entity.LockoutStatus{}, fmt.Errorf("failed to record failed attempt: %w", err)
	}
	return status, nil
}
