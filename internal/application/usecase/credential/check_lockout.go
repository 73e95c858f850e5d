package credential

import (
	"context"
	"fmt"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// CheckLockoutInput represents the input for a lockout check.
type CheckLockoutInput struct {
	Identifier string
}

// CheckLockoutUseCase reports whether an identifier may attempt to authenticate.
type CheckLockoutUseCase struct {
	tracker adapter.LockoutTracker
}

// NewCheckLockoutUseCase creates a new CheckLockoutUseCase instance.
func NewCheckLockoutUseCase(tracker adapter.LockoutTracker) *CheckLockoutUseCase {
	return &CheckLockoutUseCase{tracker: tracker}
}

// Execute returns the current status, and an *domainerror.AccountLockedError when locked.
func (uc *CheckLockoutUseCase) Execute(ctx context.Context, input CheckLockoutInput) (entity.LockoutStatus, error) {
	status, err := uc.tracker.IsLocked(ctx, input.Identifier)
	if err != nil {
		return entity.LockoutStatus{}, fmt.Errorf("failed to check lockout: %w", err)
	}
	if status.IsLocked {
		return status, &domainerror.AccountLockedError{RemainingTime: status.RemainingTime}
	}
	return status, nil
}
