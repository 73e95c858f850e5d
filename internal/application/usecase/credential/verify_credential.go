package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// VerifyCredentialInput represents the input for a login attempt.
type VerifyCredentialInput struct {
	Identifier string
	Password   string
	// Record is the caller's stored record for Identifier, or nil if the identifier is unknown.
	Record *entity.PasswordRecord
}

// VerifyCredentialOutput represents the outcome of a login attempt.
type VerifyCredentialOutput struct {
	Verified bool
	// Lockout is the status after a failed attempt. It is zero when Verified is true.
	Lockout entity.LockoutStatus
	// Replacement is set when the stored record used outdated parameters and was rehashed.
	// The caller should persist it in place of the old record.
	Replacement *entity.PasswordRecord
}

// VerifyCredentialUseCase runs the login flow: lockout check, verification,
// then either a reset or a recorded failure.
type VerifyCredentialUseCase struct {
	hasher   adapter.PasswordHasher
	tracker  adapter.LockoutTracker
	attempts adapter.AttemptRepository
	clock    adapter.Clock
}

// NewVerifyCredentialUseCase creates a new VerifyCredentialUseCase instance.
// attempts may be nil when the audit trail is disabled.
func NewVerifyCredentialUseCase(
	hasher adapter.PasswordHasher,
	tracker adapter.LockoutTracker,
	attempts adapter.AttemptRepository,
	clock adapter.Clock,
) *VerifyCredentialUseCase {
	return &VerifyCredentialUseCase{
		hasher:   hasher,
		tracker:  tracker,
		attempts: attempts,
		clock:    clock,
	}
}

// Execute performs the login attempt. A wrong password is an ordinary outcome
// (Verified false); a locked identifier yields *domainerror.AccountLockedError.
func (uc *VerifyCredentialUseCase) Execute(ctx context.Context, input VerifyCredentialInput) (*VerifyCredentialOutput, error) {
	identifier := entity.NormalizeIdentifier(input.Identifier)
	if identifier == "" {
		return nil, domainerror.NewCredentialError(
			domainerror.ErrCodeMissingFields,
			"identifier is required",
			nil,
		)
	}

	status, err := uc.tracker.IsLocked(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to check lockout: %w", err)
	}
	if status.IsLocked {
		uc.audit(ctx, identifier, entity.AttemptOutcomeLocked, 0)
		return nil, &domainerror.AccountLockedError{RemainingTime: status.RemainingTime}
	}

	verified := false
	if input.Record == nil {
		uc.hasher.DummyVerify(ctx, input.Password)
	} else {
		verified, err = uc.hasher.VerifyPassword(ctx, input.Password, input.Record)
		if err != nil {
			if errors.Is(err, domainerror.ErrMalformedRecord) {
				slog.Error("Stored password record is malformed", "identifier", identifier, "error", err)
				return nil, domainerror.NewCredentialError(
					domainerror.ErrCodeMalformedRecord,
					"stored password record is malformed",
					err,
				)
			}
			return nil, fmt.Errorf("failed to verify password: %w", err)
		}
	}

	if !verified {
		return uc.fail(ctx, identifier)
	}

	if err := uc.tracker.ResetAttempts(ctx, identifier); err != nil {
		slog.Warn("Failed to reset lockout state after successful login", "identifier", identifier, "error", err)
	}

	output := &VerifyCredentialOutput{Verified: true}
	if uc.hasher.NeedsRehash(input.Record) {
		replacement, err := uc.hasher.Rehash(ctx, input.Password)
		if err != nil {
			slog.Warn("Failed to rehash outdated password record", "identifier", identifier, "error", err)
		} else {
			output.Replacement = replacement
		}
	}

	uc.audit(ctx, identifier, entity.AttemptOutcomeSuccess, status.AttemptsRemaining)
	return output, nil
}

func (uc *VerifyCredentialUseCase) fail(ctx context.Context, identifier string) (*VerifyCredentialOutput, error) {
	status, err := uc.tracker.RecordFailedAttempt(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to record failed attempt: %w", err)
	}

	outcome := entity.AttemptOutcomeFailure
	if status.IsLocked {
		outcome = entity.AttemptOutcomeLocked
	}
	uc.audit(ctx, identifier, outcome, status.AttemptsRemaining)

	return &VerifyCredentialOutput{Verified: false, Lockout: status}, nil
}

// audit never fails the login; the trail is best effort.
func (uc *VerifyCredentialUseCase) audit(ctx context.Context, identifier string, outcome entity.AttemptOutcome, attemptsRemaining int) {
	if uc.attempts == nil {
		return
	}
	attempt := entity.NewAuthAttempt(identifier, outcome, attemptsRemaining, uc.clock.Now())
	if err := uc.attempts.Record(ctx, attempt); err != nil {
		slog.Warn("Failed to record authentication attempt", "identifier", identifier, "outcome", outcome, "error", err)
	}
}
