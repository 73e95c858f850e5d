package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// CreateCredentialInput represents the input for credential creation.
type CreateCredentialInput struct {
	Password string
	// History holds the caller's previous records; reusing any of them is a policy violation.
	History []*entity.PasswordRecord
}

// CreateCredentialUseCase turns an acceptable password into a PasswordRecord.
type CreateCredentialUseCase struct {
	hasher adapter.PasswordHasher
}

// NewCreateCredentialUseCase creates a new CreateCredentialUseCase instance.
func NewCreateCredentialUseCase(hasher adapter.PasswordHasher) *CreateCredentialUseCase {
	return &CreateCredentialUseCase{hasher: hasher}
}

// Execute validates the password and derives a record.
// Policy failures are returned as *domainerror.PolicyViolationError.
func (uc *CreateCredentialUseCase) Execute(ctx context.Context, input CreateCredentialInput) (*entity.PasswordRecord, error) {
	record, err := uc.hasher.CreatePasswordData(ctx, input.Password, input.History...)
	if err != nil {
		if errors.Is(err, domainerror.ErrPolicyViolation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create password record: %w", err)
	}
	return record, nil
}
