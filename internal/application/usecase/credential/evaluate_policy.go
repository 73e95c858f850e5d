// Package credential contains password and lockout use cases.
package credential

import (
	"context"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
)

// EvaluatePolicyInput represents the input for password policy evaluation.
type EvaluatePolicyInput struct {
	Password string
}

// EvaluatePolicyUseCase gives strength feedback for a candidate password.
type EvaluatePolicyUseCase struct {
	policy adapter.PasswordPolicy
}

// NewEvaluatePolicyUseCase creates a new EvaluatePolicyUseCase instance.
func NewEvaluatePolicyUseCase(policy adapter.PasswordPolicy) *EvaluatePolicyUseCase {
	return &EvaluatePolicyUseCase{policy: policy}
}

// Execute evaluates the password. The result is feedback, not an error.
func (uc *EvaluatePolicyUseCase) Execute(_ context.Context, input EvaluatePolicyInput) entity.PolicyResult {
	return uc.policy.Validate(input.Password)
}
