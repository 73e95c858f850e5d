package dto

import (
	"github.com/storefront/credential-security/internal/domain/entity"
)

// EvaluatePasswordRequest represents the request body for password evaluation.
type EvaluatePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// PolicyResultResponse represents the policy evaluation in API responses.
type PolicyResultResponse struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Score    int      `json:"score"`
	Strength string   `json:"strength"`
}

// CreateCredentialRequest represents the request body for credential creation.
// Records keep their at-rest field names.
type CreateCredentialRequest struct {
	Password string                   `json:"password" binding:"required"`
	History  []*entity.PasswordRecord `json:"history"`
}

// PolicyViolationResponse represents a rejected password.
type PolicyViolationResponse struct {
	Error      string   `json:"error"`
	Code       string   `json:"code"`
	Violations []string `json:"violations"`
}

// VerifyCredentialRequest represents the request body for credential verification.
// Record is omitted when the caller has no record for the identifier.
type VerifyCredentialRequest struct {
	Identifier string                 `json:"identifier" binding:"required"`
	Password   string                 `json:"password" binding:"required"`
	Record     *entity.PasswordRecord `json:"record"`
}

// VerifyCredentialResponse represents a successful verification.
type VerifyCredentialResponse struct {
	Verified    bool                   `json:"verified"`
	NeedsRehash bool                   `json:"needs_rehash"`
	Record      *entity.PasswordRecord `json:"record,omitempty"`
}

// VerifyFailureResponse is returned for every failed verification, whatever the cause.
type VerifyFailureResponse struct {
	Error             string `json:"error"`
	Code              string `json:"code"`
	AttemptsRemaining int    `json:"attempts_remaining"`
}

// ToPolicyResultResponse converts a domain PolicyResult to a PolicyResultResponse DTO.
func ToPolicyResultResponse(r entity.PolicyResult) PolicyResultResponse {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return PolicyResultResponse{
		IsValid:  r.IsValid,
		Errors:   errs,
		Score:    r.Score,
		Strength: string(r.Strength),
	}
}
