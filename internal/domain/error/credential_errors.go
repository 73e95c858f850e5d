// Package error defines domain-specific errors for the credential security service.
package error

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Credential security domain errors.
var (
	// ErrPolicyViolation is returned when a password does not satisfy the password policy.
	ErrPolicyViolation = errors.New("password does not meet policy requirements")

	// ErrMalformedRecord is returned when a stored password record is missing or has corrupt fields.
	ErrMalformedRecord = errors.New("malformed password record")

	// ErrEntropySourceUnavailable is returned when no cryptographically secure random source can be read.
	ErrEntropySourceUnavailable = errors.New("entropy source unavailable")

	// ErrUnsupportedEnvironment is returned when the key derivation backend is not available.
	ErrUnsupportedEnvironment = errors.New("key derivation backend unavailable")

	// ErrAccountLocked is returned when an identifier is temporarily locked out.
	ErrAccountLocked = errors.New("too many failed attempts")

	// ErrInvalidParameters is returned for impossible hashing, policy or lockout settings.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInvalidCredentials is returned when the identifier or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a service token is malformed, expired or signed with another key.
	ErrInvalidToken = errors.New("invalid service token")
)

// CredentialErrorCode defines error codes for credential errors.
// Format: CRED-XXYYYY where XX is category and YYYY is specific error.
type CredentialErrorCode string

const (
	// Request errors (01XXXX)
	ErrCodeMissingFields CredentialErrorCode = "CRED-010001"

	// Policy errors (02XXXX)
	ErrCodePolicyViolation CredentialErrorCode = "CRED-020001"

	// Verification errors (03XXXX)
	ErrCodeInvalidCredentials CredentialErrorCode = "CRED-030001"
	ErrCodeMalformedRecord    CredentialErrorCode = "CRED-030002"

	// Lockout errors (04XXXX)
	ErrCodeAccountLocked CredentialErrorCode = "CRED-040001"
	ErrCodeRateLimited   CredentialErrorCode = "CRED-040002"

	// Environment errors (05XXXX)
	ErrCodeEntropyUnavailable     CredentialErrorCode = "CRED-050001"
	ErrCodeUnsupportedEnvironment CredentialErrorCode = "CRED-050002"
	ErrCodeInvalidParameters      CredentialErrorCode = "CRED-050003"
	ErrCodeAuditUnavailable       CredentialErrorCode = "CRED-050004"

	// Caller authentication errors (06XXXX)
	ErrCodeMissingToken CredentialErrorCode = "CRED-060001"
	ErrCodeInvalidToken CredentialErrorCode = "CRED-060002"
)

// CredentialError represents a credential error with code and message.
type CredentialError struct {
	Code    CredentialErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CredentialError) Unwrap() error {
	return e.Err
}

// NewCredentialError creates a new CredentialError with the given code and message.
func NewCredentialError(code CredentialErrorCode, message string, err error) *CredentialError {
	return &CredentialError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// PolicyViolationError carries every policy rule a password failed, in evaluation order.
type PolicyViolationError struct {
	Violations []string
}

// Error implements the error interface.
func (e *PolicyViolationError) Error() string {
	return ErrPolicyViolation.Error() + ": " + strings.Join(e.Violations, "; ")
}

// Unwrap returns ErrPolicyViolation.
func (e *PolicyViolationError) Unwrap() error {
	return ErrPolicyViolation
}

// NewPolicyViolationError creates a PolicyViolationError from a list of violations.
func NewPolicyViolationError(violations []string) *PolicyViolationError {
	v := make([]string, len(violations))
	copy(v, violations)
	return &PolicyViolationError{Violations: v}
}

// AccountLockedError reports how long an identifier stays locked.
type AccountLockedError struct {
	RemainingTime time.Duration
}

// Error implements the error interface.
func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("%s, try again in %s", ErrAccountLocked.Error(), e.RemainingTime.Round(time.Second))
}

// Unwrap returns ErrAccountLocked.
func (e *AccountLockedError) Unwrap() error {
	return ErrAccountLocked
}

// RetryAfterMinutes rounds the remaining lock time up to whole minutes for user-facing copy.
func (e *AccountLockedError) RetryAfterMinutes() int {
	minutes := int(e.RemainingTime / time.Minute)
	if e.RemainingTime%time.Minute > 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
