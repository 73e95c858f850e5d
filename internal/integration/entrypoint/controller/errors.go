// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainerror "github.com/storefront/credential-security/internal/domain/error"
	"github.com/storefront/credential-security/internal/integration/entrypoint/dto"
)

const (
	// invalidCredentialsMessage is the only failure text a login ever returns.
	invalidCredentialsMessage = "Invalid identifier or password"
	lockedMessageFormat       = "Too many attempts. Please try again in %d minutes."
)

// respondLocked writes the generic lockout response with a Retry-After header.
func respondLocked(ctx *gin.Context, locked *domainerror.AccountLockedError) {
	retryAfter := dto.CeilSeconds(locked.RemainingTime)
	if retryAfter < 1 {
		retryAfter = 1
	}
	ctx.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	ctx.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
		Error: fmt.Sprintf(lockedMessageFormat, locked.RetryAfterMinutes()),
		Code:  string(domainerror.ErrCodeAccountLocked),
	})
}

// handleCredentialError maps domain errors to HTTP responses.
func handleCredentialError(ctx *gin.Context, err error) {
	var violation *domainerror.PolicyViolationError
	if errors.As(err, &violation) {
		ctx.JSON(http.StatusUnprocessableEntity, dto.PolicyViolationResponse{
			Error:      "Password does not meet the policy",
			Code:       string(domainerror.ErrCodePolicyViolation),
			Violations: violation.Violations,
		})
		return
	}

	var locked *domainerror.AccountLockedError
	if errors.As(err, &locked) {
		respondLocked(ctx, locked)
		return
	}

	var credErr *domainerror.CredentialError
	if errors.As(err, &credErr) {
		statusCode := getStatusCodeForCredentialError(credErr.Code)
		if statusCode >= http.StatusInternalServerError {
			slog.Error("Credential request failed", "code", credErr.Code, "error", err)
		}
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error: credErr.Message,
			Code:  string(credErr.Code),
		})
		return
	}

	if errors.Is(err, domainerror.ErrMalformedRecord) {
		slog.Error("Stored password record is malformed", "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Stored password record is malformed",
			Code:  string(domainerror.ErrCodeMalformedRecord),
		})
		return
	}

	code := ""
	switch {
	case errors.Is(err, domainerror.ErrEntropySourceUnavailable):
		code = string(domainerror.ErrCodeEntropyUnavailable)
	case errors.Is(err, domainerror.ErrUnsupportedEnvironment):
		code = string(domainerror.ErrCodeUnsupportedEnvironment)
	case errors.Is(err, domainerror.ErrInvalidParameters):
		code = string(domainerror.ErrCodeInvalidParameters)
	}

	slog.Error("Credential request failed", "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
		Code:  code,
	})
}

// getStatusCodeForCredentialError maps credential error codes to HTTP status codes.
func getStatusCodeForCredentialError(code domainerror.CredentialErrorCode) int {
	switch code {
	case domainerror.ErrCodeMissingFields:
		return http.StatusBadRequest
	case domainerror.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case domainerror.ErrCodePolicyViolation:
		return http.StatusUnprocessableEntity
	case domainerror.ErrCodeAccountLocked,
		domainerror.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case domainerror.ErrCodeAuditUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(ctx *gin.Context) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request body",
		Code:  string(domainerror.ErrCodeMissingFields),
	})
}
