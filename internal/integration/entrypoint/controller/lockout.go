package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storefront/credential-security/internal/application/usecase/credential"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
	"github.com/storefront/credential-security/internal/integration/entrypoint/dto"
	"github.com/storefront/credential-security/internal/integration/entrypoint/middleware"
)

// LockoutController handles lockout administration endpoints.
type LockoutController struct {
	checkLockoutUseCase  *credential.CheckLockoutUseCase
	recordFailureUseCase *credential.RecordFailureUseCase
	resetAttemptsUseCase *credential.ResetAttemptsUseCase
	listAttemptsUseCase  *credential.ListAttemptsUseCase
}

// NewLockoutController creates a new lockout controller instance.
func NewLockoutController(
	checkLockoutUseCase *credential.CheckLockoutUseCase,
	recordFailureUseCase *credential.RecordFailureUseCase,
	resetAttemptsUseCase *credential.ResetAttemptsUseCase,
	listAttemptsUseCase *credential.ListAttemptsUseCase,
) *LockoutController {
	return &LockoutController{
		checkLockoutUseCase:  checkLockoutUseCase,
		recordFailureUseCase: recordFailureUseCase,
		resetAttemptsUseCase: resetAttemptsUseCase,
		listAttemptsUseCase:  listAttemptsUseCase,
	}
}

// Get handles GET /lockouts/:identifier requests.
func (c *LockoutController) Get(ctx *gin.Context) {
	identifier := ctx.Param("identifier")

	status, err := c.checkLockoutUseCase.Execute(ctx.Request.Context(), credential.CheckLockoutInput{
		Identifier: identifier,
	})
	if err != nil && !errors.Is(err, domainerror.ErrAccountLocked) {
		handleCredentialError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToLockoutStatusResponse(identifier, status))
}

// RecordFailure handles POST /lockouts/:identifier/failures requests.
func (c *LockoutController) RecordFailure(ctx *gin.Context) {
	identifier := ctx.Param("identifier")

	status, err := c.recordFailureUseCase.Execute(ctx.Request.Context(), credential.RecordFailureInput{
		Identifier: identifier,
	})
	if err != nil {
		handleCredentialError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToLockoutStatusResponse(identifier, status))
}

// Reset handles DELETE /lockouts/:identifier requests.
func (c *LockoutController) Reset(ctx *gin.Context) {
	identifier := ctx.Param("identifier")

	err := c.resetAttemptsUseCase.Execute(ctx.Request.Context(), credential.ResetAttemptsInput{
		Identifier: identifier,
	})
	if err != nil {
		handleCredentialError(ctx, err)
		return
	}

	service, _ := middleware.GetServiceFromContext(ctx)
	slog.Info("Lockout reset requested", "identifier", identifier, "service", service)

	ctx.Status(http.StatusNoContent)
}

// ListAttempts handles GET /lockouts/:identifier/attempts requests.
func (c *LockoutController) ListAttempts(ctx *gin.Context) {
	identifier := ctx.Param("identifier")

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "limit must be a positive integer",
				Code:  string(domainerror.ErrCodeMissingFields),
			})
			return
		}
		limit = parsed
	}

	attempts, err := c.listAttemptsUseCase.Execute(ctx.Request.Context(), credential.ListAttemptsInput{
		Identifier: identifier,
		Limit:      limit,
	})
	if err != nil {
		handleCredentialError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAttemptListResponse(identifier, attempts))
}
