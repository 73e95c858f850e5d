package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/credential-security/internal/application/usecase/credential"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
	"github.com/storefront/credential-security/internal/integration/entrypoint/dto"
)

// CredentialController handles password evaluation, creation and verification endpoints.
type CredentialController struct {
	evaluatePolicyUseCase   *credential.EvaluatePolicyUseCase
	createCredentialUseCase *credential.CreateCredentialUseCase
	verifyCredentialUseCase *credential.VerifyCredentialUseCase
}

// NewCredentialController creates a new credential controller instance.
func NewCredentialController(
	evaluatePolicyUseCase *credential.EvaluatePolicyUseCase,
	createCredentialUseCase *credential.CreateCredentialUseCase,
	verifyCredentialUseCase *credential.VerifyCredentialUseCase,
) *CredentialController {
	return &CredentialController{
		evaluatePolicyUseCase:   evaluatePolicyUseCase,
		createCredentialUseCase: createCredentialUseCase,
		verifyCredentialUseCase: verifyCredentialUseCase,
	}
}

// Evaluate handles POST /passwords/evaluate requests.
func (c *CredentialController) Evaluate(ctx *gin.Context) {
	var req dto.EvaluatePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx)
		return
	}

	result := c.evaluatePolicyUseCase.Execute(ctx.Request.Context(), credential.EvaluatePolicyInput{
		Password: req.Password,
	})

	ctx.JSON(http.StatusOK, dto.ToPolicyResultResponse(result))
}

// Create handles POST /credentials requests.
func (c *CredentialController) Create(ctx *gin.Context) {
	var req dto.CreateCredentialRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx)
		return
	}

	record, err := c.createCredentialUseCase.Execute(ctx.Request.Context(), credential.CreateCredentialInput{
		Password: req.Password,
		History:  req.History,
	})
	if err != nil {
		handleCredentialError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, record)
}

// Verify handles POST /credentials/verify requests.
// Unknown identifiers and wrong passwords produce the same response.
func (c *CredentialController) Verify(ctx *gin.Context) {
	var req dto.VerifyCredentialRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx)
		return
	}

	output, err := c.verifyCredentialUseCase.Execute(ctx.Request.Context(), credential.VerifyCredentialInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		Record:     req.Record,
	})
	if err != nil {
		handleCredentialError(ctx, err)
		return
	}

	if !output.Verified {
		if output.Lockout.IsLocked {
			respondLocked(ctx, &domainerror.AccountLockedError{RemainingTime: output.Lockout.RemainingTime})
			return
		}
		ctx.JSON(http.StatusUnauthorized, dto.VerifyFailureResponse{
			Error:             invalidCredentialsMessage,
			Code:              string(domainerror.ErrCodeInvalidCredentials),
			AttemptsRemaining: output.Lockout.AttemptsRemaining,
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.VerifyCredentialResponse{
		Verified:    true,
		NeedsRehash: output.Replacement != nil,
		Record:      output.Replacement,
	})
}
