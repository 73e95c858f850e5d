package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/credential-security/internal/application/adapter"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
	"github.com/storefront/credential-security/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

// ServiceKey is the context key for the authenticated calling service.
const ServiceKey ContextKey = "service"

// AuthMiddleware only admits callers holding a service token.
type AuthMiddleware struct {
	tokenService adapter.TokenService
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(tokenService adapter.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate returns a Gin middleware handler that enforces service token authentication.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required", domainerror.ErrCodeMissingToken)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Invalid authorization header format", domainerror.ErrCodeInvalidToken)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			abortUnauthorized(c, "Token is required", domainerror.ErrCodeMissingToken)
			return
		}

		claims, err := m.tokenService.ValidateServiceToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token", domainerror.ErrCodeInvalidToken)
			return
		}

		c.Set(string(ServiceKey), claims.Service)
		c.Next()
	}
}

// GetServiceFromContext extracts the calling service name from the Gin context.
func GetServiceFromContext(c *gin.Context) (string, bool) {
	service, exists := c.Get(string(ServiceKey))
	if !exists {
		return "", false
	}
	name, ok := service.(string)
	return name, ok
}

func abortUnauthorized(c *gin.Context, message string, code domainerror.CredentialErrorCode) {
	c.Header("WWW-Authenticate", `Bearer realm="credential-security"`)
	c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: message,
		Code:  string(code),
	})
	c.Abort()
}
