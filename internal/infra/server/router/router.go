// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/credential-security/internal/integration/entrypoint/controller"
	"github.com/storefront/credential-security/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine               *gin.Engine
	healthController     *controller.HealthController
	credentialController *controller.CredentialController
	lockoutController    *controller.LockoutController
	authMiddleware       *middleware.AuthMiddleware
	verifyRateLimiter    *middleware.RateLimiter
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	credentialController *controller.CredentialController,
	lockoutController *controller.LockoutController,
	authMiddleware *middleware.AuthMiddleware,
	verifyRateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		healthController:     healthController,
		credentialController: credentialController,
		lockoutController:    lockoutController,
		authMiddleware:       authMiddleware,
		verifyRateLimiter:    verifyRateLimiter,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// Engine returns the configured Gin engine. Setup must be called first.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
// Policy evaluation is public; everything that derives keys or touches lockout
// state requires a service token.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	{
		if r.credentialController != nil {
			v1.POST("/passwords/evaluate", r.credentialController.Evaluate)
		}

		protected := v1.Group("")
		protected.Use(r.authMiddleware.Authenticate())
		{
			if r.credentialController != nil {
				credentials := protected.Group("/credentials")
				{
					credentials.POST("", r.credentialController.Create)
					if r.verifyRateLimiter != nil {
						credentials.POST("/verify", r.verifyRateLimiter.Middleware(), r.credentialController.Verify)
					} else {
						credentials.POST("/verify", r.credentialController.Verify)
					}
				}
			}

			if r.lockoutController != nil {
				lockouts := protected.Group("/lockouts")
				{
					lockouts.GET("/:identifier", r.lockoutController.Get)
					lockouts.DELETE("/:identifier", r.lockoutController.Reset)
					lockouts.POST("/:identifier/failures", r.lockoutController.RecordFailure)
					lockouts.GET("/:identifier/attempts", r.lockoutController.ListAttempts)
				}
			}
		}
	}
}
