// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/storefront/credential-security/config"
	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/application/usecase/credential"
	"github.com/storefront/credential-security/internal/domain/entity"
	"github.com/storefront/credential-security/internal/infra/server/router"
	"github.com/storefront/credential-security/internal/integration/adapters"
	"github.com/storefront/credential-security/internal/integration/entrypoint/controller"
	"github.com/storefront/credential-security/internal/integration/entrypoint/middleware"
	"github.com/storefront/credential-security/internal/integration/maintenance"
	"github.com/storefront/credential-security/internal/integration/persistence"
)

// Dependencies carries the external connections and overridable primitives.
// A nil DB disables the audit trail; Redis is required for the redis lockout backend.
type Dependencies struct {
	DB                 *gorm.DB
	Redis              *redis.Client
	Clock              adapter.Clock
	Random             adapter.RandomSource
	DBHealthChecker    func() bool
	RedisHealthChecker func() bool
}

// Injector holds all application dependencies.
type Injector struct {
	Config      *config.Config
	Router      *router.Router
	Hasher      adapter.PasswordHasher
	Tokens      adapter.TokenService
	Tracker     adapter.LockoutTracker
	Attempts    adapter.AttemptRepository
	RateLimiter *middleware.RateLimiter
	Worker      *maintenance.Worker

	memoryTracker *adapters.MemoryLockoutTracker
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, deps Dependencies) (*Injector, error) {
	clock := deps.Clock
	if clock == nil {
		clock = adapters.NewSystemClock()
	}
	random := deps.Random
	if random == nil {
		random = adapters.NewRandomSource()
	}

	// Create adapters/services
	policy, err := adapters.NewPolicyEvaluator(policyConfig(cfg.Policy))
	if err != nil {
		return nil, fmt.Errorf("failed to create password policy: %w", err)
	}

	engine, err := adapters.NewPBKDF2Engine(adapters.KDFConfig{
		Workers:       cfg.Hasher.Workers,
		Timeout:       cfg.Hasher.Timeout,
		MaxIterations: cfg.Hasher.MaxIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create key derivation engine: %w", err)
	}

	hasher, err := adapters.NewPasswordHasher(engine, random, policy, clock, adapters.HasherConfig{
		Iterations:    cfg.Hasher.Iterations,
		MaxIterations: cfg.Hasher.MaxIterations,
		Digest:        entity.Digest(cfg.Hasher.Digest),
		SaltLength:    cfg.Hasher.SaltLength,
		KeyLength:     cfg.Hasher.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	tokens, err := adapters.NewTokenService(adapters.TokenConfig{
		Secret:   cfg.Auth.TokenSecret,
		Issuer:   cfg.Auth.TokenIssuer,
		Audience: cfg.Auth.TokenAudience,
		TTL:      cfg.Auth.TokenTTL,
	}, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	lockoutPolicy := entity.LockoutPolicy{
		MaxAttempts:     cfg.Lockout.MaxAttempts,
		AttemptWindow:   cfg.Lockout.AttemptWindow,
		LockoutDuration: cfg.Lockout.LockoutDuration,
	}

	inj := &Injector{Config: cfg, Hasher: hasher, Tokens: tokens}

	switch cfg.Lockout.Backend {
	case config.LockoutBackendRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("lockout backend %q requires a redis connection", cfg.Lockout.Backend)
		}
		inj.Tracker, err = persistence.NewRedisLockoutTracker(deps.Redis, lockoutPolicy, clock)
	default:
		inj.memoryTracker, err = adapters.NewMemoryLockoutTracker(lockoutPolicy, clock, cfg.Lockout.SweepInterval)
		inj.Tracker = inj.memoryTracker
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create lockout tracker: %w", err)
	}

	// The audit trail is optional; the interface stays nil when it is off.
	if deps.DB != nil && cfg.Database.AuditEnabled {
		inj.Attempts = persistence.NewAttemptRepository(deps.DB)
	}

	// Create credential use cases
	evaluatePolicyUseCase := credential.NewEvaluatePolicyUseCase(policy)
	createCredentialUseCase := credential.NewCreateCredentialUseCase(hasher)
	verifyCredentialUseCase := credential.NewVerifyCredentialUseCase(hasher, inj.Tracker, inj.Attempts, clock)
	checkLockoutUseCase := credential.NewCheckLockoutUseCase(inj.Tracker)
	recordFailureUseCase := credential.NewRecordFailureUseCase(inj.Tracker)
	resetAttemptsUseCase := credential.NewResetAttemptsUseCase(inj.Tracker)
	listAttemptsUseCase := credential.NewListAttemptsUseCase(inj.Attempts)

	// Create controllers
	healthController := controller.NewHealthController(deps.DBHealthChecker, deps.RedisHealthChecker)

	credentialController := controller.NewCredentialController(
		evaluatePolicyUseCase,
		createCredentialUseCase,
		verifyCredentialUseCase,
	)

	lockoutController := controller.NewLockoutController(
		checkLockoutUseCase,
		recordFailureUseCase,
		resetAttemptsUseCase,
		listAttemptsUseCase,
	)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// Use higher rate limits for E2E/test environments to prevent flaky tests
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		inj.RateLimiter = middleware.NewRateLimiterWithConfig(1000, 1000)
	} else {
		inj.RateLimiter = middleware.NewRateLimiterWithConfig(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	inj.Worker = maintenance.NewWorker(inj.Attempts, maintenance.WorkerConfig{
		Interval:      cfg.Database.AuditCleanupInterval,
		RetentionDays: cfg.Database.AuditRetentionDays,
	}, inj.RateLimiter)

	inj.Router = router.NewRouter(healthController, credentialController, lockoutController, authMiddleware, inj.RateLimiter)

	slog.Info("Credential subsystem initialized",
		"lockout_backend", cfg.Lockout.Backend,
		"audit_enabled", inj.Attempts != nil,
		"iterations", cfg.Hasher.Iterations,
		"digest", cfg.Hasher.Digest,
	)

	return inj, nil
}

// Start launches the background workers. They stop when ctx is cancelled or
// Stop is called.
func (i *Injector) Start(ctx context.Context) {
	if i.memoryTracker != nil {
		i.memoryTracker.Start(ctx)
	}
	go i.Worker.Start(ctx)
}

// Stop halts the in-memory sweeper. The maintenance worker follows ctx.
func (i *Injector) Stop() {
	if i.memoryTracker != nil {
		i.memoryTracker.Stop()
	}
}

func policyConfig(cfg config.PolicyConfig) adapters.PolicyConfig {
	p := adapters.DefaultPolicyConfig()
	p.MinLength = cfg.MinLength
	p.MaxLength = cfg.MaxLength
	p.RequireUppercase = cfg.RequireUppercase
	p.RequireLowercase = cfg.RequireLowercase
	p.RequireNumbers = cfg.RequireNumbers
	p.RequireSpecialChars = cfg.RequireSpecialChars
	p.MaxRepeatingChars = cfg.MaxRepeatingChars
	return p
}
