package adapters

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/storefront/credential-security/internal/application/adapter"
	"github.com/storefront/credential-security/internal/domain/entity"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// DefaultSpecialChars is the symbol set that satisfies the special character rule.
const DefaultSpecialChars = "!@#$%^&*()_+-=[]{}|;':\",./<>?`~"

// DefaultForbiddenPatterns are structural substrings rejected anywhere in a password.
var DefaultForbiddenPatterns = []string{"password", "123456", "qwerty", "admin"}

// DefaultCommonPasswords is a small set of passwords seen in almost every breach corpus.
var DefaultCommonPasswords = []string{
	"password", "password1", "password123", "123456", "12345678", "123456789",
	"1234567890", "qwerty", "qwerty123", "abc123", "111111", "123123",
	"letmein", "welcome", "welcome1", "monkey", "dragon", "iloveyou",
	"sunshine", "princess", "football", "baseball", "master", "shadow",
	"trustno1", "admin", "admin123", "passw0rd", "p@ssw0rd", "changeme",
}

// Policy messages.
const (
	msgUppercase = "password must contain at least one uppercase letter"
	msgLowercase = "password must contain at least one lowercase letter"
	msgNumber    = "password must contain at least one number"
	msgSpecial   = "password must contain at least one special character"
	msgCommon    = "password is too common"
	msgReused    = "password was used recently"
)

// Score weights.
const (
	pointsPerChar       = 4
	maxLengthPoints     = 25
	longBonus           = 10
	veryLongBonus       = 10
	lowerPoints         = 5
	upperPoints         = 5
	digitPoints         = 5
	symbolPoints        = 10
	allClassesBonus     = 10
	pointsPerUniqueChar = 2
	maxDiversityPoints  = 20
	forbiddenPenalty    = 15
	commonPenalty       = 30
	repeatPenalty       = 10
)

// PolicyConfig holds password policy rules.
type PolicyConfig struct {
	MinLength           int
	MaxLength           int // 0 = unlimited
	RequireUppercase    bool
	RequireLowercase    bool
	RequireNumbers      bool
	RequireSpecialChars bool
	MaxRepeatingChars   int // 0 disables the rule
	SpecialChars        string
	ForbiddenPatterns   []string
	CommonPasswords     []string
}

// DefaultPolicyConfig returns the default password policy.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MinLength:           8,
		MaxLength:           128,
		RequireUppercase:    true,
		RequireLowercase:    true,
		RequireNumbers:      true,
		RequireSpecialChars: true,
		MaxRepeatingChars:   3,
		SpecialChars:        DefaultSpecialChars,
		ForbiddenPatterns:   DefaultForbiddenPatterns,
		CommonPasswords:     DefaultCommonPasswords,
	}
}

// policyEvaluator implements adapter.PasswordPolicy. It holds no mutable state.
type policyEvaluator struct {
	config    PolicyConfig
	forbidden []string
	common    map[string]struct{}
}

// NewPolicyEvaluator creates a policy evaluator. Patterns and common passwords are matched case-insensitively.
func NewPolicyEvaluator(config PolicyConfig) (adapter.PasswordPolicy, error) {
	if config.MinLength < 0 || config.MaxLength < 0 || config.MaxRepeatingChars < 0 {
		return nil, fmt.Errorf("%w: policy limits must not be negative", domainerror.ErrInvalidParameters)
	}
	if config.MaxLength > 0 && config.MaxLength < config.MinLength {
		return nil, fmt.Errorf("%w: max length %d is below min length %d", domainerror.ErrInvalidParameters, config.MaxLength, config.MinLength)
	}
	if config.SpecialChars == "" {
		config.SpecialChars = DefaultSpecialChars
	}

	e := &policyEvaluator{
		config: config,
		common: make(map[string]struct{}, len(config.CommonPasswords)),
	}
	for _, p := range config.ForbiddenPatterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			e.forbidden = append(e.forbidden, p)
		}
	}
	for _, p := range config.CommonPasswords {
		e.common[strings.ToLower(p)] = struct{}{}
	}

	return e, nil
}

// Validate applies every rule in a fixed order and scores the password.
func (e *policyEvaluator) Validate(password string) entity.PolicyResult {
	errs, score := e.evaluate(password)
	return entity.NewPolicyResult(errs, score)
}

// ValidateWithHistory runs Validate and then rejects reuse of any record in history.
func (e *policyEvaluator) ValidateWithHistory(ctx context.Context, password string, history []*entity.PasswordRecord, verifier adapter.PasswordVerifier) (entity.PolicyResult, error) {
	errs, score := e.evaluate(password)

	if verifier != nil {
		for _, record := range history {
			if record == nil {
				continue
			}
			match, err := verifier.VerifyPassword(ctx, password, record)
			if err != nil {
				return entity.PolicyResult{}, fmt.Errorf("checking password history: %w", err)
			}
			if match {
				errs = append(errs, msgReused)
				break
			}
		}
	}

	return entity.NewPolicyResult(errs, score), nil
}

func (e *policyEvaluator) evaluate(password string) ([]string, int) {
	cfg := e.config
	errs := []string{}
	length := utf8.RuneCountInString(password)

	if length < cfg.MinLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", cfg.MinLength))
	}
	if cfg.MaxLength > 0 && length > cfg.MaxLength {
		errs = append(errs, fmt.Sprintf("password must be at most %d characters long", cfg.MaxLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	unique := make(map[rune]struct{})
	for _, r := range password {
		unique[r] = struct{}{}
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(cfg.SpecialChars, r):
			hasSpecial = true
		}
	}

	if cfg.RequireUppercase && !hasUpper {
		errs = append(errs, msgUppercase)
	}
	if cfg.RequireLowercase && !hasLower {
		errs = append(errs, msgLowercase)
	}
	if cfg.RequireNumbers && !hasDigit {
		errs = append(errs, msgNumber)
	}
	if cfg.RequireSpecialChars && !hasSpecial {
		errs = append(errs, msgSpecial)
	}

	lower := strings.ToLower(password)
	penalty := 0
	for _, pattern := range e.forbidden {
		if strings.Contains(lower, pattern) {
			errs = append(errs, fmt.Sprintf("password must not contain %q", pattern))
			penalty += forbiddenPenalty
		}
	}
	if _, ok := e.common[lower]; ok {
		errs = append(errs, msgCommon)
		penalty += commonPenalty
	}
	if cfg.MaxRepeatingChars > 0 && longestRun(password) > cfg.MaxRepeatingChars {
		errs = append(errs, fmt.Sprintf("password must not repeat the same character more than %d times in a row", cfg.MaxRepeatingChars))
		penalty += repeatPenalty
	}

	score := min(length*pointsPerChar, maxLengthPoints)
	if length >= 12 {
		score += longBonus
	}
	if length >= 16 {
		score += veryLongBonus
	}
	if hasLower {
		score += lowerPoints
	}
	if hasUpper {
		score += upperPoints
	}
	if hasDigit {
		score += digitPoints
	}
	if hasSpecial {
		score += symbolPoints
	}
	if hasLower && hasUpper && hasDigit && hasSpecial {
		score += allClassesBonus
	}
	score += min(len(unique)*pointsPerUniqueChar, maxDiversityPoints)
	score -= penalty

	return errs, score
}

// longestRun returns the length of the longest run of one repeated rune.
func longestRun(s string) int {
	longest, run := 0, 0
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
