package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storefront/credential-security/internal/application/adapter"
	domainerror "github.com/storefront/credential-security/internal/domain/error"
)

// tokenTypeService marks tokens minted for backend callers.
const tokenTypeService = "service"

// TokenConfig holds the HMAC secret and registered claims for service tokens.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// ServiceClaims represents the custom claims for service tokens.
type ServiceClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// tokenService implements adapter.TokenService with HS256 JWTs.
type tokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	clock    adapter.Clock
}

// NewTokenService creates a new token service instance.
func NewTokenService(config TokenConfig, clock adapter.Clock) (adapter.TokenService, error) {
	if config.Secret == "" {
		return nil, fmt.Errorf("%w: token secret must not be empty", domainerror.ErrInvalidParameters)
	}
	if config.TTL <= 0 {
		return nil, fmt.Errorf("%w: token ttl must be positive", domainerror.ErrInvalidParameters)
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	return &tokenService{
		secret:   []byte(config.Secret),
		issuer:   config.Issuer,
		audience: config.Audience,
		ttl:      config.TTL,
		clock:    clock,
	}, nil
}

// IssueServiceToken generates a signed token for service.
func (s *tokenService) IssueServiceToken(_ context.Context, service string) (string, error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return "", fmt.Errorf("%w: service name is required", domainerror.ErrInvalidParameters)
	}

	now := s.clock.Now().UTC()
	claims := ServiceClaims{
		TokenType: tokenTypeService,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			Subject:   service,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateServiceToken parses token and checks its signature, lifetime, issuer and audience.
func (s *tokenService) ValidateServiceToken(_ context.Context, tokenString string) (*adapter.ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerror.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", domainerror.ErrInvalidToken)
	}
	if claims.TokenType != tokenTypeService {
		return nil, fmt.Errorf("%w: expected service token", domainerror.ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domainerror.ErrInvalidToken)
	}

	return &adapter.ServiceClaims{
		Service:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
