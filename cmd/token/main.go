// Package main issues service tokens for callers of the credential security API.
//
// Usage:
//
//	AUTH_TOKEN_SECRET=... go run ./cmd/token accounts
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/storefront/credential-security/config"
	"github.com/storefront/credential-security/internal/integration/adapters"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: token <service-name>")
		os.Exit(2)
	}

	cfg := config.Load()
	tokens, err := adapters.NewTokenService(adapters.TokenConfig{
		Secret:   cfg.Auth.TokenSecret,
		Issuer:   cfg.Auth.TokenIssuer,
		Audience: cfg.Auth.TokenAudience,
		TTL:      cfg.Auth.TokenTTL,
	}, nil)
	if err != nil {
		slog.Error("Failed to create token service", "error", err)
		os.Exit(1)
	}

	token, err := tokens.IssueServiceToken(context.Background(), os.Args[1])
	if err != nil {
		slog.Error("Failed to issue token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
