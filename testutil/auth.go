package testutil

import (
	"context"
	"errors"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/shopspring/decimal"

	"github.com/sipstation/bubble-tea-pos-api/config"
	"github.com/sipstation/bubble-tea-pos-api/middleware"
)

// FakeVerifier accepts the tokens it knows, mapping each to an email
type FakeVerifier map[string]string

// ValidateToken returns claims shaped like a verified Google ID token
func (f FakeVerifier) ValidateToken(_ context.Context, token string) (interface{}, error) {
	email, ok := f[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  middleware.GoogleIssuer,
			Subject: "google|" + email,
		},
		CustomClaims: &middleware.CustomClaims{
			Email:         email,
			EmailVerified: true,
			Name:          "Test User",
		},
	}, nil
}

// NewTestConfig returns a configuration suitable for router tests
func NewTestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:        "sqlite://file::memory:",
		Port:               "8080",
		GoEnv:              "test",
		LogLevel:           "debug",
		DBTxTimeout:        5 * time.Second,
		TaxRate:            decimal.RequireFromString("0.08"),
		MaxOrderItems:      10,
		PopularItemsLimit:  20,
		PriceCheckMode:     config.PriceCheckTrust,
		UsageTracking:      true,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}
}
