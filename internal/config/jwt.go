package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultJWTIssuer is stamped into tokens when JWT_ISSUER is unset.
const DefaultJWTIssuer = "voicedna"

// JWTConfig holds the shared secret used to verify bearer tokens. Tokens are
// issued by an upstream identity service; this process only validates them.
type JWTConfig struct {
	Secret          string
	Issuer          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET (required), JWT_ISSUER and
// JWT_EXPIRATION_HOURS (default 24) from the environment.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationHours := 24
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		expirationHours = n
	}

	cfg := &JWTConfig{
		Secret:          secret,
		Issuer:          getEnvString("JWT_ISSUER", DefaultJWTIssuer),
		ExpirationHours: expirationHours,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the secret length and token lifetime.
func (c *JWTConfig) Validate() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
