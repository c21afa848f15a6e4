// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components through
their constructors. No global variables hold config.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// # Configuration Schema

// Config holds all runtime configuration for the admin API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Optional unless revocation is enabled.
	RedisURL string `env:"REDIS_URL"`

	// Token signing. Access and refresh tokens use distinct secrets.
	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiresIn     time.Duration `env:"JWT_EXPIRES_IN"         envDefault:"15m"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET,required,notEmpty"`
	JWTRefreshTTL    time.Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"720h"`

	// BcryptSaltRounds is the bcrypt work factor for new password digests.
	BcryptSaltRounds int `env:"BCRYPT_SALT_ROUNDS" envDefault:"10"`

	// RevocationEnabled turns on the Redis-backed token denylist.
	RevocationEnabled bool `env:"REVOCATION_ENABLED" envDefault:"false"`

	// AllowedOriginSuffix is the domain suffix accepted by CORS outside development.
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX"`

	// SeedAdminPassword is the initial super admin password used by cmd/seed.
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates
// cross-field constraints.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the rules the struct tags cannot express.
func (c *Config) Validate() error {
	if c.JWTSecret == c.JWTRefreshSecret {
		return errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if c.JWTExpiresIn <= 0 || c.JWTRefreshTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}

	if c.BcryptSaltRounds < bcrypt.MinCost || c.BcryptSaltRounds > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_SALT_ROUNDS must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.RevocationEnabled && c.RedisURL == "" {
		return errors.New("config: REVOCATION_ENABLED requires REDIS_URL")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginSuffix returns the CORS origin suffix accepted outside development.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
