package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Database
	DatabaseURL string

	// Bearer tokens
	JWTSecret string // HS256 signing secret (min 32 chars)
	JWTIssuer string

	// OIDC (optional, verifies ID tokens presented as bearer credentials)
	OIDCIssuer   string
	OIDCClientID string

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Redis (optional, backs the curated-list cache and the rate limiter)
	RedisURL        string
	CuratedCacheTTL time.Duration

	// Trending scheduler
	TrendingInterval time.Duration

	// Rate limiting, requests per minute per client IP
	RateLimitMax int

	// Features
	SeedDevData bool // Seed demo users and tools on start-up
}

// devJWTSecret signs bearer tokens in development when JWT_SECRET is unset.
// Validate rejects it in every other environment.
const devJWTSecret = "dev-only-jwt-secret-do-not-use-in-production"

// minJWTSecretLen is the shortest accepted HS256 secret.
const minJWTSecretLen = 32

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	cfg := &Config{
		Env:              getEnv("ENV", "development"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/marketmind?sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "marketmind"),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		CuratedCacheTTL:  getEnvDuration("CURATED_CACHE_TTL", 5*time.Minute),
		TrendingInterval: getEnvDuration("TRENDING_INTERVAL", 15*time.Minute),
		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX", 120),
		SeedDevData:      getEnv("SEED_DEV_DATA", "") != "",
	}
	if cfg.JWTSecret == "" && cfg.IsDev() {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg
}

// Validate reports configuration that must stop start-up. Outside development
// the bearer token secret has to be set explicitly.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set outside development")
	}
	if !c.IsDev() && c.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must not use the development default")
	}
	if len(c.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s=%q, using default %s", key, value, fallback)
		return fallback
	}
	return d
}

// lookupEnvFloat returns the parsed value of key and whether it was set.
func lookupEnvFloat(key string) (float64, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, true, err
	}
	return f, true, nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// HasOIDC returns true if ID tokens from an OIDC provider are accepted.
func (c *Config) HasOIDC() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}
