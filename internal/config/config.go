package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabasePath string

	// JWT
	JWTSecret             string
	JWTIssuer             string
	JWTAudience           string
	JWTExpirationMinutes  int
	RefreshExpirationDays int
}

func Load() (*Config, error) {
	// Optional .env for local development; real environments set vars directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           getEnv("ENVIRONMENT", "development"),
		DatabasePath:          getEnv("DATABASE_PATH", "users.db"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		JWTIssuer:             getEnv("JWT_ISSUER", "user-registry"),
		JWTAudience:           getEnv("JWT_AUDIENCE", "user-registry-client"),
		JWTExpirationMinutes:  getEnvInt("JWT_EXPIRATION_MINUTES", 60),
		RefreshExpirationDays: getEnvInt("REFRESH_EXPIRATION_DAYS", 7),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationMinutes) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshExpirationDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
