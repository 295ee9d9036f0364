package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath string
	JWTSecret    string
	TokenExpiry  time.Duration
	LogLevel     string
	Port         string
}

func Load() (Config, error) {
	// A missing .env is fine; deployments set the environment directly.
	_ = godotenv.Load()

	config := Config{
		DatabasePath: envOrDefault("DATABASE_PATH", "./data/choreboard.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		Port:         envOrDefault("PORT", "8080"),
	}

	expiryHours, err := strconv.Atoi(envOrDefault("TOKEN_EXPIRY_HOURS", "168"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing TOKEN_EXPIRY_HOURS: %w", err)
	}
	config.TokenExpiry = time.Duration(expiryHours) * time.Hour

	if config.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
