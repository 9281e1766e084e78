package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process configuration, built once at startup.
// Token lifetimes live here rather than as package globals so tests
// can construct shorter-lived variants.
type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	GinMode string
	Port    string
}

func Load() *Config {
	// Missing .env is fine; production supplies real env vars.
	_ = godotenv.Load()

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "trackeruser"),
		DBPassword: getEnv("DB_PASSWORD", "trackerpassword"),
		DBName:     getEnv("DB_NAME", "project_tracker"),

		JWTSecret:       getEnv("JWT_SECRET", "default-secret-key-change-me"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		GinMode: getEnv("GIN_MODE", "debug"),
		Port:    getEnv("PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
