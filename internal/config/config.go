package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port                   string
	Mode                   string
	ShutdownTimeoutSeconds int

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// Commission configuration
	AtomicFanout          bool
	BreakdownCacheMinutes int

	// Rate limiting
	RateLimitPerSecond int
	RateLimitBurst     int

	// Webhook configuration
	WebhookURL    string
	WebhookSecret string

	ServiceName string
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	AppConfig = &Config{
		Port:                   getEnv("PORT", "8080"),
		Mode:                   getEnv("GIN_MODE", "debug"),
		ShutdownTimeoutSeconds: getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		RedisURL:               getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AtomicFanout:           getEnvBool("COMMISSION_ATOMIC_FANOUT", true),
		BreakdownCacheMinutes:  getEnvInt("BREAKDOWN_CACHE_MINUTES", 10),
		RateLimitPerSecond:     getEnvInt("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 20),
		WebhookURL:             getEnv("COMMISSION_WEBHOOK_URL", ""),
		WebhookSecret:          getEnv("COMMISSION_WEBHOOK_SECRET", ""),
		ServiceName:            getEnv("SERVICE_NAME", "Commission Service"),
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
