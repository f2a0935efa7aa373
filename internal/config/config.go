package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the full service configuration, read from the environment.
type Config struct {
	Port        int
	Environment string
	LogLevel    string

	DatabaseURL string

	JWTSecret string
	// JWKSURL, when set, switches token verification to the hosted identity
	// provider's JWKS endpoint instead of the local HMAC secret.
	JWKSURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	DocumentBucket string

	Alerts AlertConfig
}

// AlertConfig carries the alerting and compliance policy knobs. The expiry
// warning windows were hard-coded inconsistently upstream (7 vs 30 days); both
// are explicit parameters here.
type AlertConfig struct {
	// ExpiryWarningDays is the window for expiring_soon alerts.
	ExpiryWarningDays int
	// StatsExpiringDays is the default window for the dashboard expiring-items
	// counter.
	StatsExpiringDays int
	// PriceChangePercent is the unit-cost movement, in percent, past which a
	// price_change alert is raised.
	PriceChangePercent float64
	// ComplianceWarningDays is the window for expiring-soon staff documents.
	ComplianceWarningDays int
}

// Load reads configuration from the environment. A .env file is loaded first
// when present so local development does not need exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg := &Config{
		Port:        envInt("PORT", 8080),
		Environment: envString("ENVIRONMENT", "development"),
		LogLevel:    envString("LOG_LEVEL", "info"),

		DatabaseURL: databaseURL,

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWKSURL:   os.Getenv("JWKS_URL"),

		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		MinioEndpoint:  envString("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: envString("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: envString("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		DocumentBucket: envString("DOCUMENT_BUCKET", "staff-documents"),

		Alerts: AlertConfig{
			ExpiryWarningDays:     envInt("ALERT_EXPIRY_WARNING_DAYS", 30),
			StatsExpiringDays:     envInt("STATS_EXPIRING_DAYS", 7),
			PriceChangePercent:    envFloat("ALERT_PRICE_CHANGE_PERCENT", 10),
			ComplianceWarningDays: envInt("COMPLIANCE_WARNING_DAYS", 30),
		},
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
