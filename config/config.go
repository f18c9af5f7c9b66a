package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// QR protocol configuration
	QrScheme string
	QrHost   string
	QrSecret string
	QrTTL    time.Duration

	// Fee configuration (basis points)
	PrimaryFeeBps int64
	ResaleFeeBps  int64

	// Scanner gateway
	GatewayPort    string
	GatewayEnabled bool

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// QR protocol
		QrScheme: getEnv("QR_SCHEME", "ticketgate"),
		QrHost:   getEnv("QR_HOST", "tickets.example.com"),
		QrSecret: getEnv("QR_SECRET", "dev-only-secret"),
		QrTTL:    getEnvAsDuration("QR_TTL", "5m"),

		// Fees
		PrimaryFeeBps: getEnvAsInt64("PRIMARY_FEE_BPS", 700),
		ResaleFeeBps:  getEnvAsInt64("RESALE_FEE_BPS", 300),

		// Scanner gateway
		GatewayPort:    getEnv("GATEWAY_PORT", "8091"),
		GatewayEnabled: getEnvAsBool("GATEWAY_ENABLED", true),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	parsed, _ := time.ParseDuration(defaultValue)
	return parsed
}
