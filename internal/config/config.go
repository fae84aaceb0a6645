package config

import (
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL    string
	RedisURL       string
	NatsURL        string
	KafkaBrokers   string
	JaegerEndpoint string
	Port           string

	// OperatorID is the single actor authorized to review purchases
	// and use the admin flows.
	OperatorID int64

	// MaxReceiptAttempts caps how many receipts may be attached to one
	// purchase.
	MaxReceiptAttempts int

	// RateLimitSeconds is the per-actor cooldown between throttled
	// actions.
	RateLimitSeconds int
}

func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	return &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		NatsURL:            os.Getenv("NATS_URL"),
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		JaegerEndpoint:     os.Getenv("JAEGER_ENDPOINT"),
		Port:               port,
		OperatorID:         envInt64("OPERATOR_ID", 0),
		MaxReceiptAttempts: envInt("MAX_RECEIPT_ATTEMPTS", 3),
		RateLimitSeconds:   envInt("RATE_LIMIT_SECONDS", 2),
	}
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return def
	}
	return n
}
