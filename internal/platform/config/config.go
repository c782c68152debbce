package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisURL    string
	LogLevel    slog.Level

	// OTPTTL is the one-time-code expiry window.
	OTPTTL time.Duration

	// Kafka audit fan-out. Empty brokers disables publishing.
	KafkaBrokers    []string
	KafkaAuditTopic string
}

// OTPTTLDefault is the issue-to-expiry window for one-time codes.
const OTPTTLDefault = 10 * time.Minute

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            getEnv("UDYAM_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		LogLevel:        parseLevel(os.Getenv("LOG_LEVEL")),
		OTPTTL:          parseDuration(os.Getenv("OTP_TTL"), OTPTTLDefault),
		KafkaAuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "udyam.validation-log"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if mins, err := strconv.Atoi(s); err == nil && mins > 0 {
		return time.Duration(mins) * time.Minute
	}
	return fallback
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
