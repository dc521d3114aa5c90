// Package config loads process configuration from the environment,
// honoring a local .env file in development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseURL string
	LogLevel    string

	// SnowflakeNode distinguishes ID generators across replicas.
	SnowflakeNode int64

	// Webhook intake rate limiting, keyed by provider.
	WebhookRateLimit  int
	WebhookRateWindow time.Duration

	// Overdue sweep cadence for bills past their due date.
	OverdueSweepInterval time.Duration
	OverdueBatchSize     int

	// SeedDemoData loads demo customers and bills on startup outside
	// production.
	SeedDemoData bool

	// OTLP trace export. Tracing stays off unless enabled explicitly.
	TracingEnabled  bool
	TracingEndpoint string
	TracingProtocol string
	TracingSampling float64
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: getEnv("APP_ENV", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		LogLevel:    strings.TrimSpace(os.Getenv("LOG_LEVEL")),
	}

	node, err := getInt("SNOWFLAKE_NODE", 1)
	if err != nil {
		return Config{}, err
	}
	cfg.SnowflakeNode = node

	limit, err := getInt("WEBHOOK_RATE_LIMIT", 120)
	if err != nil {
		return Config{}, err
	}
	cfg.WebhookRateLimit = int(limit)

	window, err := getDuration("WEBHOOK_RATE_WINDOW", time.Minute)
	if err != nil {
		return Config{}, err
	}
	cfg.WebhookRateWindow = window

	interval, err := getDuration("OVERDUE_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.OverdueSweepInterval = interval

	batch, err := getInt("OVERDUE_BATCH_SIZE", 200)
	if err != nil {
		return Config{}, err
	}
	cfg.OverdueBatchSize = int(batch)

	cfg.SeedDemoData = getBool("SEED_DEMO_DATA")

	cfg.TracingEnabled = getBool("TRACING_ENABLED")
	cfg.TracingEndpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	cfg.TracingProtocol = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"))
	sampling, err := getFloat("TRACING_SAMPLING_RATIO", 0.1)
	if err != nil {
		return Config{}, err
	}
	cfg.TracingSampling = sampling

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func getBool(key string) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return raw == "1" || raw == "true" || raw == "yes"
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
