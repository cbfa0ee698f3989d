// Package config reads process settings from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Delivery settings sources.
const (
	SettingsFromEnv   = "env"
	SettingsFromRedis = "redis"
)

type Config struct {
	ServiceName  string
	Environment  string
	LogLevel     string
	OTLPEndpoint string

	HTTPPort string
	GRPCPort string

	// DatabaseURL selects Postgres for the catalog and orders. Empty runs on
	// the in-memory demo catalog and store.
	DatabaseURL string
	RedisAddr   string
	SagaDBPath  string

	DeliverySource      string
	DeliveryHomeAddress string
	DeliveryHomeLat     string
	DeliveryHomeLng     string
	DeliveryRadiusMiles string

	MapboxToken          string
	BuilderStrictOptions bool

	CORSOrigins    []string
	PriceRateLimit float64
	PriceRateBurst int
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only set it behind a proxy that overwrites those headers.
	TrustProxy bool

	PaymentLimitMinor int64
}

// Load reads the configuration. Only malformed numeric or boolean values are
// errors; everything else has a default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	cfg := &Config{
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "mealprep-api"),
		Environment:  getEnv("APP_ENV", "local"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		HTTPPort: getEnv("PORT", "8080"),
		GRPCPort: getEnv("GRPC_PORT", "9090"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		SagaDBPath:  getEnv("SAGA_DB_PATH", "saga_logs.db"),

		DeliverySource:      strings.ToLower(getEnv("DELIVERY_SETTINGS_SOURCE", SettingsFromEnv)),
		DeliveryHomeAddress: os.Getenv("DELIVERY_HOME_ADDRESS"),
		DeliveryHomeLat:     os.Getenv("DELIVERY_HOME_LAT"),
		DeliveryHomeLng:     os.Getenv("DELIVERY_HOME_LNG"),
		DeliveryRadiusMiles: os.Getenv("DELIVERY_RADIUS_MILES"),

		MapboxToken: os.Getenv("MAPBOX_ACCESS_TOKEN"),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.BuilderStrictOptions, err = strconv.ParseBool(getEnv("BUILDER_STRICT_OPTIONS", "false")); err != nil {
		return nil, fmt.Errorf("config: BUILDER_STRICT_OPTIONS: %w", err)
	}
	if cfg.TrustProxy, err = strconv.ParseBool(getEnv("TRUST_PROXY", "false")); err != nil {
		return nil, fmt.Errorf("config: TRUST_PROXY: %w", err)
	}
	if cfg.PriceRateLimit, err = strconv.ParseFloat(getEnv("PRICE_RATE_LIMIT", "10"), 64); err != nil {
		return nil, fmt.Errorf("config: PRICE_RATE_LIMIT: %w", err)
	}
	if cfg.PriceRateBurst, err = strconv.Atoi(getEnv("PRICE_RATE_BURST", "20")); err != nil {
		return nil, fmt.Errorf("config: PRICE_RATE_BURST: %w", err)
	}
	if cfg.PaymentLimitMinor, err = strconv.ParseInt(getEnv("PAYMENT_FAKE_LIMIT_MINOR", "100000"), 10, 64); err != nil {
		return nil, fmt.Errorf("config: PAYMENT_FAKE_LIMIT_MINOR: %w", err)
	}
	if cfg.DeliverySource != SettingsFromEnv && cfg.DeliverySource != SettingsFromRedis {
		return nil, fmt.Errorf("config: DELIVERY_SETTINGS_SOURCE must be %q or %q, got %q",
			SettingsFromEnv, SettingsFromRedis, cfg.DeliverySource)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
