package config

import (
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "GRPC_PORT", "DELIVERY_SETTINGS_SOURCE", "BUILDER_STRICT_OPTIONS",
		"CORS_ALLOWED_ORIGINS", "PAYMENT_FAKE_LIMIT_MINOR", "PRICE_RATE_LIMIT", "PRICE_RATE_BURST", "TRUST_PROXY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.GRPCPort != "9090" {
		t.Errorf("ports = %s/%s", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.DeliverySource != SettingsFromEnv {
		t.Errorf("delivery source = %q", cfg.DeliverySource)
	}
	if cfg.BuilderStrictOptions {
		t.Error("strict options should default to false")
	}
	if cfg.TrustProxy {
		t.Error("proxy headers should not be trusted by default")
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"*"}) {
		t.Errorf("cors origins = %v", cfg.CORSOrigins)
	}
	if cfg.PaymentLimitMinor != 100000 {
		t.Errorf("payment limit = %d", cfg.PaymentLimitMinor)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "3000")
	t.Setenv("BUILDER_STRICT_OPTIONS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, http://localhost:3000,")
	t.Setenv("DELIVERY_SETTINGS_SOURCE", "REDIS")
	t.Setenv("DELIVERY_HOME_LAT", "33.4942")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "3000" || !cfg.BuilderStrictOptions {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.DeliverySource != SettingsFromRedis || cfg.DeliveryHomeLat != "33.4942" {
		t.Errorf("delivery = %q %q", cfg.DeliverySource, cfg.DeliveryHomeLat)
	}
	want := []string{"https://shop.example.com", "http://localhost:3000"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("cors origins = %v, want %v", cfg.CORSOrigins, want)
	}
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	tests := map[string]string{
		"BUILDER_STRICT_OPTIONS":   "maybe",
		"PRICE_RATE_LIMIT":         "fast",
		"PRICE_RATE_BURST":         "1.5",
		"TRUST_PROXY":              "sometimes",
		"PAYMENT_FAKE_LIMIT_MINOR": "lots",
		"DELIVERY_SETTINGS_SOURCE": "postgres",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", key, value)
			}
		})
	}
}
