package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("load defaults failed: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg.Server)
	}
	if cfg.Security.CouponRateLimit.MaxAttempts != 30 || cfg.Security.CouponRateLimit.BlockSeconds != 300 {
		t.Fatalf("unexpected coupon rate limit: %+v", cfg.Security.CouponRateLimit)
	}
	if cfg.Queue.Queues["critical"] != 6 {
		t.Fatalf("critical queue weight want 6 got %d", cfg.Queue.Queues["critical"])
	}
	if cfg.Database.PoolOptions().SlowThresholdMillis != 200 {
		t.Fatalf("slow threshold want 200 got %d", cfg.Database.PoolOptions().SlowThresholdMillis)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "server:\n  port: \"9090\"\n  mode: Release\ncoupon:\n  reconcile_interval_minutes: 5\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("ORDER_PAYMENT_EXPIRE_MINUTES", "45")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "9090" || !cfg.IsRelease() {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	if cfg.Coupon.ReconcileIntervalMinutes != 5 {
		t.Fatalf("reconcile interval want 5 got %d", cfg.Coupon.ReconcileIntervalMinutes)
	}
	if cfg.Order.PaymentExpireMinutes != 45 {
		t.Fatalf("env override want 45 got %d", cfg.Order.PaymentExpireMinutes)
	}
}

func TestLoadFromBrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	if _, err := LoadFrom(dir); err == nil {
		t.Fatalf("broken yaml should fail")
	}
}

func TestValidate(t *testing.T) {
	strong := strings.Repeat("k", 40)
	base := func() *Config {
		cfg := &Config{}
		cfg.Server.Mode = "debug"
		cfg.Order.PaymentExpireMinutes = 15
		cfg.JWT.SecretKey = strong
		cfg.UserJWT.SecretKey = strong + "u"
		return cfg
	}

	if warnings, err := base().Validate(); err != nil || len(warnings) != 0 {
		t.Fatalf("valid config want no warnings got %v %v", warnings, err)
	}

	weak := base()
	weak.JWT.SecretKey = "change-me-in-production"
	warnings, err := weak.Validate()
	if err != nil || len(warnings) != 1 {
		t.Fatalf("debug weak secret want 1 warning got %v %v", warnings, err)
	}
	weak.Server.Mode = "release"
	if _, err := weak.Validate(); err == nil {
		t.Fatalf("release weak secret should fail")
	}

	shared := base()
	shared.UserJWT.SecretKey = shared.JWT.SecretKey
	if warnings, _ := shared.Validate(); len(warnings) != 1 {
		t.Fatalf("shared secret want 1 warning got %v", warnings)
	}

	badMode := base()
	badMode.Server.Mode = "prod"
	if _, err := badMode.Validate(); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	noExpiry := base()
	noExpiry.Order.PaymentExpireMinutes = 0
	if _, err := noExpiry.Validate(); err == nil {
		t.Fatalf("zero payment expiry should fail")
	}
}
