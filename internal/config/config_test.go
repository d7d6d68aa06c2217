package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Address())
	}
	if cfg.IdempotencyTTL != defaultIdempotencyTTL {
		t.Fatalf("expected default idempotency ttl, got %s", cfg.IdempotencyTTL)
	}
	if cfg.SealKey != nil {
		t.Fatalf("expected no seal key")
	}
}

func TestLoadProductionRequiresBackends(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestLoadDurationsAndSealKey(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("IDEMPOTENCY_TTL", "90m")
	t.Setenv("SESSION_SEAL_KEY", strings.Repeat("ab", 32))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s shutdown, got %s", cfg.ShutdownPeriod)
	}
	if cfg.IdempotencyTTL != 90*time.Minute {
		t.Fatalf("expected 90m ttl, got %s", cfg.IdempotencyTTL)
	}
	if len(cfg.SealKey) != 32 {
		t.Fatalf("expected 32 byte key, got %d", len(cfg.SealKey))
	}
}

func TestLoadRejectsShortSealKey(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_SEAL_KEY", "abcd")

	if _, err := Load(); err == nil {
		t.Fatal("expected seal key length error")
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("WALLET_API_BASE_URL", "http://wallet.local/api/")
	t.Setenv("WALLET_TOKEN_STORE", "file")
	t.Setenv("WALLET_TOKEN_STORE_PATH", "/tmp/tokens.json")
	t.Setenv("WALLET_HTTP_TIMEOUT", "5s")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if cfg.APIBaseURL != "http://wallet.local/api" {
		t.Fatalf("expected trimmed base url, got %s", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.HTTPTimeout)
	}
}

func TestLoadClientRedisRequiresURL(t *testing.T) {
	t.Setenv("WALLET_TOKEN_STORE", "redis")
	t.Setenv("REDIS_URL", "")

	if _, err := LoadClient(); err == nil {
		t.Fatal("expected REDIS_URL error")
	}
}
