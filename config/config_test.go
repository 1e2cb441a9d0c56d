package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CacheType != "5m" {
		t.Errorf("CacheType = %q, want 5m", cfg.CacheType)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.MaxRetries)
	}
	if cfg.RetryBaseDelay != time.Second || cfg.RetryMaxDelay != 60*time.Second {
		t.Errorf("retry delays = %v/%v", cfg.RetryBaseDelay, cfg.RetryMaxDelay)
	}
	if cfg.DefaultTrials != 3 {
		t.Errorf("DefaultTrials = %d, want 3", cfg.DefaultTrials)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RETRY_MAX_RETRIES", "5")
	t.Setenv("RETRY_BASE_DELAY", "250ms")
	t.Setenv("CACHE_TYPE", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RetryBaseDelay != 250*time.Millisecond {
		t.Errorf("RetryBaseDelay = %v, want 250ms", cfg.RetryBaseDelay)
	}
	if cfg.CacheType != "1h" {
		t.Errorf("CacheType = %q, want 1h", cfg.CacheType)
	}
}

func TestLoadInvalidInt(t *testing.T) {
	t.Setenv("RETRY_MAX_RETRIES", "many")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric RETRY_MAX_RETRIES")
	}
}

func TestHasValidKey(t *testing.T) {
	cfg := &Config{
		OpenAIAPIKey: "sk-real",
		GrokAPIKey:   "your-grok-api-key",
	}

	if !cfg.HasValidKey("openai") {
		t.Error("real key must be valid")
	}
	if cfg.HasValidKey("grok") {
		t.Error("placeholder key must be invalid")
	}
	if cfg.HasValidKey("anthropic") {
		t.Error("empty key must be invalid")
	}
	if cfg.HasValidKey("mistral") {
		t.Error("unknown vendor must be invalid")
	}
}
