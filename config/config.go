package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ValidVendors is the set of vendor names the benchmark knows how to
// call, in the order they run.
var ValidVendors = []string{"openai", "gemini", "anthropic", "grok"}

type Config struct {
	// Providers
	OpenAIAPIKey    string
	GeminiAPIKey    string
	AnthropicAPIKey string
	GrokAPIKey      string

	// Observability
	OTELExporterType     string // "stdout" or "otlp"
	OTELExporterEndpoint string // default: "localhost:4317"

	// Pricing
	PricingFile string // optional YAML overriding built-in rates
	CacheType   string // Anthropic cache TTL class, default "5m"

	// Monitor
	MonitorAddr string // default: ":8080"

	// Retry
	MaxRetries     int           // default: 2
	RetryBaseDelay time.Duration // default: 1s
	RetryMaxDelay  time.Duration // default: 60s

	// Run defaults
	DefaultPrompt       string
	DefaultSystemPrompt string
	DefaultTrials       int // default: 3
}

func Load() (*Config, error) {
	// Load .env file if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		AnthropicAPIKey:      os.Getenv("ANTHROPIC_API_KEY"),
		GrokAPIKey:           os.Getenv("GROK_API_KEY"),
		OTELExporterType:     getEnv("OTEL_EXPORTER_TYPE", "stdout"),
		OTELExporterEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
		PricingFile:          os.Getenv("PRICING_FILE"),
		CacheType:            getEnv("CACHE_TYPE", "5m"),
		MonitorAddr:          getEnv("MONITOR_ADDR", ":8080"),
		DefaultPrompt:        getEnv("DEFAULT_PROMPT", "Explain the difference between latency and throughput in two sentences."),
		DefaultSystemPrompt:  os.Getenv("DEFAULT_SYSTEM_PROMPT"),
	}

	var err error
	if cfg.MaxRetries, err = getEnvInt("RETRY_MAX_RETRIES", 2); err != nil {
		return nil, err
	}
	if cfg.DefaultTrials, err = getEnvInt("DEFAULT_TRIALS", 3); err != nil {
		return nil, err
	}
	if cfg.RetryBaseDelay, err = getEnvDuration("RETRY_BASE_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryMaxDelay, err = getEnvDuration("RETRY_MAX_DELAY", 60*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// APIKey returns the key configured for a vendor name.
func (c *Config) APIKey(vendor string) string {
	switch vendor {
	case "openai":
		return c.OpenAIAPIKey
	case "gemini":
		return c.GeminiAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "grok":
		return c.GrokAPIKey
	}
	return ""
}

// HasValidKey reports whether the vendor's key looks usable. Keys left
// at the .env.example placeholder ("your-...") count as missing.
func (c *Config) HasValidKey(vendor string) bool {
	key := c.APIKey(vendor)
	return key != "" && !strings.HasPrefix(key, "your-")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
