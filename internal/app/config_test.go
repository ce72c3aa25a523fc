package app

import (
	"errors"
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "UPSTREAM_TIMEOUT_SECONDS",
		"CATALOG_USER_AGENT", "TMDB_API_KEY", "TMDB_BASE_URL", "TMDB_LANGUAGE",
		"TMDB_WATCH_REGION", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"TRAILER_CONCURRENCY",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_TRACE_SAMPLE_RATIO",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadConfig()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"HTTPAddr", cfg.HTTPAddr, ":8080"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "text"},
		{"UpstreamTimeout", cfg.UpstreamTimeout, 10 * time.Second},
		{"TMDBAPIKey", cfg.TMDBAPIKey, ""},
		{"TMDBBaseURL", cfg.TMDBBaseURL, "https://api.themoviedb.org/3"},
		{"TMDBLanguage", cfg.TMDBLanguage, "en-US"},
		{"WatchRegion", cfg.WatchRegion, "US"},
		{"RateLimitRPS", cfg.RateLimitRPS, 50.0},
		{"RateLimitBurst", cfg.RateLimitBurst, 100},
		{"TrailerWorkers", cfg.TrailerWorkers, 10},
		{"OTLPEndpoint", cfg.OTLPEndpoint, ""},
		{"TraceSampleRatio", cfg.TraceSampleRatio, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", tt.got, tt.got, tt.want, tt.want)
			}
		})
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "3")
	t.Setenv("TMDB_API_KEY", "  secret  ")
	t.Setenv("TMDB_WATCH_REGION", "gb")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := LoadConfig()
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("log settings = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.UpstreamTimeout != 3*time.Second {
		t.Errorf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
	if cfg.TMDBAPIKey != "secret" {
		t.Errorf("TMDBAPIKey = %q", cfg.TMDBAPIKey)
	}
	if cfg.WatchRegion != "GB" {
		t.Errorf("WatchRegion = %q", cfg.WatchRegion)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("RateLimitRPS = %v", cfg.RateLimitRPS)
	}
}

func TestLoadConfigInvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "-4")
	t.Setenv("RATE_LIMIT_BURST", "many")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg := LoadConfig()
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
	if cfg.RateLimitBurst != 100 {
		t.Errorf("RateLimitBurst = %d", cfg.RateLimitBurst)
	}
	if cfg.RateLimitRPS != 50 {
		t.Errorf("RateLimitRPS = %v", cfg.RateLimitRPS)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	if err := (Config{}).Validate(); !errors.Is(err, ErrMissingTMDBAPIKey) {
		t.Fatalf("expected ErrMissingTMDBAPIKey, got %v", err)
	}
	if err := (Config{TMDBAPIKey: "k"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
