package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var ErrMissingTMDBAPIKey = errors.New("TMDB_API_KEY is required")

type Config struct {
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	UpstreamTimeout  time.Duration
	UserAgent        string
	TMDBAPIKey       string
	TMDBBaseURL      string
	TMDBLanguage     string
	WatchRegion      string
	RateLimitRPS     float64
	RateLimitBurst   int
	TrailerWorkers   int
	OTLPEndpoint     string
	TraceSampleRatio float64
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),
		UpstreamTimeout:  time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,
		UserAgent:        getEnv("CATALOG_USER_AGENT", "catalog-browser/1.0"),
		TMDBAPIKey:       strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		TMDBBaseURL:      getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBLanguage:     getEnv("TMDB_LANGUAGE", "en-US"),
		WatchRegion:      strings.ToUpper(getEnv("TMDB_WATCH_REGION", "US")),
		RateLimitRPS:     getEnvFloat("RATE_LIMIT_RPS", 50),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 100),
		TrailerWorkers:   getEnvInt("TRAILER_CONCURRENCY", 10),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSampleRatio: getEnvFloat("OTEL_TRACE_SAMPLE_RATIO", 1),
	}
}

// Validate reports configuration the service cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.TMDBAPIKey) == "" {
		return ErrMissingTMDBAPIKey
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
