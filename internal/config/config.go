// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8080"
	defaultAllowedOrigins = "http://localhost:5173,http://localhost:3000"
	defaultTimeout        = 10 * time.Second
	defaultMinInterval    = 2 * time.Second
)

// ErrMissingDatabaseURL is returned by RequireDatabase when DATABASE_URL is unset.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")

// Config is the process configuration.
type Config struct {
	DatabaseURL string
	Port        string

	PolygonAPIKey      string
	AlphaVantageAPIKey string
	FinnhubAPIKey      string

	AllowedOrigins []string

	LogLevel string
	LogFile  string

	UpstreamTimeout      time.Duration
	EstimatesMinInterval time.Duration
}

// Load reads a .env file when present, then the environment. A missing .env
// is not an error; the returned bool reports whether one was loaded.
func Load() (*Config, bool, error) {
	loaded := godotenv.Load() == nil

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Port:               getenv("PORT", defaultPort),
		PolygonAPIKey:      strings.TrimSpace(os.Getenv("POLYGON_API_KEY")),
		AlphaVantageAPIKey: strings.TrimSpace(os.Getenv("ALPHA_VANTAGE_API_KEY")),
		FinnhubAPIKey:      strings.TrimSpace(os.Getenv("FINNHUB_API_KEY")),
		AllowedOrigins:     splitList(getenv("ALLOWED_ORIGINS", defaultAllowedOrigins)),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.UpstreamTimeout, err = duration("UPSTREAM_TIMEOUT", defaultTimeout); err != nil {
		return nil, loaded, err
	}
	if cfg.EstimatesMinInterval, err = duration("ESTIMATES_MIN_INTERVAL", defaultMinInterval); err != nil {
		return nil, loaded, err
	}
	return cfg, loaded, nil
}

// RequireDatabase fails when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

// AllowAllOrigins reports whether ALLOWED_ORIGINS is the wildcard.
func (c *Config) AllowAllOrigins() bool {
	return len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == "*"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parsing %s: negative duration %s", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
