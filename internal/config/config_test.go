package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "PORT", "POLYGON_API_KEY", "ALPHA_VANTAGE_API_KEY", "FINNHUB_API_KEY",
		"ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FILE", "UPSTREAM_TIMEOUT", "ESTIMATES_MIN_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, _, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.AllowAllOrigins())
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 2*time.Second, cfg.EstimatesMinInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.PolygonAPIKey)
	assert.ErrorIs(t, cfg.RequireDatabase(), ErrMissingDatabaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/stocks")
	t.Setenv("PORT", "9000")
	t.Setenv("POLYGON_API_KEY", " pk ")
	t.Setenv("ALLOWED_ORIGINS", "*")
	t.Setenv("UPSTREAM_TIMEOUT", "15s")
	t.Setenv("ESTIMATES_MIN_INTERVAL", "500ms")

	cfg, _, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireDatabase())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "pk", cfg.PolygonAPIKey)
	assert.True(t, cfg.AllowAllOrigins())
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.EstimatesMinInterval)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	_, _, err := Load()
	assert.ErrorContains(t, err, "UPSTREAM_TIMEOUT")

	t.Setenv("UPSTREAM_TIMEOUT", "-1s")
	_, _, err = Load()
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(""))
}
