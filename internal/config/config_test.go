package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config.yaml present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "reviewpulse.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 10, cfg.BestBuy.PageSize)
	assert.Equal(t, 1000, cfg.BestBuy.PageDelayMS)
	assert.Equal(t, "https://api.bestbuy.com/v1", cfg.BestBuy.BaseURL)
	assert.Equal(t, "https://api.scraperapi.com", cfg.ScraperAPI.BaseURL)
	assert.Equal(t, 3, cfg.ScraperAPI.Retries)
	assert.Equal(t, 2, cfg.Ebay.MaxPages)
	assert.False(t, cfg.Summary.Disabled)
	assert.Equal(t, 150, cfg.Summary.MaxReviews)
	assert.Equal(t, 120000, cfg.Summary.MaxChars)
	assert.Equal(t, 2500, cfg.Summary.ChunkSize)
	assert.Equal(t, 1500, cfg.Summary.FallbackChars)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REVIEWPULSE_STORE_DRIVER", "postgres")
	t.Setenv("REVIEWPULSE_BESTBUY_API_KEY", "test-key")
	t.Setenv("REVIEWPULSE_SUMMARY_DISABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "test-key", cfg.BestBuy.APIKey)
	assert.True(t, cfg.Summary.Disabled)
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
}
