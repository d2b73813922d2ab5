package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docify/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "docify", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "docify", cfg.Redis.Prefix)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Fetch.AttemptTimeout)
	assert.Equal(t, 10000, cfg.Fetch.SparseThreshold)
	assert.Equal(t, 10, cfg.Crawl.MaxPages)
	assert.False(t, cfg.Crawl.Enabled)
	assert.Equal(t, "@every 1m", cfg.Reconciler.Schedule)
	assert.Equal(t, 10*time.Minute, cfg.Reconciler.StaleAfter)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "sk-test", cfg.Anthropic.APIKey)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Logger.Level)
}
