package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "caisse_session", cfg.ReportPrefix)
	assert.Equal(t, 30, cfg.ReportRetentionDays)
	assert.False(t, cfg.SyncEnabled)
	assert.Equal(t, 3, cfg.SyncMaxRetries)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SYNC_ENABLED", "true")
	t.Setenv("SYNC_INTERVAL_SECONDS", "60")
	t.Setenv("DOWNLOAD_TOKEN_TTL_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.SyncEnabled)
	assert.Equal(t, time.Minute, cfg.SyncInterval())
	assert.Equal(t, 2*time.Minute, cfg.DownloadTokenTTL())
}

func TestDownloadTokenTTLFloor(t *testing.T) {
	cfg := &Config{DownloadTokenTTLSecs: 5}
	assert.Equal(t, time.Minute, cfg.DownloadTokenTTL())

	cfg.DownloadTokenTTLSecs = 0
	assert.Equal(t, time.Minute, cfg.DownloadTokenTTL())

	cfg.DownloadTokenTTLSecs = 600
	assert.Equal(t, 10*time.Minute, cfg.DownloadTokenTTL())
}
