package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "backend")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "backend", cfg.Storage.Provider)
	assert.Equal(t, "*/30 * * * *", cfg.Tasks.SweepSchedule)
	assert.True(t, cfg.Tasks.Enabled)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "ftp")

	_, err := Load()
	assert.Error(t, err)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "s3")
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("SESSION_TTL", "forever")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Database.Enabled())
}
