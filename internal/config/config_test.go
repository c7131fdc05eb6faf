package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadPathDefaults(t *testing.T) {
	cfg, err := LoadPath(writeConfig(t, "env: dev\n"))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 5, cfg.Billing.DueDay)
	assert.Equal(t, 5, cfg.Billing.GraceDays)
	assert.Equal(t, time.Hour, cfg.Billing.SweepInterval)
	assert.Equal(t, 8, cfg.Visibility.Concurrency)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestLoadPathEnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_DSN", "host=db user=rent")

	cfg, err := LoadPath(writeConfig(t, "auth:\n  jwt_secret: from-file\nbilling:\n  due_day: 40\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "host=db user=rent", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.Billing.DueDay)
}

func TestLoadPathMissingFile(t *testing.T) {
	_, err := LoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
