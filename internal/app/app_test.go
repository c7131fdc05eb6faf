package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/immxrtalbeast/roomrent/internal/config"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesMemoryStoreLocally(t *testing.T) {
	cfg := &config.Config{Env: envLocal}
	cfg.Events.Buffer = 4
	cfg.Visibility.Concurrency = 2

	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.IsType(t, &repository.InMemoryRoomRepository{}, a.Store.Rooms)
	assert.NoError(t, a.Migrate())
	assert.NoError(t, a.Close())
}

func TestNewRequiresDSNOutsideLocal(t *testing.T) {
	_, err := New(&config.Config{Env: envProd}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	for _, env := range []string{envLocal, envDev, envProd, "staging"} {
		assert.NotNil(t, SetupLogger(env))
	}
}
