package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/meeting-buddy/internal/config"
)

func TestKV_InMemory(t *testing.T) {
	ctx := context.Background()
	kv, err := New(ctx, ":memory:")
	require.NoError(t, err)
	defer kv.Close()

	assert.Equal(t, "sqlite", kv.Name())

	_, ok, err := kv.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "auth_token", "first"))
	require.NoError(t, kv.Set(ctx, "auth_token", "second"))

	value, ok, err := kv.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)

	require.NoError(t, kv.Remove(ctx, "auth_token"))
	_, ok, err = kv.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_FilePersists(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "hubs.db")}}

	first, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "app_data_x", `{"hubs":[]}`))
	require.NoError(t, first.HealthCheck(ctx))
	require.NoError(t, first.Close())

	second, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer second.Close()

	value, ok, err := second.Get(ctx, "app_data_x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"hubs":[]}`, value)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(context.Background(), "")
	assert.Error(t, err)
}
