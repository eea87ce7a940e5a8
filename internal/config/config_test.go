package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "canned", cfg.LLM.DefaultProvider)
	assert.Equal(t, time.Second, cfg.LLM.Canned.Latency)
	assert.Equal(t, "https://meet.jit.si", cfg.Meeting.BaseURL)
	assert.True(t, cfg.Demo.Seed)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9090\nstorage:\n  backend: sqlite\nsqlite:\n  path: /tmp/hubs.db\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("DEEPSEEK_API_KEY", "ds-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/hubs.db", cfg.SQLite.Path)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "ant-key", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "ds-key", cfg.LLM.DeepSeek.APIKey)
	assert.Equal(t, "deepseek-chat", cfg.LLM.DeepSeek.Model)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, Database: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", db.DSN())

	my := MySQLConfig{User: "u", Password: "p", Host: "h", Port: 3306, Database: "d", TLS: true}
	assert.Equal(t, "u:p@tcp(h:3306)/d?parseTime=true&tls=true", my.DSN())

	assert.Equal(t, "h:6379", RedisConfig{Host: "h", Port: 6379}.Addr())
}
