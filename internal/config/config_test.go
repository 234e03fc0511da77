package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store: sqlite
sqlite:
  path: /tmp/rules.db
redis:
  lock_ttl: 750ms
http:
  addr: ":9090"
log_level: debug
`), 0o644))

	t.Setenv("TUERULEBASE_HTTP_ADDR", ":7070")
	t.Setenv("TUERULEBASE_MAX_CODE_LENGTH", "32")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/rules.db", cfg.SQLite.Path)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, 32, cfg.MaxCodeLength)
	assert.Equal(t, "tuerulebase:", cfg.Redis.Prefix)
	assert.Equal(t, 750*time.Millisecond, cfg.Redis.LockTTL)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad store", func(t *testing.T) {
		t.Setenv("TUERULEBASE_STORE", "postgres")
		_, err := Load("")
		assert.ErrorContains(t, err, `unknown store "postgres"`)
	})

	t.Run("bad number", func(t *testing.T) {
		t.Setenv("TUERULEBASE_REDIS_DB", "one")
		_, err := Load("")
		assert.ErrorContains(t, err, "TUERULEBASE_REDIS_DB")
	})

	t.Run("bad lock ttl", func(t *testing.T) {
		t.Setenv("TUERULEBASE_REDIS_LOCK_TTL", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "TUERULEBASE_REDIS_LOCK_TTL")
	})

	t.Run("zero lock ttl", func(t *testing.T) {
		t.Setenv("TUERULEBASE_REDIS_LOCK_TTL", "0s")
		_, err := Load("")
		assert.ErrorContains(t, err, "lock_ttl must be positive")
	})

	t.Run("bad level", func(t *testing.T) {
		t.Setenv("TUERULEBASE_LOG_LEVEL", "loud")
		_, err := Load("")
		assert.ErrorContains(t, err, "invalid log level")
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TUERULEBASE_STORE":          "redis",
		"TUERULEBASE_REDIS_ADDR":     "cache:6379",
		"TUERULEBASE_REDIS_PASSWORD": "secret",
		"TUERULEBASE_REDIS_DB":       "3",
		"TUERULEBASE_REDIS_PREFIX":   "parts:",
		"TUERULEBASE_REDIS_LOCK_TTL": "2s",
		"TUERULEBASE_SEED":           "rules.yaml",
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, RedisConf{Addr: "cache:6379", Password: "secret", DB: 3, Prefix: "parts:", LockTTL: 2 * time.Second}, cfg.Redis)
	assert.Equal(t, "rules.yaml", cfg.Seed)
	assert.NoError(t, cfg.Validate())
}
