package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://fantasy.premierleague.com/api", cfg.API.BaseURL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "data/raw", cfg.Store.Root)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
store:
  backend: redis
  redis_addr: redis:6379
league:
  id: 892307
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 892307, cfg.League.ID)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Store.Backend = "postgres"
	assert.Error(t, cfg.Validate(), "unknown store backend")

	cfg = base()
	cfg.Store.Backend = "redis"
	cfg.Store.RedisAddr = ""
	assert.Error(t, cfg.Validate(), "redis backend without addr")

	cfg = base()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate(), "unknown log level")

	cfg = base()
	cfg.API.BaseURL = ""
	assert.Error(t, cfg.Validate(), "empty base url")
}
