package src

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.RedisConfig.Host)
	assert.Equal(t, 6379, cfg.RedisConfig.Port)
	assert.Equal(t, 0, cfg.RedisConfig.DB)
	assert.Equal(t, "backup_redis.json", cfg.ExportConfig.Output)
	assert.Equal(t, "*", cfg.ExportConfig.Match)
	assert.Equal(t, "  ", cfg.ExportConfig.Indent)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
redis:
  host: cache.internal
  port: 6380
  dial_timeout: 2s
export:
  output: /var/backups/redis.json
  match: "user:*"
`), 0644))

	t.Setenv("REDIS_PORT", "6390")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// file over defaults
	assert.Equal(t, "cache.internal", cfg.RedisConfig.Host)
	assert.Equal(t, 2*time.Second, cfg.RedisConfig.DialTimeout)
	assert.Equal(t, "/var/backups/redis.json", cfg.ExportConfig.Output)
	assert.Equal(t, "user:*", cfg.ExportConfig.Match)
	// environment over file
	assert.Equal(t, 6390, cfg.RedisConfig.Port)
	assert.Equal(t, 4, cfg.RedisConfig.DB)
	assert.Equal(t, "debug", cfg.LogConfig.Level)
	// untouched defaults
	assert.Equal(t, int64(100), cfg.ExportConfig.ScanCount)
}

func TestLoadConfigBadEnv(t *testing.T) {
	t.Setenv("REDIS_PORT", "not-a-number")

	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "error processing environment configuration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"port", func(c *Config) { c.RedisConfig.Port = 70000 }, "out of range"},
		{"db", func(c *Config) { c.RedisConfig.DB = -1 }, "must not be negative"},
		{"output", func(c *Config) { c.ExportConfig.Output = "" }, "output path"},
		{"scan count", func(c *Config) { c.ExportConfig.ScanCount = 0 }, "scan count"},
		{"retries", func(c *Config) { c.ExportConfig.ReadRetries = -2 }, "read retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}

	t.Run("url skips host checks", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RedisConfig.URL = "redis://localhost:6379/0"
		cfg.RedisConfig.Port = 0
		assert.NoError(t, cfg.Validate())
	})
}
