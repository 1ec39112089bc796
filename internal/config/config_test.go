package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "onboard.yaml", `
http:
  addr: ":9000"
store:
  driver: redis
  redis:
    addr: redis:6379
    db: 2
organization:
  timezone: Europe/Lisbon
`)
	writeFile(t, dir, ".env", "ONBOARD_LOG_LEVEL=debug\nONBOARD_REDIS_PREFIX=acme:\n")
	t.Setenv("ONBOARD_REDIS_PREFIX", "tenant:")
	t.Setenv("ONBOARD_ORGANIZATION_NEW_HIRE_EMAIL", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "Europe/Lisbon", cfg.Organization.Timezone)
	assert.Equal(t, "Onboard", cfg.Organization.Name, "defaults survive a partial file")
	assert.Equal(t, "tenant:", cfg.Store.Redis.Prefix, "the environment wins over .env")
	assert.True(t, cfg.Organization.NewHireEmail)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestApplyEnv_InvalidNumbers(t *testing.T) {
	cfg := Default()
	lookup := func(key string) (string, bool) {
		if key == EnvPrefix+"REDIS_DB" {
			return "two", true
		}
		return "", false
	}
	assert.ErrorContains(t, applyEnv(&cfg, lookup), "ONBOARD_REDIS_DB")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"Defaults", func(*Config) {}, ""},
		{"Unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, `unknown store driver "sqlite"`},
		{"Postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, "dsn is required"},
		{"Redis outbox on memory store", func(c *Config) { c.Dispatch.Driver = "redis" }, "needs the redis store"},
		{"Bad log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.errMsg)
			}
		})
	}
}
