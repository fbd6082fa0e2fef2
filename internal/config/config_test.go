package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Setenv("JOB_SOURCE", "")
	t.Setenv("REDIS_URL", "")

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, SourceAPI, cfg.Source.Kind)
	assert.Equal(t, "jobsdata", cfg.API.JobsField)
	assert.Equal(t, 500*time.Millisecond, cfg.Filters.DebounceDelay)
	assert.False(t, cfg.Cache.Enabled)
}

func TestDefaultConfigReadsEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JOBS_URL", "http://localhost:3000/api/alljobs")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg := DefaultConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000/api/alljobs", cfg.API.JobsURL)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadConfigMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API, cfg.API)
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
source:
  kind: supabase
  supabase_url: https://example.supabase.co
  supabase_key: anon
filters:
  debounce_delay: 250ms
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, SourceSupabase, cfg.Source.Kind)
	assert.Equal(t, 250*time.Millisecond, cfg.Filters.DebounceDelay)
	assert.Equal(t, "jobs", cfg.Source.SupabaseTable)
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Apply.RateLimit = 3

	require.NoError(t, cfg.SaveConfig(path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to decode config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server port"},
		{"unknown source", func(c *Config) { c.Source.Kind = "ftp" }, "unknown job source"},
		{"supabase without url", func(c *Config) {
			c.Source.Kind = SourceSupabase
			c.Source.SupabaseURL = ""
		}, "supabase URL is required"},
		{"relative jobs url", func(c *Config) { c.API.JobsURL = "/api/alljobs" }, "jobs URL is not a valid URL"},
		{"cache without redis", func(c *Config) {
			c.Cache.Enabled = true
			c.Cache.RedisURL = ""
		}, "redis URL is required"},
		{"negative debounce", func(c *Config) { c.Filters.DebounceDelay = -time.Second }, "debounce delay"},
		{"no token file", func(c *Config) { c.Auth.TokenFile = "" }, "token file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Source.Kind = SourceAPI
			tt.edit(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
