package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "quote-suggestions", cfg.App.Name)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DefaultClientTimeout, cfg.Client.Timeout)
	assert.Equal(t, "localhost", cfg.Cache.Host)
	assert.Equal(t, 6379, cfg.Cache.Port)
	assert.Equal(t, DefaultCacheTTLSeconds, cfg.Cache.TTLSeconds)
	assert.Equal(t, "https://en.wikiquote.org/w/api.php", cfg.Sources.Wikiquote.APIURL)
	assert.Equal(t, "en", cfg.Sources.Wikiquote.Locale)
	assert.Equal(t, "https://www.brainyquote.com", cfg.Sources.Brainyquote.BaseURL)
	assert.Equal(t, DefaultSuggestLimit, cfg.Suggest.DefaultLimit)
	assert.Equal(t, DefaultSuggestMaxLimit, cfg.Suggest.MaxLimit)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_LegacyEnvOverride(t *testing.T) {
	t.Setenv("DEFAULT_CACHE_TTL", "300")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	assert.Equal(t, "cache.internal", cfg.Cache.Host)
	assert.Equal(t, 6380, cfg.Cache.Port)
	assert.Equal(t, "cache.internal:6380", cfg.Cache.Addr())
}

func TestLoad_LegacyEnvBeatsAppPrefix(t *testing.T) {
	t.Setenv("APP_CACHE_HOST", "from-app-prefix")
	t.Setenv("REDIS_HOST", "from-legacy")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-legacy", cfg.Cache.Host)
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "invalid environment",
			mutate:  func(c *Config) { c.App.Environment = "staging" },
			wantMsg: "app.environment",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantMsg: "server.port",
		},
		{
			name:    "zero cache ttl",
			mutate:  func(c *Config) { c.Cache.TTLSeconds = 0 },
			wantMsg: "cache.ttlseconds",
		},
		{
			name:    "bad wikiquote url",
			mutate:  func(c *Config) { c.Sources.Wikiquote.APIURL = "not a url" },
			wantMsg: "sources.wikiquote",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)

			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
