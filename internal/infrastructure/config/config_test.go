package config

import (
	"testing"
	"time"

	"dishdash/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DISHDASH_STORAGE_BACKEND", BackendMemory)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "dishdash", cfg.App.Name)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "dishdash:", cfg.Storage.Prefix)
	assert.Equal(t, 8000, cfg.Stub.Port)
	assert.Equal(t, 24*time.Hour, cfg.Stub.TokenTTL)
	assert.Equal(t, time.Minute, cfg.Stub.RateLimit.Window)
	assert.False(t, cfg.Session.LogoutOnUnauthorized)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("DISHDASH_STORAGE_BACKEND", BackendMemory)
	t.Setenv("NEXT_PUBLIC_API_URL", "http://localhost:8000/api/v1")
	t.Setenv("DISHDASH_API_TIMEOUT", "5s")
	t.Setenv("DISHDASH_SESSION_LOGOUT_ON_UNAUTHORIZED", "true")
	t.Setenv("DISHDASH_STUB_PORT", "9001")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/v1", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Session.LogoutOnUnauthorized)
	assert.Equal(t, 9001, cfg.Stub.Port)
	assert.Equal(t, "s3cret", cfg.Stub.JWTSecret)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_PreferredAPIURL(t *testing.T) {
	t.Setenv("DISHDASH_STORAGE_BACKEND", BackendMemory)
	t.Setenv("DISHDASH_API_URL", "http://primary")
	t.Setenv("NEXT_PUBLIC_API_URL", "http://fallback")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://primary", cfg.API.URL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("DISHDASH_STORAGE_BACKEND", "tape")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func validConfig() *Config {
	return &Config{
		Storage: StorageConfig{Backend: BackendFile, Path: "/tmp/storage.json"},
		Stub:    StubConfig{Port: 8000},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "file without path", mutate: func(c *Config) { c.Storage.Path = "" }, wantErr: "storage path"},
		{name: "memory", mutate: func(c *Config) { c.Storage = StorageConfig{Backend: BackendMemory} }},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage = StorageConfig{Backend: BackendRedis} }, wantErr: "redis address"},
		{name: "negative timeout", mutate: func(c *Config) { c.API.Timeout = -time.Second }, wantErr: "api timeout"},
		{name: "no port", mutate: func(c *Config) { c.Stub.Port = 0 }, wantErr: "stub port"},
		{
			name: "rate limit without requests",
			mutate: func(c *Config) {
				c.Stub.RateLimit = RateLimitConfig{Enabled: true, Window: time.Minute}
			},
			wantErr: "rate limit requests",
		},
		{
			name: "rate limit without window",
			mutate: func(c *Config) {
				c.Stub.RateLimit = RateLimitConfig{Enabled: true, Requests: 10}
			},
			wantErr: "rate limit window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireAPIURL(t *testing.T) {
	cfg := &Config{}
	_, err := cfg.RequireAPIURL()
	assert.ErrorIs(t, err, common.ErrMissingAPIURL)

	cfg.API.URL = "   "
	_, err = cfg.RequireAPIURL()
	assert.ErrorIs(t, err, common.ErrMissingAPIURL)

	cfg.API.URL = "localhost:8000"
	_, err = cfg.RequireAPIURL()
	require.Error(t, err)
	assert.Equal(t, common.ErrCodeConfig, common.ErrorCode(err))

	cfg.API.URL = " http://localhost:8000/api/v1/ "
	u, err := cfg.RequireAPIURL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/v1", u)
}
