package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Chat.PollInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
api:
  base_url: https://gigspace.example/api
chat:
  poll_interval: 10s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://gigspace.example/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Chat.PollInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset keys keep defaults.
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("GIGSPACE_API_BASE_URL", "https://env.example/api")

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/api", cfg.API.BaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "empty base URL",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "sub-second poll interval",
			mutate:  func(c *Config) { c.Chat.PollInterval = 200 * time.Millisecond },
			wantErr: true,
		},
		{
			name:    "sub-second timeout",
			mutate:  func(c *Config) { c.API.Timeout = 10 * time.Millisecond },
			wantErr: true,
		},
		{
			name:    "empty token file",
			mutate:  func(c *Config) { c.Session.TokenFile = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
