// Package config handles gigspace configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for gigspace.
type Config struct {
	// API settings for the marketplace server.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Chat settings for the messaging synchronization engine.
	Chat ChatConfig `yaml:"chat" mapstructure:"chat"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Session settings.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// TUI settings.
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// APIConfig contains marketplace server settings.
type APIConfig struct {
	// BaseURL is the base URL of the marketplace API.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ChatConfig contains messaging engine settings.
type ChatConfig struct {
	// PollInterval is the period of the snapshot refresh loop.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`
}

// SessionConfig contains auth token cache settings.
type SessionConfig struct {
	// TokenFile is where the login tokens are cached.
	TokenFile string `yaml:"token_file" mapstructure:"token_file"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// ShowTimestamps shows timestamps next to messages.
	ShowTimestamps bool `yaml:"show_timestamps" mapstructure:"show_timestamps"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 15 * time.Second,
		},
		Chat: ChatConfig{
			PollInterval: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Session: SessionConfig{
			TokenFile: filepath.Join(homeDir, ".local", "share", "gigspace", "session.json"),
		},
		TUI: TUIConfig{
			Theme:          "default",
			ShowTimestamps: true,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout < time.Second {
		return fmt.Errorf("api.timeout must be at least 1s")
	}
	if c.Chat.PollInterval < time.Second {
		return fmt.Errorf("chat.poll_interval must be at least 1s")
	}
	if c.Session.TokenFile == "" {
		return fmt.Errorf("session.token_file is required")
	}
	return nil
}
