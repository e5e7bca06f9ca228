package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the client configuration, read from config.toml.
type Config struct {
	DataDir string     `toml:"data_dir"`
	API     APIConfig  `toml:"api"`
	Sync    SyncConfig `toml:"sync"`
}

// APIConfig locates the back-office support API.
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	Token     string `toml:"token"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// SyncConfig tunes the poll and probe loops.
type SyncConfig struct {
	PollIntervalMS  int `toml:"poll_interval_ms"`
	ProbeIntervalMS int `toml:"probe_interval_ms"`
}

// DefaultPath returns ~/.deskchat/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".deskchat", "config.toml")
}

// Load reads config from the given path and applies defaults for anything
// left unset. The API base URL is the only required field.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults(filepath.Dir(path))
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("config %s: api.base_url is required", path)
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

func (c *Config) applyDefaults(configDir string) {
	if c.DataDir == "" {
		c.DataDir = configDir
	}
	if c.API.TimeoutMS <= 0 {
		c.API.TimeoutMS = 10_000
	}
	if c.Sync.PollIntervalMS <= 0 {
		c.Sync.PollIntervalMS = 3_000
	}
	if c.Sync.ProbeIntervalMS <= 0 {
		c.Sync.ProbeIntervalMS = 5_000
	}
}

// Timeout returns the API request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutMS) * time.Millisecond
}

// PollInterval returns the delta-fetch interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Sync.PollIntervalMS) * time.Millisecond
}

// ProbeInterval returns the connectivity probe interval.
func (c *Config) ProbeInterval() time.Duration {
	return time.Duration(c.Sync.ProbeIntervalMS) * time.Millisecond
}
