// Package config loads the craftstat configuration file.
//
// Configuration lives at ~/.config/craftstat/config.toml (or the path given
// via --config). A missing file is not an error; every field has a default
// so the tool works out of the box.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the user-tunable settings shared by the CLI and the proxy
// server.
type Config struct {
	// BindAddr is the listen address for the serve command.
	BindAddr string

	// TTL is how long lookup results stay fresh.
	TTL time.Duration

	// Timeout bounds a single upstream request.
	Timeout time.Duration

	// Retries is the number of extra attempts on transient upstream
	// failures. Negative disables retrying.
	Retries int

	// BaseURL overrides the upstream API endpoint.
	BaseURL string

	// UserAgent overrides the HTTP User-Agent sent upstream.
	UserAgent string

	// RedisURL selects a shared Redis cache backend when set. Empty means
	// the local file cache.
	RedisURL string
}

const (
	defaultConfigPath = "~/.config/craftstat/config.toml"
	defaultBindAddr   = "127.0.0.1:8632"
	defaultTTLSecs    = 10
	defaultTimeoutSec = 5
)

// rawConfig mirrors the on-disk TOML shape. Durations are plain seconds so
// the file stays trivial to write by hand.
type rawConfig struct {
	BindAddr       string `toml:"bind_addr"`
	TTLSeconds     int    `toml:"ttl_seconds"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Retries        *int   `toml:"retries"`
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	RedisURL       string `toml:"redis_url"`
}

// Load locates and parses the config file, falling back to defaults when it
// does not exist.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BindAddr: defaultBindAddr,
		TTL:      defaultTTLSecs * time.Second,
		Timeout:  defaultTimeoutSec * time.Second,
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if addr := strings.TrimSpace(raw.BindAddr); addr != "" {
		cfg.BindAddr = addr
	}
	if raw.TTLSeconds > 0 {
		cfg.TTL = time.Duration(raw.TTLSeconds) * time.Second
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.Retries != nil {
		cfg.Retries = *raw.Retries
	}
	cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
	cfg.UserAgent = strings.TrimSpace(raw.UserAgent)
	cfg.RedisURL = strings.TrimSpace(raw.RedisURL)

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
