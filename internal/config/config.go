// Package config provides configuration loading for memview.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root memview configuration.
type Config struct {
	Memory       MemoryConfig       `koanf:"memory"`
	Registration RegistrationConfig `koanf:"registration"`
	Log          LogConfig          `koanf:"log"`
}

// MemoryConfig configures the MemMachine memory backend.
type MemoryConfig struct {
	// BaseURL is the root of the MemMachine HTTP API.
	BaseURL string `koanf:"base_url"`

	// EpisodicPath and ProfilePath are joined onto BaseURL for the two panels.
	EpisodicPath string `koanf:"episodic_path"`
	ProfilePath  string `koanf:"profile_path"`

	// Timeout bounds each request to the backend.
	Timeout time.Duration `koanf:"timeout"`
}

// RegistrationConfig configures MCP endpoint registration.
type RegistrationConfig struct {
	// ServerName is the name the endpoint is registered under.
	ServerName string `koanf:"server_name"`

	// BaseURL is the MCP endpoint (streamable HTTP) to register.
	BaseURL string `koanf:"base_url"`

	// Token is sent as an Authorization bearer header on the registered
	// server entry. Never logged in clear text.
	Token string `koanf:"token"`

	// Preflight dials the endpoint and lists tools before registering.
	Preflight bool `koanf:"preflight"`

	// SettingsPath overrides the fallback settings document location.
	SettingsPath string `koanf:"settings_path"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`

	// File receives log output. Empty means stderr; the TUI always
	// forces a file so log lines do not tear the panels.
	File string `koanf:"file"`
}

// Default returns the hardcoded defaults, before file and env overrides.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			BaseURL:      "http://localhost:8080",
			EpisodicPath: "/v1/memories/episodic",
			ProfilePath:  "/v1/memories/profile",
			Timeout:      30 * time.Second,
		},
		Registration: RegistrationConfig{
			ServerName: "memmachine",
			BaseURL:    "http://localhost:8001/mcp",
			Preflight:  true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validateURL("memory.base_url", c.Memory.BaseURL); err != nil {
		return err
	}
	if err := validateURL("registration.base_url", c.Registration.BaseURL); err != nil {
		return err
	}
	if c.Memory.Timeout <= 0 {
		return fmt.Errorf("memory.timeout must be > 0, got %s", c.Memory.Timeout)
	}
	if c.Registration.ServerName == "" {
		return fmt.Errorf("registration.server_name must not be empty")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console', got %q", c.Log.Format)
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL %q: %w", key, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: URL must be http or https, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: URL missing host: %q", key, raw)
	}
	return nil
}
