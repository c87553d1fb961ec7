// Package config loads turnguard's process configuration from a YAML file
// with environment-based secret resolution. Secrets themselves never appear
// in the file; the file names the environment variable that holds them.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full process configuration.
type Config struct {
	// Provider selects the generation backend: openai, anthropic or mock.
	Provider string `yaml:"provider"`
	// Model is the provider-specific model identifier; empty uses the
	// adapter default.
	Model string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the provider key.
	APIKeyEnv string `yaml:"api_key_env"`

	MaxTokens   int64   `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	// HTTPAddr is the listen address of the HTTP collaborator.
	HTTPAddr string `yaml:"http_addr"`
	// StorePath is the SQLite database path; empty selects the in-memory
	// store.
	StorePath string `yaml:"store_path"`

	// MaxHistoryTurns bounds the context window handed to the agents.
	MaxHistoryTurns int `yaml:"max_history_turns"`
	// TurnTimeout is the overall per-turn deadline.
	TurnTimeout time.Duration `yaml:"turn_timeout"`

	// Denylist replaces the built-in keyword denylist when non-empty.
	Denylist []string `yaml:"denylist"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Provider:        "openai",
		APIKeyEnv:       "OPENAI_API_KEY",
		MaxTokens:       1024,
		Temperature:     0.7,
		HTTPAddr:        ":8080",
		MaxHistoryTurns: 10,
		TurnTimeout:     60 * time.Second,
	}
}

// Load reads and validates a configuration file, layering it over the
// defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.TurnTimeout <= 0 {
		return fmt.Errorf("turn_timeout must be positive")
	}
	if c.MaxHistoryTurns < 0 {
		return fmt.Errorf("max_history_turns must not be negative")
	}
	return nil
}

// APIKey resolves the provider key from the environment. The mock provider
// needs none.
func (c Config) APIKey() (string, error) {
	if c.Provider == "mock" {
		return "", nil
	}
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s not set in environment", c.APIKeyEnv)
	}
	return key, nil
}
