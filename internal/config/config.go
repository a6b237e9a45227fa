// Package config handles NEXO configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/nexo/config.yaml, /etc/nexo/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "nexo", "config.yaml"))
	}

	paths = append(paths, "/etc/nexo/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all NEXO configuration.
type Config struct {
	Listen   ListenConfig `yaml:"listen"`
	OpenAI   OpenAIConfig `yaml:"openai"`
	Agent    AgentConfig  `yaml:"agent"`
	Auth     AuthConfig   `yaml:"auth"`
	DataDir  string       `yaml:"data_dir" validate:"required"`
	LogLevel string       `yaml:"log_level"`
}

// ListenConfig defines the API server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port" validate:"gte=0,lte=65535"`
}

// OpenAIConfig defines the language-model provider settings.
type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key" validate:"required"`
	BaseURL     string  `yaml:"base_url"` // Default: https://api.openai.com/v1
	Model       string  `yaml:"model"`    // Default: gpt-4o-mini
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
}

// AgentConfig defines the analysis agent settings.
type AgentConfig struct {
	// SystemPrompt overrides the built-in NEXO persona and formatting
	// instructions. Leave empty to use the default.
	SystemPrompt string `yaml:"system_prompt"`
	// MaxIterations caps model round-trips per query (default 5).
	MaxIterations int `yaml:"max_iterations" validate:"gte=0,lte=20"`
	// HistoryLimit is the default page size for history listing (default 50).
	HistoryLimit int `yaml:"history_limit" validate:"gte=0"`
}

// AuthConfig defines session settings.
type AuthConfig struct {
	// SessionTTLMinutes is how long a login session stays valid (default 480).
	SessionTTLMinutes int `yaml:"session_ttl_minutes" validate:"gte=0"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables so secrets can live outside the file.
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.LogLevel != "" {
		if _, err := ParseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Port: 8080},
		OpenAI: OpenAIConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   2000,
		},
		Agent: AgentConfig{
			MaxIterations: 5,
			HistoryLimit:  50,
		},
		Auth: AuthConfig{
			SessionTTLMinutes: 480,
		},
		DataDir: "./data",
	}
}
