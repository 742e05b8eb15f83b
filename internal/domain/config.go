package domain

import (
	"fmt"
	"time"
)

// Config is the runtime configuration, loaded from a YAML file with
// environment variable overrides on top.
type Config struct {
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Server  ServerConfig  `yaml:"server"`
	History HistoryConfig `yaml:"history"`
}

// OpenAIConfig configures the audit generator.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model   string `yaml:"model" env:"OPENAI_MODEL"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`
}

// ServerConfig configures the HTTP analyze endpoint.
type ServerConfig struct {
	Addr       string        `yaml:"addr" env:"LIFTLENS_ADDR"`
	RateLimit  int           `yaml:"rate_limit" env:"LIFTLENS_RATE_LIMIT"`
	RateWindow time.Duration `yaml:"rate_window" env:"LIFTLENS_RATE_WINDOW"`
}

// HistoryConfig configures audit persistence.
type HistoryConfig struct {
	Dir string `yaml:"dir" env:"LIFTLENS_HISTORY_DIR"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Server: ServerConfig{
			Addr:       ":3001",
			RateLimit:  10,
			RateWindow: time.Minute,
		},
	}
}

// Validate rejects values the adapters cannot operate with.
func (c Config) Validate() error {
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("server.rate_limit must be at least 1, got %d", c.Server.RateLimit)
	}
	if c.Server.RateWindow <= 0 {
		return fmt.Errorf("server.rate_window must be positive, got %s", c.Server.RateWindow)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
