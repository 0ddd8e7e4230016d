// Package config loads the bot's YAML configuration with environment
// overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all cruxy configuration.
type Config struct {
	Name string `yaml:"name"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Planning and execution
	Planner PlannerConfig `yaml:"planner"`

	// SQLite persistence
	Database DatabaseConfig `yaml:"database"`

	// Dashboard HTTP API
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the text-completion collaborator.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// PlannerConfig configures plan confirmation and execution.
type PlannerConfig struct {
	// How long a proposed plan waits for confirmation.
	ConfirmWindow string `yaml:"confirm_window"`
	// Name-similarity score (0-100) at or above which channel creation is
	// skipped as a duplicate.
	FuzzyThreshold int `yaml:"fuzzy_threshold"`
	// Pause between a server reset and the creation phase.
	SettlePause string `yaml:"settle_pause"`
	// Trailing turns kept per chat session.
	ChatHistory int `yaml:"chat_history"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the dashboard HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Name: "cruxy",

		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			BaseURL:  "https://generativelanguage.googleapis.com/v1beta",
			Timeout:  "120s",
		},

		Planner: PlannerConfig{
			ConfirmWindow:  "180s",
			FuzzyThreshold: 90,
			SettlePause:    "2s",
			ChatHistory:    10,
		},

		Database: DatabaseConfig{
			Path: "data/cruxy.db",
		},

		Server: ServerConfig{
			Addr: ":5000",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if path := os.Getenv("CRUXY_DB"); path != "" {
		c.Database.Path = path
	}
	if addr := os.Getenv("CRUXY_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return c.duration(c.LLM.Timeout, 2*time.Minute)
}

// GetConfirmWindow returns the confirmation window as a duration.
func (c *Config) GetConfirmWindow() time.Duration {
	return c.duration(c.Planner.ConfirmWindow, 180*time.Second)
}

// GetSettlePause returns the post-reset settle pause as a duration.
func (c *Config) GetSettlePause() time.Duration {
	return c.duration(c.Planner.SettlePause, 2*time.Second)
}

func (c *Config) duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate checks the ranges that would otherwise fail at runtime.
func (c *Config) Validate() error {
	if c.Planner.FuzzyThreshold < 0 || c.Planner.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy_threshold must be between 0 and 100, got %d", c.Planner.FuzzyThreshold)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	return nil
}
