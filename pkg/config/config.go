// Package config defines crewbuilder configuration and its YAML loader.
//
// Configuration flows through a fixed pipeline: raw bytes from a provider,
// YAML parse, environment variable expansion, struct decode, defaults,
// validation. Every section implements SetDefaults and Validate.
package config

import (
	"fmt"
)

// Config is the root configuration for crewbuilder.
type Config struct {
	LLM       LLMConfig       `yaml:"llm,omitempty" mapstructure:"llm"`
	Runner    RunnerConfig    `yaml:"runner,omitempty" mapstructure:"runner"`
	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty" mapstructure:"rate_limit"`
	Store     StoreConfig     `yaml:"store,omitempty" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server,omitempty" mapstructure:"server"`
	Logger    LoggerConfig    `yaml:"logger,omitempty" mapstructure:"logger"`
}

// RunnerConfig controls chunked task execution.
type RunnerConfig struct {
	// MaxTokensPerChunk is the upstream API token ceiling per request chunk.
	MaxTokensPerChunk int `yaml:"max_tokens_per_chunk,omitempty" mapstructure:"max_tokens_per_chunk"`

	// ChunkDelay is the pause after each executed task, in seconds.
	ChunkDelay int `yaml:"chunk_delay,omitempty" mapstructure:"chunk_delay"`

	// RateLimitBackoff is the extra pause after a rate limit error, in seconds.
	RateLimitBackoff int `yaml:"rate_limit_backoff,omitempty" mapstructure:"rate_limit_backoff"`

	// OutputDir is where run records and generated projects are written.
	OutputDir string `yaml:"output_dir,omitempty" mapstructure:"output_dir"`

	// Audience is the default target audience for generated projects.
	Audience string `yaml:"audience,omitempty" mapstructure:"audience"`

	// Timeline is the default development timeline passed to the designer.
	Timeline string `yaml:"timeline,omitempty" mapstructure:"timeline"`
}

func (c *RunnerConfig) SetDefaults() {
	if c.MaxTokensPerChunk == 0 {
		c.MaxTokensPerChunk = 180000
	}
	if c.ChunkDelay == 0 {
		c.ChunkDelay = 65
	}
	if c.RateLimitBackoff == 0 {
		c.RateLimitBackoff = 120
	}
	if c.OutputDir == "" {
		c.OutputDir = "./projects"
	}
	if c.Audience == "" {
		c.Audience = "general users"
	}
	if c.Timeline == "" {
		c.Timeline = "4 weeks"
	}
}

func (c *RunnerConfig) Validate() error {
	if c.MaxTokensPerChunk < 1000 {
		return fmt.Errorf("max_tokens_per_chunk must be at least 1000, got %d", c.MaxTokensPerChunk)
	}
	if c.ChunkDelay < 0 {
		return fmt.Errorf("chunk_delay cannot be negative")
	}
	if c.RateLimitBackoff < 0 {
		return fmt.Errorf("rate_limit_backoff cannot be negative")
	}
	return nil
}

// RateLimitConfig configures client-side budget limits.
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled,omitempty" mapstructure:"enabled"`
	Limits  []LimitConfig `yaml:"limits,omitempty" mapstructure:"limits"`
}

// LimitConfig is a single budget limit.
type LimitConfig struct {
	// Type is "token" or "count".
	Type string `yaml:"type" mapstructure:"type"`

	// Window is "minute", "hour", or "day".
	Window string `yaml:"window" mapstructure:"window"`

	Limit int64 `yaml:"limit" mapstructure:"limit"`
}

func (c *RateLimitConfig) SetDefaults() {}

func (c *RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	for i, limit := range c.Limits {
		switch limit.Type {
		case "token", "count":
		default:
			return fmt.Errorf("limits[%d]: invalid type %q (token, count)", i, limit.Type)
		}
		switch limit.Window {
		case "minute", "hour", "day":
		default:
			return fmt.Errorf("limits[%d]: invalid window %q (minute, hour, day)", i, limit.Window)
		}
		if limit.Limit <= 0 {
			return fmt.Errorf("limits[%d]: limit must be positive", i)
		}
	}
	return nil
}

// StoreConfig configures the run history database.
type StoreConfig struct {
	// Path to the SQLite database file.
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = ".crewbuilder/runs.db"
	}
}

func (c *StoreConfig) Validate() error {
	return nil
}

// ServerConfig configures the local run browser.
type ServerConfig struct {
	Port int `yaml:"port,omitempty" mapstructure:"port"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// LoggerConfig configures logging output.
type LoggerConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level,omitempty" mapstructure:"level"`

	// Format is "simple" or "verbose".
	Format string `yaml:"format,omitempty" mapstructure:"format"`

	// File is an optional log file path (empty = stderr).
	File string `yaml:"file,omitempty" mapstructure:"file"`
}

func (c *LoggerConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "simple"
	}
}

func (c *LoggerConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q (debug, info, warn, error)", c.Level)
	}
	return nil
}

// SetDefaults applies defaults to all sections.
func (c *Config) SetDefaults() {
	c.LLM.SetDefaults()
	c.Runner.SetDefaults()
	c.RateLimit.SetDefaults()
	c.Store.SetDefaults()
	c.Server.SetDefaults()
	c.Logger.SetDefaults()
}

// Validate checks all sections.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Runner.Validate(); err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

// Default returns a fully defaulted configuration for zero-config runs.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}
