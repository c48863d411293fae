package config

import (
	"fmt"
	"os"
)

// LLMProvider identifies the LLM provider type.
type LLMProvider string

const (
	LLMProviderOpenAI    LLMProvider = "openai"
	LLMProviderAnthropic LLMProvider = "anthropic"
)

// LLMConfig configures the LLM provider.
type LLMConfig struct {
	// Provider type (openai, anthropic).
	Provider LLMProvider `yaml:"provider,omitempty" mapstructure:"provider"`

	// Model name (e.g. "gpt-4o-mini", "claude-sonnet-4-20250514").
	Model string `yaml:"model,omitempty" mapstructure:"model"`

	// APIKey for authentication. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the default API endpoint.
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Temperature for generation. The designer overrides this per call.
	Temperature *float64 `yaml:"temperature,omitempty" mapstructure:"temperature"`

	// MaxTokens limits response length.
	MaxTokens int `yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`

	// Timeout is the request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty" mapstructure:"timeout"`

	// MaxRetries for transient HTTP failures.
	MaxRetries int `yaml:"max_retries,omitempty" mapstructure:"max_retries"`

	// RetryDelay is the base retry delay in seconds.
	RetryDelay int `yaml:"retry_delay,omitempty" mapstructure:"retry_delay"`
}

func detectProviderFromEnv() LLMProvider {
	if os.Getenv("OPENAI_API_KEY") != "" {
		return LLMProviderOpenAI
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return LLMProviderAnthropic
	}
	return LLMProviderOpenAI
}

func apiKeyFromEnv(provider LLMProvider) string {
	switch provider {
	case LLMProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case LLMProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

// SetDefaults applies default values. Provider and API key are auto-detected
// from the environment when unset.
func (c *LLMConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = detectProviderFromEnv()
	}

	if c.Model == "" {
		// Honor the legacy model override used by early versions.
		if model := os.Getenv("OPENAI_MODEL_NAME"); model != "" && c.Provider == LLMProviderOpenAI {
			c.Model = model
		} else {
			switch c.Provider {
			case LLMProviderOpenAI:
				c.Model = "gpt-4o-mini"
			case LLMProviderAnthropic:
				c.Model = "claude-sonnet-4-20250514"
			}
		}
	}

	if c.APIKey == "" {
		c.APIKey = apiKeyFromEnv(c.Provider)
	}

	if c.BaseURL == "" {
		switch c.Provider {
		case LLMProviderOpenAI:
			c.BaseURL = "https://api.openai.com/v1"
		case LLMProviderAnthropic:
			c.BaseURL = "https://api.anthropic.com"
		}
	}

	if c.Temperature == nil {
		temp := 0.3
		c.Temperature = &temp
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout == 0 {
		c.Timeout = 120
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 2
	}
}

// Validate checks the LLM configuration.
func (c *LLMConfig) Validate() error {
	switch c.Provider {
	case LLMProviderOpenAI, LLMProviderAnthropic:
	default:
		return fmt.Errorf("invalid provider %q (openai, anthropic)", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", *c.Temperature)
	}

	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}

	return nil
}
