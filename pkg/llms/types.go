// Package llms implements chat-completion providers for hosted LLM APIs.
package llms

import "context"

// Message is a chat message sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Usage reports token consumption for a single request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateOptions tune a single generation call.
type GenerateOptions struct {
	// Temperature overrides the configured temperature when set.
	Temperature *float64

	// Schema requests structured JSON output matching the given JSON schema.
	Schema map[string]any

	// SchemaName labels the schema for providers that require a name.
	SchemaName string
}

// Provider is a synchronous chat-completion backend.
type Provider interface {
	// Generate performs a chat-completion request and returns the response
	// text and token usage.
	Generate(ctx context.Context, messages []Message, opts *GenerateOptions) (string, Usage, error)

	ModelName() string

	MaxTokens() int

	Temperature() float64

	Close() error
}
