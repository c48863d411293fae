package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brettstark73/crewbuilder/pkg/config"
)

func testOpenAIConfig(baseURL string) *config.LLMConfig {
	temp := 0.3
	return &config.LLMConfig{
		Provider:    config.LLMProviderOpenAI,
		Model:       "gpt-4o-mini",
		APIKey:      "sk-test-key",
		BaseURL:     baseURL,
		Temperature: &temp,
		MaxTokens:   4096,
		Timeout:     5,
		MaxRetries:  1,
		RetryDelay:  1,
	}
}

func TestNewOpenAIProviderFromConfig(t *testing.T) {
	provider, err := NewOpenAIProviderFromConfig(testOpenAIConfig("https://api.openai.com/v1"))
	if err != nil {
		t.Fatalf("NewOpenAIProviderFromConfig() error = %v", err)
	}

	if provider.ModelName() != "gpt-4o-mini" {
		t.Errorf("ModelName() = %v, want gpt-4o-mini", provider.ModelName())
	}
	if provider.MaxTokens() != 4096 {
		t.Errorf("MaxTokens() = %v, want 4096", provider.MaxTokens())
	}
	if provider.Temperature() != 0.3 {
		t.Errorf("Temperature() = %v, want 0.3", provider.Temperature())
	}
}

func TestNewOpenAIProviderFromConfig_MissingKey(t *testing.T) {
	cfg := testOpenAIConfig("https://api.openai.com/v1")
	cfg.APIKey = ""

	if _, err := NewOpenAIProviderFromConfig(cfg); err == nil {
		t.Error("NewOpenAIProviderFromConfig() should require an API key")
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var gotRequest openAIRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("request path = %v, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test-key" {
			t.Errorf("Authorization = %v, want Bearer sk-test-key", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		resp := openAIResponse{
			Choices: []openAIChoice{
				{Message: Message{Role: RoleAssistant, Content: "generated code"}, FinishReason: "stop"},
			},
			Usage: Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProviderFromConfig(testOpenAIConfig(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIProviderFromConfig() error = %v", err)
	}

	lowTemp := 0.1
	text, usage, err := provider.Generate(context.Background(),
		[]Message{
			{Role: RoleSystem, Content: "You are a project analyzer."},
			{Role: RoleUser, Content: "Analyze this project."},
		},
		&GenerateOptions{Temperature: &lowTemp},
	)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if text != "generated code" {
		t.Errorf("Generate() text = %q, want %q", text, "generated code")
	}
	if usage.TotalTokens != 15 {
		t.Errorf("Generate() usage.TotalTokens = %d, want 15", usage.TotalTokens)
	}
	if gotRequest.Temperature != 0.1 {
		t.Errorf("request temperature = %v, want per-call override 0.1", gotRequest.Temperature)
	}
	if gotRequest.Model != "gpt-4o-mini" {
		t.Errorf("request model = %v, want gpt-4o-mini", gotRequest.Model)
	}
}

func TestOpenAIProvider_GenerateStructured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Error("expected json_schema response format")
		} else {
			if req.ResponseFormat.JSONSchema.Name != "task_list" {
				t.Errorf("schema name = %v, want task_list", req.ResponseFormat.JSONSchema.Name)
			}
			if !req.ResponseFormat.JSONSchema.Strict {
				t.Error("expected strict schema")
			}
		}

		resp := openAIResponse{
			Choices: []openAIChoice{
				{Message: Message{Role: RoleAssistant, Content: `{"tasks":[]}`}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProviderFromConfig(testOpenAIConfig(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIProviderFromConfig() error = %v", err)
	}

	text, _, err := provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "design tasks"}},
		&GenerateOptions{
			Schema:     map[string]any{"type": "object"},
			SchemaName: "task_list",
		},
	)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != `{"tasks":[]}` {
		t.Errorf("Generate() text = %q", text)
	}
}

func TestOpenAIProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openAIResponse{
			Error: &apiError{Message: "model not found", Type: "invalid_request_error"},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProviderFromConfig(testOpenAIConfig(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIProviderFromConfig() error = %v", err)
	}

	_, _, err = provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("Generate() expected error for API error response")
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openAIResponse{})
	}))
	defer server.Close()

	provider, err := NewOpenAIProviderFromConfig(testOpenAIConfig(server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIProviderFromConfig() error = %v", err)
	}

	_, _, err = provider.Generate(context.Background(),
		[]Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("Generate() expected error for empty choices")
	}
}
