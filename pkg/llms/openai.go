package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brettstark73/crewbuilder/pkg/config"
	"github.com/brettstark73/crewbuilder/pkg/httpclient"
)

// OpenAIProvider calls the OpenAI chat completions API.
type OpenAIProvider struct {
	config     *config.LLMConfig
	httpClient *httpclient.Client
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []Message             `json:"messages"`
	MaxTokens      *int                  `json:"max_tokens,omitempty"`
	Temperature    float64               `json:"temperature"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *openAIJSONSchema `json:"json_schema,omitempty"`
}

type openAIJSONSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict,omitempty"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   Usage          `json:"usage"`
	Error   *apiError      `json:"error,omitempty"`
}

type openAIChoice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAIProvider creates a provider with defaults for the given key and
// model. Used by tests and zero-config runs.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	cfg := &config.LLMConfig{
		Provider: config.LLMProviderOpenAI,
		Model:    model,
		APIKey:   apiKey,
	}
	cfg.SetDefaults()
	cfg.APIKey = apiKey

	provider, _ := NewOpenAIProviderFromConfig(cfg)
	return provider
}

// NewOpenAIProviderFromConfig creates a provider from configuration.
func NewOpenAIProviderFromConfig(cfg *config.LLMConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
	}

	httpClient := httpclient.New(
		httpclient.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		}),
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithBaseDelay(time.Duration(cfg.RetryDelay)*time.Second),
		httpclient.WithHeaderParser(httpclient.ParseOpenAIHeaders),
	)

	return &OpenAIProvider{
		config:     cfg,
		httpClient: httpClient,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, messages []Message, opts *GenerateOptions) (string, Usage, error) {
	request := p.buildRequest(messages, opts)

	response, err := p.makeRequest(ctx, request)
	if err != nil {
		return "", Usage{}, err
	}

	if response.Error != nil {
		return "", Usage{}, fmt.Errorf("OpenAI API error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("no response choices returned")
	}

	return response.Choices[0].Message.Content, response.Usage, nil
}

func (p *OpenAIProvider) buildRequest(messages []Message, opts *GenerateOptions) *openAIRequest {
	request := &openAIRequest{
		Model:       p.config.Model,
		Messages:    messages,
		MaxTokens:   &p.config.MaxTokens,
		Temperature: p.Temperature(),
	}

	if opts == nil {
		return request
	}

	if opts.Temperature != nil {
		request.Temperature = *opts.Temperature
	}

	if opts.Schema != nil {
		name := opts.SchemaName
		if name == "" {
			name = "response"
		}
		request.ResponseFormat = &openAIResponseFormat{
			Type: "json_schema",
			JSONSchema: &openAIJSONSchema{
				Name:   name,
				Schema: opts.Schema,
				Strict: true,
			},
		}
	}

	return request
}

func (p *OpenAIProvider) makeRequest(ctx context.Context, request *openAIRequest) (*openAIResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := p.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response openAIResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &response, nil
}

func (p *OpenAIProvider) ModelName() string {
	return p.config.Model
}

func (p *OpenAIProvider) MaxTokens() int {
	return p.config.MaxTokens
}

func (p *OpenAIProvider) Temperature() float64 {
	if p.config.Temperature == nil {
		return 0.3
	}
	return *p.config.Temperature
}

func (p *OpenAIProvider) Close() error {
	return nil
}
