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

const anthropicVersion = "2023-06-01"

// AnthropicProvider calls the Anthropic messages API.
type AnthropicProvider struct {
	config     *config.LLMConfig
	httpClient *httpclient.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Usage   anthropicUsage     `json:"usage"`
	Error   *apiError          `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// NewAnthropicProviderFromConfig creates a provider from configuration.
func NewAnthropicProviderFromConfig(cfg *config.LLMConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY)")
	}

	httpClient := httpclient.New(
		httpclient.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		}),
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithBaseDelay(time.Duration(cfg.RetryDelay)*time.Second),
		httpclient.WithHeaderParser(httpclient.ParseAnthropicHeaders),
	)

	return &AnthropicProvider{
		config:     cfg,
		httpClient: httpClient,
	}, nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, messages []Message, opts *GenerateOptions) (string, Usage, error) {
	request := p.buildRequest(messages, opts)

	body, err := json.Marshal(request)
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := p.config.BaseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", Usage{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("failed to read response: %w", err)
	}

	var response anthropicResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", Usage{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if response.Error != nil {
		return "", Usage{}, fmt.Errorf("Anthropic API error: %s", response.Error.Message)
	}

	text := ""
	for _, content := range response.Content {
		if content.Type == "text" {
			text += content.Text
		}
	}

	usage := Usage{
		PromptTokens:     response.Usage.InputTokens,
		CompletionTokens: response.Usage.OutputTokens,
		TotalTokens:      response.Usage.InputTokens + response.Usage.OutputTokens,
	}

	return text, usage, nil
}

func (p *AnthropicProvider) buildRequest(messages []Message, opts *GenerateOptions) *anthropicRequest {
	request := &anthropicRequest{
		Model:       p.config.Model,
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.Temperature(),
	}

	// Anthropic takes the system prompt as a top-level field.
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			if request.System != "" {
				request.System += "\n\n"
			}
			request.System += msg.Content
			continue
		}
		request.Messages = append(request.Messages, anthropicMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	if opts != nil {
		if opts.Temperature != nil {
			request.Temperature = *opts.Temperature
		}
		// No native response_format: steer toward JSON via the system prompt.
		if opts.Schema != nil {
			schemaJSON, err := json.Marshal(opts.Schema)
			if err == nil {
				if request.System != "" {
					request.System += "\n\n"
				}
				request.System += "Respond only with JSON matching this schema, no prose:\n" + string(schemaJSON)
			}
		}
	}

	return request
}

func (p *AnthropicProvider) ModelName() string {
	return p.config.Model
}

func (p *AnthropicProvider) MaxTokens() int {
	return p.config.MaxTokens
}

func (p *AnthropicProvider) Temperature() float64 {
	if p.config.Temperature == nil {
		return 0.3
	}
	return *p.config.Temperature
}

func (p *AnthropicProvider) Close() error {
	return nil
}
