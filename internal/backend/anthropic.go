package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gorewood/shiplog/internal/output"
)

// Anthropic messages API wire types. Bedrock and Vertex speak the same
// response shape, so anthropicResponse is shared across all variants.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// anthropicBackend calls the hosted Anthropic messages endpoint directly
// with an API key.
type anthropicBackend struct {
	model  string
	apiKey string
	client HTTPDoer
}

func newAnthropic(cfg Config) (*anthropicBackend, error) {
	if cfg.APIKey == "" {
		return nil, output.NewUserError("ANTHROPIC_API_KEY environment variable not set")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = defaultHTTPClient()
	}

	return &anthropicBackend{
		model:  resolveModel(cfg.Model, ProviderAnthropic),
		apiKey: cfg.APIKey,
		client: client,
	}, nil
}

func (b *anthropicBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	body := anthropicRequest{
		Model:     b.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	respBody, err := doJSON(ctx, b.client, "https://api.anthropic.com/v1/messages", body, map[string]string{
		"x-api-key":         b.apiKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return nil, &BackendError{Provider: ProviderAnthropic, Message: "request failed", Cause: err}
	}

	content, err := decodeAnthropicContent(respBody)
	if err != nil {
		return nil, &BackendError{Provider: ProviderAnthropic, Message: err.Error()}
	}

	return &Response{Content: content, Model: b.model}, nil
}

// decodeAnthropicContent extracts the concatenated text blocks from a
// messages API response body.
func decodeAnthropicContent(respBody []byte) (string, error) {
	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("API error: %s", result.Error.Message)
	}

	if len(result.Content) == 0 {
		return "", errors.New("empty response from API")
	}

	var content strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	if content.Len() == 0 {
		return "", errors.New("response contained no text content")
	}

	return content.String(), nil
}
