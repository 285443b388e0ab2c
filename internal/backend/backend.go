// Package backend provides the generation backends that turn a compiled
// prompt into changelog text. Three variants exist behind one Generator
// capability: the Anthropic API called directly with an API key, Anthropic
// models on AWS Bedrock using ambient AWS credentials, and Anthropic
// models on Google Vertex AI using a project/region pair.
//
// Selection is a pure configuration decision made once per invocation via
// New. Credentials are passed in explicitly through Config; backends never
// read the process environment themselves, which keeps them testable in
// isolation. Credential validation happens at construction, before any
// prompt is compiled or network call is attempted. A failed generation
// call is terminal; no backend retries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/gorewood/shiplog/internal/output"
)

// maxTokens is the fixed output ceiling for a changelog completion.
const maxTokens = 4096

// Provider identifies a generation backend variant.
type Provider string

// Supported backend variants.
const (
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
	ProviderVertex    Provider = "vertex"
)

// Request is a single-prompt completion request.
type Request struct {
	Prompt string
}

// Response is the text completion produced by a backend.
type Response struct {
	Content string // Generated content
	Model   string // Model used
}

// Generator is the capability shared by all backends. Implementations are
// stateless beyond their configuration and safe to reuse across
// sequential calls.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// HTTPDoer defines the HTTP operations required by the HTTP-based
// backends. This allows injection of test doubles for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config selects and parameterizes a backend.
type Config struct {
	// Model is a model id or one of the shorthand aliases (sonnet,
	// haiku, opus). Aliases resolve per variant since each provider
	// names the same models differently.
	Model string

	// APIKey authenticates the direct Anthropic variant.
	APIKey string

	// UseBedrock selects the AWS Bedrock variant.
	UseBedrock    bool
	BedrockRegion string

	// UseVertex selects the Google Vertex AI variant. VertexProject is
	// required when selected.
	UseVertex     bool
	VertexProject string
	VertexRegion  string

	// HTTPClient overrides the transport for HTTP-based backends.
	HTTPClient HTTPDoer
	// TokenSource overrides Vertex credential resolution.
	TokenSource oauth2.TokenSource
	// Invoker overrides the Bedrock runtime client.
	Invoker BedrockInvoker
}

// BackendError describes a failed generation call.
type BackendError struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("%s backend: %s", e.Provider, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// New constructs the backend selected by cfg. Bedrock and Vertex are
// mutually exclusive; the direct Anthropic API is the default when
// neither is selected.
func New(ctx context.Context, cfg Config) (Generator, error) {
	if cfg.UseBedrock && cfg.UseVertex {
		return nil, output.NewUserError("bedrock and vertex backends are mutually exclusive")
	}

	switch {
	case cfg.UseBedrock:
		return newBedrock(ctx, cfg)
	case cfg.UseVertex:
		return newVertex(ctx, cfg)
	default:
		return newAnthropic(cfg)
	}
}

// defaultHTTPClient returns the transport used when none is injected.
func defaultHTTPClient() HTTPDoer {
	return &http.Client{Timeout: 5 * time.Minute}
}

// doJSON performs an HTTP POST with a JSON body and returns the response
// body. Error bodies are truncated to keep sensitive payloads and large
// responses out of error messages.
func doJSON(ctx context.Context, client HTTPDoer, url string, body any, headers map[string]string) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody := string(respBody)
		if len(errBody) > 500 {
			errBody = errBody[:500]
		}
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, errBody)
	}

	return respBody, nil
}
