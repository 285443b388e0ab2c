package backend

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/gorewood/shiplog/internal/output"
)

// vertexAnthropicVersion is the version string Vertex AI requires in the
// rawPredict body for Anthropic models.
const vertexAnthropicVersion = "vertex-2023-10-16"

// defaultVertexRegion is used when no region is configured.
const defaultVertexRegion = "us-central1"

// vertexScope is the OAuth scope requested for Vertex AI calls.
const vertexScope = "https://www.googleapis.com/auth/cloud-platform"

// vertexRequest is the Anthropic rawPredict body on Vertex AI. The model
// id travels in the endpoint URL, not in the body.
type vertexRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

// vertexBackend invokes Anthropic models on Google Vertex AI, addressed
// by a project/region pair and authenticated with OAuth access tokens.
type vertexBackend struct {
	model   string
	project string
	region  string
	tokens  oauth2.TokenSource
	client  HTTPDoer
}

func newVertex(ctx context.Context, cfg Config) (*vertexBackend, error) {
	if cfg.VertexProject == "" {
		return nil, output.NewUserError("vertex backend configuration missing: project id required")
	}

	region := cfg.VertexRegion
	if region == "" {
		region = defaultVertexRegion
	}

	tokens := cfg.TokenSource
	if tokens == nil {
		creds, err := google.FindDefaultCredentials(ctx, vertexScope)
		if err != nil {
			return nil, output.NewUserError(fmt.Sprintf("loading Google credentials: %v", err))
		}
		tokens = creds.TokenSource
	}

	client := cfg.HTTPClient
	if client == nil {
		client = defaultHTTPClient()
	}

	return &vertexBackend{
		model:   resolveModel(cfg.Model, ProviderVertex),
		project: cfg.VertexProject,
		region:  region,
		tokens:  tokens,
		client:  client,
	}, nil
}

// endpoint returns the rawPredict URL for this backend's model.
func (b *vertexBackend) endpoint() string {
	return fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/anthropic/models/%s:rawPredict",
		b.region, b.project, b.region, b.model,
	)
}

func (b *vertexBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	token, err := b.tokens.Token()
	if err != nil {
		return nil, &BackendError{Provider: ProviderVertex, Message: "obtaining access token", Cause: err}
	}

	body := vertexRequest{
		AnthropicVersion: vertexAnthropicVersion,
		MaxTokens:        maxTokens,
		Messages:         []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	respBody, err := doJSON(ctx, b.client, b.endpoint(), body, map[string]string{
		"Authorization": "Bearer " + token.AccessToken,
	})
	if err != nil {
		return nil, &BackendError{Provider: ProviderVertex, Message: "request failed", Cause: err}
	}

	content, err := decodeAnthropicContent(respBody)
	if err != nil {
		return nil, &BackendError{Provider: ProviderVertex, Message: "no content", Cause: err}
	}

	return &Response{Content: content, Model: b.model}, nil
}
