package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/gorewood/shiplog/internal/output"
)

// bedrockAnthropicVersion is the version string the Bedrock invocation
// envelope requires for Anthropic models.
const bedrockAnthropicVersion = "bedrock-2023-05-31"

// defaultBedrockRegion is used when no region is configured.
const defaultBedrockRegion = "us-east-1"

// BedrockInvoker is the single Bedrock runtime operation the backend
// depends on. This allows injection of test doubles for testing.
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// bedrockRequest is the Anthropic invocation envelope on Bedrock. The
// model id travels as the InvokeModel parameter, not in the body.
type bedrockRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

// bedrockBackend invokes Anthropic models on AWS Bedrock using ambient
// AWS credentials.
type bedrockBackend struct {
	model   string
	invoker BedrockInvoker
}

func newBedrock(ctx context.Context, cfg Config) (*bedrockBackend, error) {
	invoker := cfg.Invoker
	if invoker == nil {
		region := cfg.BedrockRegion
		if region == "" {
			region = defaultBedrockRegion
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, output.NewUserError(fmt.Sprintf("loading AWS credentials: %v", err))
		}
		invoker = bedrockruntime.NewFromConfig(awsCfg)
	}

	return &bedrockBackend{
		model:   resolveModel(cfg.Model, ProviderBedrock),
		invoker: invoker,
	}, nil
}

func (b *bedrockBackend) Generate(ctx context.Context, req Request) (*Response, error) {
	body := bedrockRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        maxTokens,
		Messages:         []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &BackendError{Provider: ProviderBedrock, Message: "marshaling request", Cause: err}
	}

	out, err := b.invoker.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, &BackendError{Provider: ProviderBedrock, Message: "invoke failed", Cause: err}
	}

	content, err := decodeAnthropicContent(out.Body)
	if err != nil {
		return nil, &BackendError{Provider: ProviderBedrock, Message: err.Error()}
	}

	return &Response{Content: content, Model: b.model}, nil
}
