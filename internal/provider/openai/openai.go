// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/sigil-dev/filesearch/internal/provider"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
	"github.com/sigil-dev/filesearch/pkg/health"
)

const name = "openai"

// Config holds OpenAI provider configuration.
type Config struct {
	APIKey  string
	BaseURL string // optional, any OpenAI-compatible endpoint
	Model   string
	// MaxTokens caps completion length. Zero leaves it to the server.
	MaxTokens int64
}

// Client embeds with the Embeddings API and answers with Chat Completions.
type Client struct {
	client openaisdk.Client
	config Config
	health *provider.HealthTracker
}

var (
	_ provider.Embedder  = (*Client)(nil)
	_ provider.Generator = (*Client)(nil)
	_ provider.Reporter  = (*Client)(nil)
)

// New creates an OpenAI client. Returns an error if the API key or model is missing.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fserr.New(fserr.CodeProviderRequestInvalid, "openai: missing api_key in config", fserr.FieldProvider(name))
	}
	if cfg.Model == "" {
		return nil, fserr.New(fserr.CodeProviderRequestInvalid, "openai: missing model", fserr.FieldProvider(name))
	}

	// The pipeline never retries, so neither does the SDK.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	tracker, err := provider.NewHealthTracker(provider.DefaultHealthCooldown)
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.CodeProviderRequestInvalid, "openai: creating health tracker")
	}

	return &Client{
		client: openaisdk.NewClient(opts...),
		config: cfg,
		health: tracker,
	}, nil
}

func (c *Client) Name() string { return name }

func (c *Client) HealthMetrics() health.Metrics {
	m := c.health.HealthMetrics()
	m.Backend = name + "/" + c.config.Model
	return m
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfString: openaisdk.String(text)},
		Model: openaisdk.EmbeddingModel(c.config.Model),
	})
	if err != nil {
		c.health.RecordFailure()
		return nil, provider.EmbeddingFailed(err, name)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		c.health.RecordFailure()
		return nil, provider.EmptyEmbedding(name)
	}

	c.health.RecordSuccess()
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(c.config.Model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
	}
	if c.config.MaxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(c.config.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.health.RecordFailure()
		return "", provider.GenerationFailed(err, name)
	}

	c.health.RecordSuccess()
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
