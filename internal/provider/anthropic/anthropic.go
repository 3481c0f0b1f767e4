// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package anthropic

import (
	"context"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sigil-dev/filesearch/internal/provider"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
	"github.com/sigil-dev/filesearch/pkg/health"
)

const name = "anthropic"

// DefaultMaxTokens is used when Config.MaxTokens is zero. The Messages API
// requires an explicit limit.
const DefaultMaxTokens int64 = 1024

// Config holds Anthropic provider configuration.
type Config struct {
	APIKey    string
	BaseURL   string // optional, useful for testing against a mock server
	Model     string
	MaxTokens int64
}

// Client answers prompts with the Anthropic Messages API. Anthropic has no
// embeddings endpoint, so Client is a Generator only.
type Client struct {
	client anthropicsdk.Client
	config Config
	health *provider.HealthTracker
}

var (
	_ provider.Generator = (*Client)(nil)
	_ provider.Reporter  = (*Client)(nil)
)

// New creates an Anthropic client. Returns an error if the API key or model is missing.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fserr.New(fserr.CodeProviderRequestInvalid, "anthropic: missing api_key in config", fserr.FieldProvider(name))
	}
	if cfg.Model == "" {
		return nil, fserr.New(fserr.CodeProviderRequestInvalid, "anthropic: missing model", fserr.FieldProvider(name))
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	tracker, err := provider.NewHealthTracker(provider.DefaultHealthCooldown)
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.CodeProviderRequestInvalid, "anthropic: creating health tracker")
	}

	return &Client{
		client: anthropicsdk.NewClient(opts...),
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

// Generate returns the concatenated text blocks of the reply.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.config.Model),
		MaxTokens: c.config.MaxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.health.RecordFailure()
		return "", provider.GenerationFailed(err, name)
	}

	c.health.RecordSuccess()
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
