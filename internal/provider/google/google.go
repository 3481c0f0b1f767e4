// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package google

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/sigil-dev/filesearch/internal/provider"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
	"github.com/sigil-dev/filesearch/pkg/health"
)

const name = "google"

// DefaultTaskType is the embedding hint used for indexed document chunks.
const DefaultTaskType = "RETRIEVAL_DOCUMENT"

// Config holds Gemini client configuration.
type Config struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint. Empty uses the SDK default.
	BaseURL  string
	Model    string
	TaskType string
}

// Client is a Gemini embedder and generator. One Client serves one model.
type Client struct {
	client *genai.Client
	config Config
	health *provider.HealthTracker
}

var (
	_ provider.Embedder  = (*Client)(nil)
	_ provider.Generator = (*Client)(nil)
	_ provider.Reporter  = (*Client)(nil)
)

// New creates a Gemini client. Returns an error if the API key or model is missing.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fserr.New(fserr.CodeProviderRequestInvalid, "google: missing api_key in config", fserr.FieldProvider(name))
	}
	if cfg.Model == "" {
		return nil, fserr.New(fserr.CodeProviderRequestInvalid, "google: missing model", fserr.FieldProvider(name))
	}
	if cfg.TaskType == "" {
		cfg.TaskType = DefaultTaskType
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.CodeProviderUpstreamFailure, "google: creating client")
	}

	tracker, err := provider.NewHealthTracker(provider.DefaultHealthCooldown)
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.CodeProviderRequestInvalid, "google: creating health tracker")
	}

	return &Client{
		client: client,
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

// Embed returns the embedding of text under the configured task type.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Models.EmbedContent(ctx, c.config.Model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: c.config.TaskType,
	})
	if err != nil {
		c.health.RecordFailure()
		return nil, provider.EmbeddingFailed(err, name)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		c.health.RecordFailure()
		return nil, provider.EmptyEmbedding(name)
	}

	c.health.RecordSuccess()
	return resp.Embeddings[0].Values, nil
}

// Generate sends prompt as a single user turn and returns the response text.
// A response without text returns "" and no error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), nil)
	if err != nil {
		c.health.RecordFailure()
		return "", provider.GenerationFailed(err, name)
	}

	c.health.RecordSuccess()
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}
