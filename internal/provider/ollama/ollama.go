// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package ollama serves embeddings and answers from a local Ollama server
// through langchaingo.
package ollama

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"

	"github.com/sigil-dev/filesearch/internal/provider"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
	"github.com/sigil-dev/filesearch/pkg/health"
)

const name = "ollama"

// DefaultServerURL is where a stock Ollama install listens.
const DefaultServerURL = "http://localhost:11434"

type Config struct {
	ServerURL string
	Model     string
}

// Client needs no API key.
type Client struct {
	llm      *lcollama.LLM
	embedder *embeddings.EmbedderImpl
	config   Config
	health   *provider.HealthTracker
}

var (
	_ provider.Embedder  = (*Client)(nil)
	_ provider.Generator = (*Client)(nil)
	_ provider.Reporter  = (*Client)(nil)
)

func New(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, fserr.New(fserr.CodeProviderRequestInvalid, "ollama: missing model", fserr.FieldProvider(name))
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}

	llm, err := lcollama.New(
		lcollama.WithServerURL(cfg.ServerURL),
		lcollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.CodeProviderRequestInvalid, "ollama: creating client")
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.CodeProviderRequestInvalid, "ollama: creating embedder")
	}

	tracker, err := provider.NewHealthTracker(provider.DefaultHealthCooldown)
	if err != nil {
		return nil, fserr.Wrapf(err, fserr.CodeProviderRequestInvalid, "ollama: creating health tracker")
	}

	return &Client{
		llm:      llm,
		embedder: embedder,
		config:   cfg,
		health:   tracker,
	}, nil
}

func (c *Client) Name() string { return name }

func (c *Client) HealthMetrics() health.Metrics {
	m := c.health.HealthMetrics()
	m.Backend = name + "/" + c.config.Model
	return m
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		c.health.RecordFailure()
		return nil, provider.EmbeddingFailed(err, name)
	}
	if len(vec) == 0 {
		c.health.RecordFailure()
		return nil, provider.EmptyEmbedding(name)
	}

	c.health.RecordSuccess()
	return vec, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt)
	if err != nil {
		c.health.RecordFailure()
		return "", provider.GenerationFailed(err, name)
	}

	c.health.RecordSuccess()
	return out, nil
}
