// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"github.com/rs/zerolog/log"

	"github.com/sigil-dev/filesearch/internal/chunker"
	"github.com/sigil-dev/filesearch/internal/config"
	"github.com/sigil-dev/filesearch/internal/pipeline"
	"github.com/sigil-dev/filesearch/internal/provider"
	anthropicprov "github.com/sigil-dev/filesearch/internal/provider/anthropic"
	googleprov "github.com/sigil-dev/filesearch/internal/provider/google"
	ollamaprov "github.com/sigil-dev/filesearch/internal/provider/ollama"
	openaiprov "github.com/sigil-dev/filesearch/internal/provider/openai"
	"github.com/sigil-dev/filesearch/internal/server"
	"github.com/sigil-dev/filesearch/internal/store"
	"github.com/sigil-dev/filesearch/internal/throttle"
)

// newProviderRegistry registers a factory for every built-in backend.
// Factories close over cfg, so a backend is only built when selected.
func newProviderRegistry(cfg *config.Config) *provider.Registry {
	reg := provider.NewRegistry()

	google := func(model string) (*googleprov.Client, error) {
		p := cfg.Provider("google")
		return googleprov.New(googleprov.Config{
			APIKey:   p.APIKey,
			BaseURL:  p.Endpoint,
			Model:    model,
			TaskType: cfg.Embedding.TaskType,
		})
	}
	openai := func(model string) (*openaiprov.Client, error) {
		p := cfg.Provider("openai")
		return openaiprov.New(openaiprov.Config{
			APIKey:    p.APIKey,
			BaseURL:   p.Endpoint,
			Model:     model,
			MaxTokens: int64(cfg.Answer.MaxTokens),
		})
	}
	ollama := func(model string) (*ollamaprov.Client, error) {
		return ollamaprov.New(ollamaprov.Config{ServerURL: cfg.Provider("ollama").Endpoint, Model: model})
	}

	reg.RegisterEmbedder("google", func(model string) (provider.Embedder, error) { return google(model) })
	reg.RegisterGenerator("google", func(model string) (provider.Generator, error) { return google(model) })
	reg.RegisterEmbedder("openai", func(model string) (provider.Embedder, error) { return openai(model) })
	reg.RegisterGenerator("openai", func(model string) (provider.Generator, error) { return openai(model) })
	reg.RegisterEmbedder("ollama", func(model string) (provider.Embedder, error) { return ollama(model) })
	reg.RegisterGenerator("ollama", func(model string) (provider.Generator, error) { return ollama(model) })
	reg.RegisterGenerator("anthropic", func(model string) (provider.Generator, error) {
		p := cfg.Provider("anthropic")
		return anthropicprov.New(anthropicprov.Config{
			APIKey:    p.APIKey,
			BaseURL:   p.Endpoint,
			Model:     model,
			MaxTokens: int64(cfg.Answer.MaxTokens),
		})
	})

	return reg
}

// wirePipeline builds the orchestrator described by cfg over a fresh
// in-memory store registry.
func wirePipeline(cfg *config.Config, reg *provider.Registry) (*pipeline.Orchestrator, error) {
	emb, err := reg.Embedder(cfg.Embedding.Provider, cfg.Embedding.Model)
	if err != nil {
		return nil, err
	}
	gen, err := reg.Generator(cfg.Answer.Provider, cfg.Answer.Model)
	if err != nil {
		return nil, err
	}

	ch, err := chunker.New(cfg.Ingest.MaxChunks, cfg.Ingest.MinChunkWords)
	if err != nil {
		return nil, err
	}
	pacer, err := throttle.New(cfg.Ingest.Throttle.Pacer())
	if err != nil {
		return nil, err
	}

	return pipeline.New(store.NewRegistry(), emb, gen,
		pipeline.WithChunker(ch),
		pipeline.WithPacer(pacer),
		pipeline.WithTopK(cfg.Query.TopK),
		pipeline.WithPreviewChars(cfg.Query.PreviewChars),
		pipeline.WithLogger(log.Logger.With().Str("component", "pipeline").Logger()),
	)
}

// serverConfig maps the file config onto the HTTP server config.
func serverConfig(cfg *config.Config) server.Config {
	return server.Config{
		ListenAddr:     cfg.Networking.Listen,
		CORSOrigins:    cfg.Networking.CORSOrigins,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		MaxUploadFiles: cfg.Server.MaxUploadFiles,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		},
		Version: version,
	}
}
