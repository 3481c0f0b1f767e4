// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package pipeline ingests documents into a store and answers questions
// from the most similar stored chunks.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sigil-dev/filesearch/internal/chunker"
	"github.com/sigil-dev/filesearch/internal/extract"
	"github.com/sigil-dev/filesearch/internal/provider"
	"github.com/sigil-dev/filesearch/internal/store"
	"github.com/sigil-dev/filesearch/internal/throttle"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

const (
	DefaultTopK         = 2
	DefaultPreviewChars = 200
	// maxErrorRunes bounds the error text kept per failed chunk.
	maxErrorRunes = 100
)

// PromptTemplate receives the joined context and the question.
const PromptTemplate = `Context from uploaded files:
%s

User Question: %s
Answer based only on the context above.`

// Orchestrator runs ingest and query against one store registry.
type Orchestrator struct {
	store     store.VectorStore
	embedder  provider.Embedder
	generator provider.Generator

	chunker      *chunker.Chunker
	pacer        throttle.Pacer
	topK         int
	previewChars int
	logger       zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithChunker(c *chunker.Chunker) Option {
	return func(o *Orchestrator) { o.chunker = c }
}

// WithPacer sets the pause between successive successful embedding calls.
func WithPacer(p throttle.Pacer) Option {
	return func(o *Orchestrator) { o.pacer = p }
}

func WithTopK(k int) Option {
	return func(o *Orchestrator) { o.topK = k }
}

func WithPreviewChars(n int) Option {
	return func(o *Orchestrator) { o.previewChars = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New returns an Orchestrator with the default policy: three chunks of at
// least 100 words, a fixed three second pace, top two matches and 200
// character previews.
func New(st store.VectorStore, e provider.Embedder, g provider.Generator, opts ...Option) (*Orchestrator, error) {
	if st == nil || e == nil || g == nil {
		return nil, fserr.New(fserr.CodePipelineConfigInvalid, "store, embedder and generator are required")
	}

	o := &Orchestrator{
		store:        st,
		embedder:     e,
		generator:    g,
		topK:         DefaultTopK,
		previewChars: DefaultPreviewChars,
		logger:       log.Logger,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.chunker == nil {
		c, err := chunker.New(chunker.DefaultMaxChunks, chunker.MinChunkWords)
		if err != nil {
			return nil, err
		}
		o.chunker = c
	}
	if o.pacer == nil {
		p, err := throttle.NewFixedDelay(throttle.DefaultDelay)
		if err != nil {
			return nil, err
		}
		o.pacer = p
	}
	if o.topK <= 0 {
		return nil, fserr.Errorf(fserr.CodePipelineConfigInvalid, "top k must be positive, got %d", o.topK)
	}
	if o.previewChars < 0 {
		return nil, fserr.Errorf(fserr.CodePipelineConfigInvalid, "preview chars must not be negative, got %d", o.previewChars)
	}
	return o, nil
}

// Embedder returns the configured embedding backend.
func (o *Orchestrator) Embedder() provider.Embedder { return o.embedder }

// Generator returns the configured answer backend.
func (o *Orchestrator) Generator() provider.Generator { return o.generator }

// CreateStore allocates a new, empty store.
func (o *Orchestrator) CreateStore(ctx context.Context) (string, error) {
	id, err := o.store.Create(ctx)
	if err != nil {
		return "", err
	}
	o.logger.Info().Str("store_id", id).Msg("store created")
	return id, nil
}

// Stores summarises every store in creation order.
func (o *Orchestrator) Stores(ctx context.Context) ([]store.Summary, error) {
	return o.store.List(ctx)
}

// Store summarises one store.
func (o *Orchestrator) Store(ctx context.Context, id string) (store.Summary, error) {
	return o.store.Summary(ctx, id)
}

// Ingest embeds every file into storeID, creating the store if needed. A
// failed chunk or unreadable file is recorded in the result and the rest of
// the upload continues. The returned error is set only for a bad store id.
func (o *Orchestrator) Ingest(ctx context.Context, storeID string, files []File) (IngestResult, error) {
	if strings.TrimSpace(storeID) == "" {
		return IngestResult{}, fserr.New(fserr.CodePipelineInputInvalid, "store_id is required")
	}
	if err := o.store.Ensure(ctx, storeID); err != nil {
		return IngestResult{}, err
	}

	res := IngestResult{StoreID: storeID, Files: []string{}, Errors: []string{}}
	lastSucceeded := false

	for _, f := range files {
		logger := o.logger.With().Str("store_id", storeID).Str("file", f.Name).Logger()

		text, err := extract.Text(f.Name, f.Data)
		if err != nil {
			logger.Warn().Err(err).Msg("extraction failed")
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", f.Name, err.Error()))
			continue
		}

		chunks := o.chunker.Split(text)
		embedded := 0
		for i, chunk := range chunks {
			if lastSucceeded {
				if err := o.pacer.Wait(ctx); err != nil {
					lastSucceeded = false
					res.Errors = append(res.Errors, chunkError(f.Name, i, err))
					continue
				}
			}

			vec, err := o.embedder.Embed(ctx, chunk)
			if err != nil {
				lastSucceeded = false
				logger.Warn().Err(err).Int("chunk", i+1).Int("chunks", len(chunks)).Msg("embedding failed")
				res.Errors = append(res.Errors, chunkError(f.Name, i, err))
				continue
			}
			lastSucceeded = true

			if _, err := o.store.Append(ctx, storeID, store.Record{Filename: f.Name, Chunk: chunk, Embedding: vec}); err != nil {
				res.Errors = append(res.Errors, chunkError(f.Name, i, err))
				continue
			}
			embedded++
			logger.Info().Int("chunk", i+1).Int("chunks", len(chunks)).Msg("chunk embedded")
		}

		if embedded > 0 {
			res.Files = append(res.Files, f.Name)
		}
	}

	o.logger.Info().
		Str("store_id", storeID).
		Int("files", len(res.Files)).
		Int("errors", len(res.Errors)).
		Msg("ingest finished")
	return res, nil
}

// Query answers question from the topK chunks of storeID most similar to it.
func (o *Orchestrator) Query(ctx context.Context, storeID, question string) QueryResult {
	logger := o.logger.With().Str("store_id", storeID).Logger()

	if o.store.Len(ctx, storeID) == 0 {
		logger.Debug().Str("status", string(StatusNoData)).Msg("query on empty store")
		return QueryResult{Answer: NoDataAnswer, SupportingChunks: []string{}, Matches: []Match{}, Status: StatusNoData}
	}

	qvec, err := o.embedder.Embed(ctx, question)
	if err != nil {
		logger.Warn().Err(err).Str("status", string(StatusEmbeddingFailed)).Msg("query embedding failed")
		return QueryResult{
			Answer:           embeddingError + err.Error(),
			SupportingChunks: []string{},
			Matches:          []Match{},
			Status:           StatusEmbeddingFailed,
		}
	}

	results, err := o.store.Search(ctx, storeID, qvec, o.topK)
	if err != nil {
		// stores are never deleted, so this is not expected
		return QueryResult{Answer: NoDataAnswer, SupportingChunks: []string{}, Matches: []Match{}, Status: StatusNoData}
	}

	parts := make([]string, len(results))
	previews := make([]string, len(results))
	matches := make([]Match, len(results))
	for i, r := range results {
		parts[i] = r.Record.Chunk
		previews[i] = Preview(r.Record.Chunk, o.previewChars)
		matches[i] = Match{Filename: r.Record.Filename, Score: r.Score, Preview: previews[i]}
	}

	prompt := BuildPrompt(strings.Join(parts, "\n\n"), question)
	answer, status := o.generate(ctx, prompt)
	logger.Info().Str("status", string(status)).Int("chunks", len(results)).Msg("query answered")

	return QueryResult{
		Answer:           answer,
		SupportingChunks: previews,
		Matches:          matches,
		Status:           status,
	}
}

func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, Status) {
	text, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		o.logger.Warn().Err(err).Msg("generation failed")
		return llmError + err.Error(), StatusGenerationFailed
	}
	if strings.TrimSpace(text) == "" {
		return NoAnswerText, StatusAnswered
	}
	return text, StatusAnswered
}

// BuildPrompt fills PromptTemplate.
func BuildPrompt(contextText, question string) string {
	return fmt.Sprintf(PromptTemplate, contextText, question)
}

// Preview returns the first n runes of chunk followed by "...".
func Preview(chunk string, n int) string {
	return truncateRunes(chunk, n) + "..."
}

func chunkError(file string, idx int, err error) string {
	return fmt.Sprintf("%s chunk %d: %s", file, idx+1, truncateRunes(err.Error(), maxErrorRunes))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
