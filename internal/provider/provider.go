// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package provider defines the two external collaborators of the retrieval
// pipeline: an Embedder that turns text into a vector and a Generator that
// answers a prompt. Concrete backends live in sub-packages.
package provider

import (
	"context"
	"strings"

	fserr "github.com/sigil-dev/filesearch/pkg/errors"
	"github.com/sigil-dev/filesearch/pkg/health"
)

// Embedder computes one embedding vector per call. Implementations do not
// batch or retry. Dimensionality is model specific and opaque to callers.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces answer text for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Reporter is implemented by backends that track their own health.
type Reporter interface {
	Name() string
	HealthMetrics() health.Metrics
}

// embeddingFailedPrefix is the leading text of every embedding failure.
const embeddingFailedPrefix = "embedding API failed"

// EmbeddingFailed wraps an upstream embedding error. The message always
// starts with "embedding API failed".
func EmbeddingFailed(err error, backend string) error {
	return fserr.Wrap(err, fserr.CodeProviderUpstreamFailure, embeddingFailedPrefix,
		fserr.FieldProvider(backend))
}

// EmptyEmbedding reports a response that carried no vector.
func EmptyEmbedding(backend string) error {
	return fserr.New(fserr.CodeProviderResponseInvalid, embeddingFailedPrefix+": empty embedding in response",
		fserr.FieldProvider(backend))
}

// IsEmbeddingError reports whether err came from an embedding backend.
func IsEmbeddingError(err error) bool {
	if err == nil {
		return false
	}
	code := fserr.CodeOf(err)
	if code != fserr.CodeProviderUpstreamFailure && code != fserr.CodeProviderResponseInvalid {
		return false
	}
	return strings.HasPrefix(err.Error(), embeddingFailedPrefix)
}

// GenerationFailed wraps an upstream generation error.
func GenerationFailed(err error, backend string) error {
	return fserr.Wrap(err, fserr.CodeProviderUpstreamFailure, "generation failed",
		fserr.FieldProvider(backend))
}

// Status is the health of the configured embedder and generator.
type Status struct {
	Embedder  health.Metrics `json:"embedder"`
	Generator health.Metrics `json:"generator"`
}

// StatusOf collects health from e and g. Backends that do not track health
// are reported as available.
func StatusOf(e Embedder, g Generator) Status {
	return Status{
		Embedder:  metricsOf(e),
		Generator: metricsOf(g),
	}
}

func metricsOf(v any) health.Metrics {
	if r, ok := v.(Reporter); ok {
		m := r.HealthMetrics()
		if m.Backend == "" {
			m.Backend = r.Name()
		}
		return m
	}
	return health.Metrics{Backend: "unknown", Available: true}
}
