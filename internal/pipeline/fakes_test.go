// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sigil-dev/filesearch/internal/provider"
)

// keywordEmbedder maps text to a unit axis by the first keyword it contains.
type keywordEmbedder struct {
	mu    sync.Mutex
	calls []string
	// fail returns a non-nil error to fail the call for text.
	fail func(call int, text string) error
}

var axes = []string{"apple", "banana", "cherry"}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls = append(e.calls, text)
	call := len(e.calls)
	fail := e.fail
	e.mu.Unlock()

	if fail != nil {
		if err := fail(call, text); err != nil {
			return nil, provider.EmbeddingFailed(err, "fake")
		}
	}

	vec := make([]float32, len(axes)+1)
	vec[len(axes)] = 0.01
	for i, kw := range axes {
		if strings.Contains(text, kw) {
			vec[i] = 1
			return vec, nil
		}
	}
	vec[len(axes)] = 1
	return vec, nil
}

func (e *keywordEmbedder) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	answer  string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", provider.GenerationFailed(g.err, "fake")
	}
	return g.answer, nil
}

func (g *fakeGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

// countingPacer records waits and never sleeps.
type countingPacer struct {
	mu    sync.Mutex
	waits int
	err   error
}

func (p *countingPacer) Wait(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waits++
	return p.err
}

func (p *countingPacer) Waits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waits
}

var errBoom = errors.New("boom")
