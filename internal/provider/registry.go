// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package provider

import (
	"slices"
	"sync"

	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

// EmbedderFactory builds an Embedder for a model.
type EmbedderFactory func(model string) (Embedder, error)

// GeneratorFactory builds a Generator for a model.
type GeneratorFactory func(model string) (Generator, error)

// Registry maps backend names to constructors so the configured backend can
// be chosen by name at startup. Only the selected backend is built.
type Registry struct {
	mu         sync.RWMutex
	embedders  map[string]EmbedderFactory
	generators map[string]GeneratorFactory
}

func NewRegistry() *Registry {
	return &Registry{
		embedders:  make(map[string]EmbedderFactory),
		generators: make(map[string]GeneratorFactory),
	}
}

func (r *Registry) RegisterEmbedder(name string, f EmbedderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embedders[name] = f
}

func (r *Registry) RegisterGenerator(name string, f GeneratorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = f
}

// Embedder builds the embedder registered under name.
func (r *Registry) Embedder(name, model string) (Embedder, error) {
	r.mu.RLock()
	f, ok := r.embedders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fserr.New(fserr.CodeProviderNotFound,
			"embedding provider not registered: "+name, fserr.FieldProvider(name))
	}

	e, err := f(model)
	if err != nil {
		return nil, fserr.With(err, fserr.FieldProvider(name), fserr.FieldModel(model))
	}
	return e, nil
}

// Generator builds the generator registered under name.
func (r *Registry) Generator(name, model string) (Generator, error) {
	r.mu.RLock()
	f, ok := r.generators[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fserr.New(fserr.CodeProviderNotFound,
			"answer provider not registered: "+name, fserr.FieldProvider(name))
	}

	g, err := f(model)
	if err != nil {
		return nil, fserr.With(err, fserr.FieldProvider(name), fserr.FieldModel(model))
	}
	return g, nil
}

// EmbedderNames returns the registered embedding backends, sorted.
func (r *Registry) EmbedderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.embedders))
	for name := range r.embedders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GeneratorNames returns the registered answer backends, sorted.
func (r *Registry) GeneratorNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
