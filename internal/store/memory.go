// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sigil-dev/filesearch/internal/similarity"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

// IDPrefix starts every generated store id.
const IDPrefix = "store_"

// Registry is the in-memory VectorStore. The map is guarded by mu; each
// store's record slice has its own lock so ingests into different stores
// do not contend.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*collection
	order  []string
	seq    int
	now    func() time.Time
}

type collection struct {
	mu        sync.RWMutex
	records   []Record
	createdAt time.Time
}

var _ VectorStore = (*Registry)(nil)

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		stores: make(map[string]*collection),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create returns the next unused "store_<n>" id. Ids created implicitly by
// Ensure or Append are skipped.
func (r *Registry) Create(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		r.seq++
		id := IDPrefix + strconv.Itoa(r.seq)
		if _, exists := r.stores[id]; exists {
			continue
		}
		r.addLocked(id)
		return id, nil
	}
}

func (r *Registry) Ensure(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	r.getOrCreate(id)
	return nil
}

// Append stores a copy of rec under id, creating the store if needed. ID and
// CreatedAt are assigned when empty.
func (r *Registry) Append(_ context.Context, id string, rec Record) (Record, error) {
	if err := validateID(id); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(rec.Chunk) == "" {
		return Record{}, fserr.Wrap(ErrInvalidInput, fserr.CodeStoreInvalidInput, "record chunk is empty",
			fserr.FieldStoreID(id), fserr.FieldFile(rec.Filename))
	}
	if len(rec.Embedding) == 0 {
		return Record{}, fserr.Wrap(ErrInvalidInput, fserr.CodeStoreInvalidInput, "record embedding is empty",
			fserr.FieldStoreID(id), fserr.FieldFile(rec.Filename))
	}

	rec = rec.clone()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}

	c := r.getOrCreate(id)
	c.mu.Lock()
	c.records = append(c.records, rec)
	c.mu.Unlock()

	return rec.clone(), nil
}

func (r *Registry) Len(_ context.Context, id string) int {
	c, ok := r.get(id)
	if !ok {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Records returns copies of the records in id, in insertion order.
func (r *Registry) Records(_ context.Context, id string) ([]Record, error) {
	c, ok := r.get(id)
	if !ok {
		return nil, notFound(id)
	}
	return c.snapshot(), nil
}

// Search ranks every record in id against query and returns the best k.
// Ties keep insertion order. An absent store is not found; an empty store
// yields no results.
func (r *Registry) Search(_ context.Context, id string, query []float32, k int) ([]Result, error) {
	c, ok := r.get(id)
	if !ok {
		return nil, notFound(id)
	}

	ranked := similarity.TopK(query, c.snapshot(), func(rec Record) []float32 { return rec.Embedding }, k)
	results := make([]Result, len(ranked))
	for i, rr := range ranked {
		results[i] = Result{Record: rr.Item, Score: rr.Score}
	}
	return results, nil
}

func (r *Registry) Summary(_ context.Context, id string) (Summary, error) {
	c, ok := r.get(id)
	if !ok {
		return Summary{}, notFound(id)
	}
	return c.summary(id), nil
}

// List returns summaries in creation order.
func (r *Registry) List(_ context.Context) ([]Summary, error) {
	r.mu.RLock()
	ids := append([]string(nil), r.order...)
	cols := make([]*collection, len(ids))
	for i, id := range ids {
		cols[i] = r.stores[id]
	}
	r.mu.RUnlock()

	out := make([]Summary, len(ids))
	for i, id := range ids {
		out[i] = cols[i].summary(id)
	}
	return out, nil
}

func (r *Registry) get(id string) (*collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.stores[id]
	return c, ok
}

func (r *Registry) getOrCreate(id string) *collection {
	if c, ok := r.get(id); ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.stores[id]; ok {
		return c
	}
	return r.addLocked(id)
}

// caller must hold r.mu.
func (r *Registry) addLocked(id string) *collection {
	c := &collection{records: []Record{}, createdAt: r.now()}
	r.stores[id] = c
	r.order = append(r.order, id)
	return c
}

func (c *collection) snapshot() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, len(c.records))
	for i, rec := range c.records {
		out[i] = rec.clone()
	}
	return out
}

func (c *collection) summary(id string) Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	files := []string{}
	seen := make(map[string]struct{})
	for _, rec := range c.records {
		if _, ok := seen[rec.Filename]; ok {
			continue
		}
		seen[rec.Filename] = struct{}{}
		files = append(files, rec.Filename)
	}
	return Summary{
		ID:        id,
		Records:   len(c.records),
		Files:     files,
		CreatedAt: c.createdAt,
	}
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fserr.Wrap(ErrInvalidInput, fserr.CodeStoreInvalidInput, "store id is empty")
	}
	return nil
}

func notFound(id string) error {
	return fserr.Wrap(ErrNotFound, fserr.CodeStoreNotFound, "store "+id, fserr.FieldStoreID(id))
}
