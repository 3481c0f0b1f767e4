// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import "context"

// VectorStore holds embedded chunks grouped by store id and ranks them by
// similarity. Stores are created on first reference and never deleted.
type VectorStore interface {
	// Create allocates a fresh "store_<n>" id.
	Create(ctx context.Context) (string, error)
	// Ensure creates id if it is absent.
	Ensure(ctx context.Context, id string) error
	Append(ctx context.Context, id string, rec Record) (Record, error)
	// Len is 0 for absent stores.
	Len(ctx context.Context, id string) int
	Records(ctx context.Context, id string) ([]Record, error)
	Search(ctx context.Context, id string, query []float32, k int) ([]Result, error)
	Summary(ctx context.Context, id string) (Summary, error)
	List(ctx context.Context) ([]Summary, error)
}
