// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package similarity ranks embedded items against a query vector.
package similarity

import (
	"cmp"
	"math"
	"slices"
)

// Cosine returns the cosine similarity of a and b, computed in float64.
// Vectors of different length, and zero vectors, score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}

	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return max(-1, min(1, s))
}

// Ranked is an item with its similarity to the query.
type Ranked[T any] struct {
	Item  T
	Score float64
}

// TopK returns the k items most similar to query, best first. Equal scores
// keep their input order. k <= 0 yields nothing; k > len(items) yields all.
func TopK[T any](query []float32, items []T, vector func(T) []float32, k int) []Ranked[T] {
	if k <= 0 || len(items) == 0 {
		return []Ranked[T]{}
	}

	ranked := make([]Ranked[T], len(items))
	for i, item := range items {
		ranked[i] = Ranked[T]{Item: item, Score: Cosine(query, vector(item))}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked[T]) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}
