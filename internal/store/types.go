// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import "time"

// Record is one embedded chunk. Records are immutable once appended.
type Record struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Chunk     string    `json:"chunk"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is a record ranked against a query vector.
type Result struct {
	Record Record
	Score  float64
}

// Summary describes a store without exposing its vectors.
type Summary struct {
	ID        string    `json:"id"`
	Records   int       `json:"records"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Record) clone() Record {
	r.Embedding = append([]float32(nil), r.Embedding...)
	return r
}
