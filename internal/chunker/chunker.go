// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package chunker splits document text into a bounded number of word
// groups for embedding.
package chunker

import (
	"strings"

	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

const (
	// DefaultMaxChunks is the number of chunks kept per document.
	DefaultMaxChunks = 3
	// MinChunkWords is the smallest chunk size, in words.
	MinChunkWords = 100
)

// Split divides text into at most maxChunks chunks of whitespace-separated
// words. Chunk size is max(words/maxChunks, MinChunkWords). Words beyond
// the first maxChunks chunks are dropped.
func Split(text string, maxChunks int) []string {
	return split(text, maxChunks, MinChunkWords)
}

// Chunker applies a fixed chunking policy.
type Chunker struct {
	maxChunks int
	minWords  int
}

// New returns a Chunker. Both limits must be positive.
func New(maxChunks, minWords int) (*Chunker, error) {
	if maxChunks <= 0 {
		return nil, fserr.Errorf(fserr.CodeChunkerConfigInvalid, "max chunks must be positive, got %d", maxChunks)
	}
	if minWords <= 0 {
		return nil, fserr.Errorf(fserr.CodeChunkerConfigInvalid, "min chunk words must be positive, got %d", minWords)
	}
	return &Chunker{maxChunks: maxChunks, minWords: minWords}, nil
}

func (c *Chunker) Split(text string) []string {
	return split(text, c.maxChunks, c.minWords)
}


func split(text string, maxChunks, minWords int) []string {
	if maxChunks <= 0 {
		return []string{}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}
	}

	size := max(len(words)/maxChunks, minWords)
	chunks := make([]string, 0, maxChunks)
	for start := 0; start < len(words) && len(chunks) < maxChunks; start += size {
		end := min(start+size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
