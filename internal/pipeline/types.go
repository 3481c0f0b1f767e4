// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package pipeline

// File is one uploaded document.
type File struct {
	Name string
	Data []byte
}

// IngestResult reports the outcome of one Ingest call.
type IngestResult struct {
	StoreID string `json:"store_id"`
	// Files lists, in upload order, every file with at least one embedded chunk.
	Files []string `json:"files"`
	// Errors holds one entry per failed chunk or unreadable file.
	Errors []string `json:"errors"`
}

// Success reports whether every chunk of every file was embedded.
func (r IngestResult) Success() bool { return len(r.Errors) == 0 }

// Status classifies a query outcome.
type Status string

const (
	StatusNoData           Status = "no_data"
	StatusEmbeddingFailed  Status = "embedding_failed"
	StatusAnswered         Status = "answered"
	StatusGenerationFailed Status = "generation_failed"
)

// Match is one retrieved chunk.
type Match struct {
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
	Preview  string  `json:"preview"`
}

// QueryResult is the answer to a question. Query never fails; problems are
// described in Answer and Status.
type QueryResult struct {
	Answer string `json:"llm_answer"`
	// SupportingChunks are previews of the retrieved chunks, best first.
	SupportingChunks []string `json:"supporting_chunks"`
	Matches          []Match  `json:"matches"`
	Status           Status   `json:"status"`
}

// Fixed answer texts.
const (
	NoDataAnswer   = "No data uploaded for this store."
	NoAnswerText   = "No answer."
	embeddingError = "Embedding error: "
	llmError       = "LLM error: "
)
