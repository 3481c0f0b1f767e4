// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/sigil-dev/filesearch/internal/pipeline"
	"github.com/sigil-dev/filesearch/internal/provider"
	"github.com/sigil-dev/filesearch/internal/server"
	"github.com/sigil-dev/filesearch/internal/store"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/filesearch.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing OpenAPI document: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI document written to %s\n", outPath)
}

// generateSpec builds a server over a no-op pipeline and returns the
// OpenAPI document huma derives from the registered operations.
func generateSpec() ([]byte, error) {
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"}, nopPipeline{},
		server.WithLogger(zerolog.Nop()))
	if err != nil {
		return nil, fserr.Errorf(fserr.CodeCLISetupFailure, "creating server: %w", err)
	}
	defer func() { _ = srv.Close() }()

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}

// nopPipeline satisfies server.Pipeline. Handlers are never invoked.
type nopPipeline struct{}

func (nopPipeline) CreateStore(context.Context) (string, error)         { return "", nil }
func (nopPipeline) Stores(context.Context) ([]store.Summary, error)     { return nil, nil }
func (nopPipeline) Store(context.Context, string) (store.Summary, error) { return store.Summary{}, nil }
func (nopPipeline) Ingest(context.Context, string, []pipeline.File) (pipeline.IngestResult, error) {
	return pipeline.IngestResult{}, nil
}
func (nopPipeline) Query(context.Context, string, string) pipeline.QueryResult {
	return pipeline.QueryResult{}
}
func (nopPipeline) Embedder() provider.Embedder   { return nil }
func (nopPipeline) Generator() provider.Generator { return nil }
