// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/filesearch/internal/pipeline"
	"github.com/sigil-dev/filesearch/internal/provider"
	"github.com/sigil-dev/filesearch/internal/server"
	"github.com/sigil-dev/filesearch/internal/store"
	"github.com/sigil-dev/filesearch/internal/throttle"
	"github.com/sigil-dev/filesearch/pkg/health"
)

// stubEmbedder fails on any text containing "fail".
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.Contains(text, "fail") {
		return nil, provider.EmbeddingFailed(errors.New("boom"), "stub")
	}
	if strings.Contains(text, "apple") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func (stubEmbedder) Name() string { return "stub" }

func (stubEmbedder) HealthMetrics() health.Metrics {
	return health.Metrics{Backend: "stub/embed", Available: true}
}

type stubGenerator struct{}

const stubAnswer = "stub answer"

func (stubGenerator) Generate(context.Context, string) (string, error) {
	return stubAnswer, nil
}

type fixture struct {
	srv  *server.Server
	orch *pipeline.Orchestrator
}

func newFixture(t *testing.T, mutate ...func(*server.Config)) *fixture {
	t.Helper()

	orch, err := pipeline.New(store.NewRegistry(), stubEmbedder{}, stubGenerator{},
		pipeline.WithPacer(throttle.Nop{}),
		pipeline.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	cfg := server.Config{ListenAddr: "127.0.0.1:0", Version: "test"}
	for _, m := range mutate {
		m(&cfg)
	}
	srv, err := server.New(cfg, orch, server.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	return &fixture{srv: srv, orch: orch}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

type upload struct {
	name    string
	content string
}

// multipartRequest builds a POST /api/upload body. An empty storeID is
// left out of the form.
func multipartRequest(t *testing.T, storeID string, files ...upload) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if storeID != "" {
		require.NoError(t, mw.WriteField("store_id", storeID))
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
