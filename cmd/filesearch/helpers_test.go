// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/filesearch/internal/pipeline"
	"github.com/sigil-dev/filesearch/internal/provider"
	"github.com/sigil-dev/filesearch/internal/secrets"
	"github.com/sigil-dev/filesearch/internal/server"
	"github.com/sigil-dev/filesearch/internal/store"
	"github.com/sigil-dev/filesearch/internal/throttle"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
	"github.com/sigil-dev/filesearch/pkg/health"
)

// mockSecretStore is an in-memory secrets.Store keyed by service/key.
type mockSecretStore struct {
	data map[string]string
}

func newMockSecretStore() *mockSecretStore {
	return &mockSecretStore{data: make(map[string]string)}
}

func (m *mockSecretStore) Set(service, key, value string) error {
	m.data[service+"/"+key] = value
	return nil
}

func (m *mockSecretStore) Get(service, key string) (string, error) {
	v, ok := m.data[service+"/"+key]
	if !ok {
		return "", fserr.Errorf(fserr.CodeSecretNotFound, "not found")
	}
	return v, nil
}

func (m *mockSecretStore) Delete(service, key string) error {
	if _, ok := m.data[service+"/"+key]; !ok {
		return fserr.Errorf(fserr.CodeSecretNotFound, "not found")
	}
	delete(m.data, service+"/"+key)
	return nil
}

// isolate points HOME and the working directory at temp dirs so config
// discovery, bootstrap and .env loading never touch the real machine.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "FILESEARCH_PROVIDERS_GOOGLE_API_KEY"} {
		t.Setenv(key, "")
	}
	color.NoColor = true
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, newMockSecretStore(), nil, args...)
}

func executeWith(t *testing.T, st secrets.Store, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(func() secrets.Store { return st })
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(io.Discard)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

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

func (stubGenerator) Generate(context.Context, string) (string, error) {
	return "stub answer", nil
}

// startServer runs a real HTTP server over stub backends and returns its URL.
func startServer(t *testing.T) string {
	t.Helper()

	orch, err := pipeline.New(store.NewRegistry(), stubEmbedder{}, stubGenerator{},
		pipeline.WithPacer(throttle.Nop{}),
		pipeline.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0", Version: "test"}, orch,
		server.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return ts.URL
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
