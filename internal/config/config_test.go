// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sigil-dev/filesearch/internal/config"
	"github.com/sigil-dev/filesearch/internal/throttle"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filesearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.Networking.Listen)
	assert.Equal(t, []string{"*"}, cfg.Networking.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 20, cfg.Server.MaxUploadFiles)
	assert.Equal(t, "google", cfg.Embedding.Provider)
	assert.Equal(t, "gemini-embedding-001", cfg.Embedding.Model)
	assert.Equal(t, "RETRIEVAL_DOCUMENT", cfg.Embedding.TaskType)
	assert.Equal(t, "gemini-2.5-flash", cfg.Answer.Model)
	assert.Equal(t, 3, cfg.Ingest.MaxChunks)
	assert.Equal(t, 100, cfg.Ingest.MinChunkWords)
	assert.Equal(t, throttle.ModeFixed, cfg.Ingest.Throttle.Mode)
	assert.Equal(t, 3*time.Second, cfg.Ingest.Throttle.Delay)
	assert.Equal(t, 2, cfg.Query.TopK)
	assert.Equal(t, 200, cfg.Query.PreviewChars)
	assert.Equal(t, "http://localhost:11434", cfg.Provider("ollama").Endpoint)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
networking:
  listen: "0.0.0.0:9999"
answer:
  provider: anthropic
  model: claude-sonnet-4-5
providers:
  anthropic:
    api_key: "test-key"
ingest:
  throttle:
    mode: token_bucket
    rate_per_second: 2
    burst: 4
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.Networking.Listen)
	assert.Equal(t, "anthropic", cfg.Answer.Provider)
	assert.Equal(t, "test-key", cfg.Provider("anthropic").APIKey)
	assert.Equal(t, throttle.Config{Mode: throttle.ModeTokenBucket, Delay: 3 * time.Second, RatePerSecond: 2, Burst: 4},
		cfg.Ingest.Throttle.Pacer())
	// Untouched sections keep their defaults.
	assert.Equal(t, "google", cfg.Embedding.Provider)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, fserr.HasCode(err, fserr.CodeConfigLoadReadFailure))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FILESEARCH_NETWORKING_LISTEN", "10.0.0.1:8080")
	t.Setenv("FILESEARCH_QUERY_TOP_K", "5")
	t.Setenv("FILESEARCH_INGEST_THROTTLE_DELAY", "250ms")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, 5, cfg.Query.TopK)
	assert.Equal(t, 250*time.Millisecond, cfg.Ingest.Throttle.Delay)
}

func TestLoad_VendorKeyVariables(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-secret")
	t.Setenv("OPENAI_API_KEY", "openai-secret")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini-secret", cfg.Provider("google").APIKey)
	assert.Equal(t, "openai-secret", cfg.Provider("openai").APIKey)
}

func TestLoad_PrefixedKeyWinsOverVendorVariable(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "vendor")
	t.Setenv("FILESEARCH_PROVIDERS_GOOGLE_API_KEY", "prefixed")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Provider("google").APIKey)
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	path := writeConfig(t, "query:\n  top_k: 0\n")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.True(t, fserr.HasCode(err, fserr.CodeConfigValidateInvalidValue))
	assert.Contains(t, err.Error(), "query.top_k")
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("embedding.provider", "ollama")
	v.Set("embedding.model", "nomic-embed-text")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
}

// validConfig returns a config that passes all validation.
func validConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.Empty(t, validConfig(t).Validate())
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty listen", func(c *config.Config) { c.Networking.Listen = "" }, "networking.listen must not be empty"},
		{"listen without port", func(c *config.Config) { c.Networking.Listen = "localhost" }, "valid host:port"},
		{"listen port not a number", func(c *config.Config) { c.Networking.Listen = "localhost:http" }, "must be a number"},
		{"listen port out of range", func(c *config.Config) { c.Networking.Listen = ":70000" }, "between 1 and 65535"},
		{"read timeout", func(c *config.Config) { c.Server.ReadTimeout = 0 }, "server.read_timeout"},
		{"upload limit", func(c *config.Config) { c.Server.MaxUploadBytes = 0 }, "server.max_upload_bytes"},
		{"upload file limit", func(c *config.Config) { c.Server.MaxUploadFiles = 0 }, "server.max_upload_files"},
		{"rate limit burst", func(c *config.Config) { c.Server.RateLimit.RequestsPerSecond = 5 }, "server.rate_limit.burst"},
		{"unknown embedding provider", func(c *config.Config) { c.Embedding.Provider = "cohere" }, "embedding.provider must be one of"},
		{"anthropic cannot embed", func(c *config.Config) { c.Embedding.Provider = "anthropic" }, "has no embedding API"},
		{"empty answer model", func(c *config.Config) { c.Answer.Model = "" }, "answer.model must not be empty"},
		{"max tokens", func(c *config.Config) { c.Answer.MaxTokens = 0 }, "answer.max_tokens"},
		{"max chunks", func(c *config.Config) { c.Ingest.MaxChunks = 0 }, "ingest.max_chunks"},
		{"min chunk words", func(c *config.Config) { c.Ingest.MinChunkWords = -1 }, "ingest.min_chunk_words"},
		{"throttle mode", func(c *config.Config) { c.Ingest.Throttle.Mode = "sometimes" }, "ingest.throttle.mode"},
		{"negative delay", func(c *config.Config) { c.Ingest.Throttle.Delay = -time.Second }, "ingest.throttle.delay"},
		{"bucket rate", func(c *config.Config) {
			c.Ingest.Throttle.Mode = throttle.ModeTokenBucket
			c.Ingest.Throttle.RatePerSecond = 0
		}, "ingest.throttle.rate_per_second"},
		{"top k", func(c *config.Config) { c.Query.TopK = -1 }, "query.top_k"},
		{"preview chars", func(c *config.Config) { c.Query.PreviewChars = -1 }, "query.preview_chars"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.want)
			assert.True(t, fserr.IsInvalidInput(errs[0]))
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Query.TopK = 0
	cfg.Ingest.MaxChunks = 0
	cfg.Logging.Format = "xml"

	assert.Len(t, cfg.Validate(), 3)
}

func TestValidate_ThrottleNoneIgnoresDelay(t *testing.T) {
	cfg := validConfig(t)
	cfg.Ingest.Throttle.Mode = throttle.ModeNone
	cfg.Ingest.Throttle.Delay = -time.Second
	assert.Empty(t, cfg.Validate())
}

func TestRedacted(t *testing.T) {
	cfg := validConfig(t)
	cfg.Providers["google"] = config.ProviderConfig{APIKey: "plain-secret"}
	cfg.Providers["openai"] = config.ProviderConfig{APIKey: "keyring://filesearch/openai"}

	red := cfg.Redacted()
	out, err := yaml.Marshal(red)
	require.NoError(t, err)

	assert.NotContains(t, string(out), "plain-secret")
	assert.Contains(t, string(out), "keyring://filesearch/openai")
	assert.Equal(t, "plain-secret", cfg.Provider("google").APIKey, "original untouched")
	assert.Contains(t, string(out), "top_k: 2")
}

func TestDefaultConfigYAML_MatchesDefaults(t *testing.T) {
	path := writeConfig(t, string(config.DefaultConfigYAML))

	fromFile, err := config.Load(path)
	require.NoError(t, err)
	defaults, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, defaults, fromFile)
}

func TestBootstrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "filesearch.yaml")

	assert.Equal(t, path, config.BootstrapAt(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# filesearch configuration"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Empty(t, config.BootstrapAt(path), "existing file is left alone")
}
