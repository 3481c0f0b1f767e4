// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	"errors"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/sigil-dev/filesearch/internal/throttle"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. FILESEARCH_QUERY_TOP_K.
const EnvPrefix = "FILESEARCH"

// Providers known to the binary.
var KnownProviders = []string{"anthropic", "google", "ollama", "openai"}

// Config is the top-level filesearch configuration.
type Config struct {
	Networking NetworkingConfig          `mapstructure:"networking" yaml:"networking"`
	Server     ServerConfig              `mapstructure:"server" yaml:"server"`
	Providers  map[string]ProviderConfig `mapstructure:"providers" yaml:"providers"`
	Embedding  EmbeddingConfig           `mapstructure:"embedding" yaml:"embedding"`
	Answer     AnswerConfig              `mapstructure:"answer" yaml:"answer"`
	Ingest     IngestConfig              `mapstructure:"ingest" yaml:"ingest"`
	Query      QueryConfig               `mapstructure:"query" yaml:"query"`
	Logging    LoggingConfig             `mapstructure:"logging" yaml:"logging"`
}

// NetworkingConfig controls where the HTTP server listens.
type NetworkingConfig struct {
	Listen      string   `mapstructure:"listen" yaml:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

type ServerConfig struct {
	ReadTimeout    time.Duration   `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration   `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxUploadBytes int64           `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	MaxUploadFiles int             `mapstructure:"max_upload_files" yaml:"max_upload_files"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig limits requests per client IP. Zero disables the limit.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// ProviderConfig holds credentials and endpoint for one backend. APIKey may
// be a keyring:// reference.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

type EmbeddingConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model"`
	TaskType string `mapstructure:"task_type" yaml:"task_type"`
}

type AnswerConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"`
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

type IngestConfig struct {
	MaxChunks     int            `mapstructure:"max_chunks" yaml:"max_chunks"`
	MinChunkWords int            `mapstructure:"min_chunk_words" yaml:"min_chunk_words"`
	Throttle      ThrottleConfig `mapstructure:"throttle" yaml:"throttle"`
}

// ThrottleConfig paces embedding calls during ingest.
type ThrottleConfig struct {
	Mode          string        `mapstructure:"mode" yaml:"mode"`
	Delay         time.Duration `mapstructure:"delay" yaml:"delay"`
	RatePerSecond float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	Burst         int           `mapstructure:"burst" yaml:"burst"`
}

// Pacer converts the throttle section into a throttle.Config.
func (t ThrottleConfig) Pacer() throttle.Config {
	return throttle.Config{
		Mode:          t.Mode,
		Delay:         t.Delay,
		RatePerSecond: t.RatePerSecond,
		Burst:         t.Burst,
	}
}

type QueryConfig struct {
	TopK         int `mapstructure:"top_k" yaml:"top_k"`
	PreviewChars int `mapstructure:"preview_chars" yaml:"preview_chars"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("networking.listen", "127.0.0.1:8000")
	v.SetDefault("networking.cors_origins", []string{"*"})

	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute)
	v.SetDefault("server.max_upload_bytes", int64(32<<20))
	// Each file costs up to ingest.max_chunks embeds paced by
	// ingest.throttle.delay; 20 x 3 x 3s stays under write_timeout.
	v.SetDefault("server.max_upload_files", 20)
	v.SetDefault("server.rate_limit.requests_per_second", 0.0)
	v.SetDefault("server.rate_limit.burst", 0)

	// Provider keys need defaults so AutomaticEnv can see them during Unmarshal.
	for _, name := range KnownProviders {
		v.SetDefault("providers."+name+".api_key", "")
		v.SetDefault("providers."+name+".endpoint", "")
	}
	v.SetDefault("providers.ollama.endpoint", "http://localhost:11434")

	v.SetDefault("embedding.provider", "google")
	v.SetDefault("embedding.model", "gemini-embedding-001")
	v.SetDefault("embedding.task_type", "RETRIEVAL_DOCUMENT")

	v.SetDefault("answer.provider", "google")
	v.SetDefault("answer.model", "gemini-2.5-flash")
	v.SetDefault("answer.max_tokens", 1024)

	v.SetDefault("ingest.max_chunks", 3)
	v.SetDefault("ingest.min_chunk_words", 100)
	v.SetDefault("ingest.throttle.mode", throttle.ModeFixed)
	v.SetDefault("ingest.throttle.delay", throttle.DefaultDelay)
	v.SetDefault("ingest.throttle.rate_per_second", 0.33)
	v.SetDefault("ingest.throttle.burst", 1)

	v.SetDefault("query.top_k", 2)
	v.SetDefault("query.preview_chars", 200)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// SetupEnv enables FILESEARCH_* overrides and the conventional vendor key
// variables (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY).
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("providers.google.api_key", EnvPrefix+"_PROVIDERS_GOOGLE_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("providers.openai.api_key", EnvPrefix+"_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.anthropic.api_key", EnvPrefix+"_PROVIDERS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
}

// Load reads configuration from path (or defaults only when empty) with
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fserr.Errorf(fserr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the settings already resolved by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fserr.Errorf(fserr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fserr.Errorf(fserr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Provider returns the settings for name, or a zero value.
func (c *Config) Provider(name string) ProviderConfig {
	return c.Providers[name]
}

// Validate checks the configuration for logical errors and returns every
// problem found.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateModels()...)
	errs = append(errs, c.validateIngest()...)
	errs = append(errs, c.validateQuery()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func invalid(format string, args ...any) error {
	return fserr.Errorf(fserr.CodeConfigValidateInvalidValue, "config: "+format, args...)
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		return append(errs, invalid("networking.listen must not be empty"))
	}

	_, portStr, err := net.SplitHostPort(c.Networking.Listen)
	if err != nil {
		return append(errs, invalid("networking.listen must be a valid host:port address, got %q: %w", c.Networking.Listen, err))
	}
	port, err := strconv.Atoi(portStr)
	switch {
	case err != nil:
		errs = append(errs, invalid("networking.listen port must be a number, got %q", portStr))
	case port < 1 || port > 65535:
		errs = append(errs, invalid("networking.listen port must be between 1 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, invalid("server.read_timeout must be greater than 0, got %s", c.Server.ReadTimeout))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, invalid("server.write_timeout must be greater than 0, got %s", c.Server.WriteTimeout))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, invalid("server.max_upload_bytes must be greater than 0, got %d", c.Server.MaxUploadBytes))
	}
	if c.Server.MaxUploadFiles <= 0 {
		errs = append(errs, invalid("server.max_upload_files must be greater than 0, got %d", c.Server.MaxUploadFiles))
	}
	if c.Server.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, invalid("server.rate_limit.requests_per_second must not be negative, got %g", c.Server.RateLimit.RequestsPerSecond))
	}
	if c.Server.RateLimit.RequestsPerSecond > 0 && c.Server.RateLimit.Burst <= 0 {
		errs = append(errs, invalid("server.rate_limit.burst must be greater than 0 when rate limiting is enabled, got %d", c.Server.RateLimit.Burst))
	}

	return errs
}

func (c *Config) validateModels() []error {
	var errs []error

	check := func(section, name, model string) {
		if !slices.Contains(KnownProviders, name) {
			errs = append(errs, invalid("%s.provider must be one of %v, got %q", section, KnownProviders, name))
		}
		if model == "" {
			errs = append(errs, invalid("%s.model must not be empty", section))
		}
	}
	check("embedding", c.Embedding.Provider, c.Embedding.Model)
	check("answer", c.Answer.Provider, c.Answer.Model)

	if c.Embedding.Provider == "anthropic" {
		errs = append(errs, invalid("embedding.provider %q has no embedding API", c.Embedding.Provider))
	}
	if c.Answer.MaxTokens <= 0 {
		errs = append(errs, invalid("answer.max_tokens must be greater than 0, got %d", c.Answer.MaxTokens))
	}

	return errs
}

func (c *Config) validateIngest() []error {
	var errs []error

	if c.Ingest.MaxChunks <= 0 {
		errs = append(errs, invalid("ingest.max_chunks must be greater than 0, got %d", c.Ingest.MaxChunks))
	}
	if c.Ingest.MinChunkWords <= 0 {
		errs = append(errs, invalid("ingest.min_chunk_words must be greater than 0, got %d", c.Ingest.MinChunkWords))
	}

	t := c.Ingest.Throttle
	switch t.Mode {
	case throttle.ModeNone:
	case throttle.ModeFixed:
		if t.Delay < 0 {
			errs = append(errs, invalid("ingest.throttle.delay must not be negative, got %s", t.Delay))
		}
	case throttle.ModeTokenBucket:
		if t.RatePerSecond <= 0 {
			errs = append(errs, invalid("ingest.throttle.rate_per_second must be greater than 0, got %g", t.RatePerSecond))
		}
		if t.Burst <= 0 {
			errs = append(errs, invalid("ingest.throttle.burst must be greater than 0, got %d", t.Burst))
		}
	default:
		errs = append(errs, invalid("ingest.throttle.mode must be one of [%s, %s, %s], got %q",
			throttle.ModeFixed, throttle.ModeTokenBucket, throttle.ModeNone, t.Mode))
	}

	return errs
}

func (c *Config) validateQuery() []error {
	var errs []error

	if c.Query.TopK <= 0 {
		errs = append(errs, invalid("query.top_k must be greater than 0, got %d", c.Query.TopK))
	}
	if c.Query.PreviewChars < 0 {
		errs = append(errs, invalid("query.preview_chars must not be negative, got %d", c.Query.PreviewChars))
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		errs = append(errs, invalid("logging.level must be a valid level, got %q", c.Logging.Level))
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		errs = append(errs, invalid("logging.format must be one of [console, json], got %q", c.Logging.Format))
	}

	return errs
}

// Redacted returns a copy with every API key masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Providers = make(map[string]ProviderConfig, len(c.Providers))
	for name, p := range c.Providers {
		if p.APIKey != "" && !strings.HasPrefix(p.APIKey, "keyring://") {
			p.APIKey = "********"
		}
		out.Providers[name] = p
	}
	out.Networking.CORSOrigins = slices.Clone(c.Networking.CORSOrigins)
	return &out
}
