// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Mode selects which embedding backend a Provider talks to.
type Mode string

const (
	// ModeLocal targets a local OpenAI-compatible server (Ollama, vLLM).
	ModeLocal Mode = "local"
	// ModeRemote targets a hosted embedding endpoint over HTTPS.
	ModeRemote Mode = "remote"
)

// Config holds configuration for embedding providers.
type Config struct {
	// Mode selects the backend. Default: ModeLocal.
	Mode Mode

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// APIKey authenticates remote requests. Ignored in local mode.
	APIKey string

	// DocumentPrefix is prepended to every chunk before embedding, for
	// models that distinguish documents from queries.
	DocumentPrefix string

	// MaxRetries is the number of attempts for a failed embedding request.
	// Default: 3
	MaxRetries int

	// RetryBaseDelay is the first backoff delay; it doubles per retry.
	// Default: 1s
	RetryBaseDelay time.Duration

	// MaxConcurrent bounds in-flight embedding requests.
	// Default: 10 local, 100 remote.
	MaxConcurrent int

	// RequestTimeout bounds a single embedding HTTP request.
	// Default: 120s
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithMode selects the embedding backend.
func WithMode(mode Mode) ConfigOption {
	return func(c *Config) {
		c.Mode = mode
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAPIKey sets the API key for remote mode.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithDocumentPrefix sets the instruction prefix prepended to documents.
func WithDocumentPrefix(prefix string) ConfigOption {
	return func(c *Config) {
		c.DocumentPrefix = prefix
	}
}

// WithMaxRetries sets the attempt budget for transient failures.
func WithMaxRetries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithRetryBaseDelay sets the initial backoff delay.
func WithRetryBaseDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryBaseDelay = d
	}
}

// WithMaxConcurrent bounds concurrent embedding requests.
func WithMaxConcurrent(n int) ConfigOption {
	return func(c *Config) {
		c.MaxConcurrent = n
	}
}

// WithRequestTimeout bounds a single embedding request.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible embedding service.
func DefaultConfig() *Config {
	return &Config{
		Mode:           ModeLocal,
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "embeddinggemma",
		DocumentPrefix: "search_document: ",
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
		MaxConcurrent:  10,
		RequestTimeout: 120 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
//
// Example:
//   cfg := NewConfig(
//       WithMode(ModeRemote),
//       WithEmbeddingHost("https://embed.example.com"),
//       WithAPIKey(key),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxConcurrent <= 0 {
		if cfg.Mode == ModeRemote {
			cfg.MaxConcurrent = 100
		} else {
			cfg.MaxConcurrent = 10
		}
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the host if missing, which is required by
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Mode != ModeLocal && c.Mode != ModeRemote {
		return errors.New("ai config: Mode must be local or remote")
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.Mode == ModeRemote && c.APIKey == "" {
		return errors.New("ai config: APIKey is required in remote mode")
	}
	if c.MaxRetries <= 0 {
		return errors.New("ai config: MaxRetries must be positive")
	}
	if c.RetryBaseDelay <= 0 {
		return errors.New("ai config: RetryBaseDelay must be positive")
	}
	return nil
}
