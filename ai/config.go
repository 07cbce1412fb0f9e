// Copyright 2026 Glyphica Labs
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

// Config holds configuration for the embedding provider.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local
	// OpenAI-compatible server
	Host string

	// Model is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	Model string

	// APIKey authenticates against hosted embedding services.
	// Local OpenAI-compatible services ignore it; "none" is sent.
	APIKey string

	// MaxAttempts is the number of model load attempts before the
	// provider permanently switches to fallback mode.
	// Default: 3
	MaxAttempts int

	// RetryBaseDelay is the base delay for exponential backoff
	// between load attempts (baseDelay * 2^attempt).
	// Default: 1s
	RetryBaseDelay time.Duration

	// AttemptTimeout bounds a single model load attempt.
	// Default: 30s
	AttemptTimeout time.Duration

	// FallbackDimension is the vector length produced in fallback
	// mode. It should match the real model's output length so a
	// store never mixes vector lengths.
	// Default: 384
	FallbackDimension int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the API key for hosted embedding services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithMaxAttempts sets the number of model load attempts.
func WithMaxAttempts(attempts int) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = attempts
	}
}

// WithRetryBaseDelay sets the base delay for exponential backoff.
func WithRetryBaseDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryBaseDelay = delay
	}
}

// WithAttemptTimeout bounds a single model load attempt.
func WithAttemptTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.AttemptTimeout = timeout
	}
}

// WithFallbackDimension sets the fallback vector length.
func WithFallbackDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.FallbackDimension = dim
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		Host:              "http://localhost:11434/v1",
		Model:             "embeddinggemma",
		APIKey:            "none",
		MaxAttempts:       3,
		RetryBaseDelay:    1 * time.Second,
		AttemptTimeout:    30 * time.Second,
		FallbackDimension: 384,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. It
// automatically adds the /v1 suffix to the host if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.MaxAttempts < 1 {
		return errors.New("ai config: MaxAttempts must be at least 1")
	}
	if c.FallbackDimension < 1 {
		return errors.New("ai config: FallbackDimension must be at least 1")
	}
	return nil
}
