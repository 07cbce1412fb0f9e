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


// Package config loads the application configuration from a YAML file,
// overlaying user settings on top of defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glyphica/iconsearch/vectorstore"
)

// DefaultFileName is looked up in the working directory when no
// explicit path is given.
const DefaultFileName = "iconsearch.yaml"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig       `yaml:"server"`
	Catalog   CatalogConfig      `yaml:"catalog"`
	Embedding EmbeddingConfig    `yaml:"embedding"`
	Store     vectorstore.Config `yaml:"store"`
	Storage   StorageConfig      `yaml:"storage"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// AuthTokenEnv names the environment variable holding the bearer
	// token for administrative endpoints. Empty leaves them disabled.
	AuthTokenEnv string `yaml:"auth_token_env"`
}

// CatalogConfig holds icon catalog settings.
type CatalogConfig struct {
	// Dir is the root directory of per-library icon sets.
	Dir string `yaml:"dir"`

	// Libraries are loaded when a request does not name its own set.
	Libraries []string `yaml:"libraries"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	Host              string `yaml:"host"`
	Model             string `yaml:"model"`
	APIKeyEnv         string `yaml:"api_key_env"`
	MaxAttempts       int    `yaml:"max_attempts"`
	FallbackDimension int    `yaml:"fallback_dimension"`
}

// StorageConfig holds durable storage settings.
type StorageConfig struct {
	// DataDir is the BadgerDB directory for the vector cache and tag
	// overlays. Empty means in-memory.
	DataDir string `yaml:"data_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns the default configuration: an embedded store under
// ./data, the two bundled libraries, and a local OpenAI-compatible
// embedding service.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:   "127.0.0.1:8787",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			AuthTokenEnv: "ICONSEARCH_ADMIN_TOKEN",
		},
		Catalog: CatalogConfig{
			Dir:       "catalog",
			Libraries: []string{"bootstrap", "lucide"},
		},
		Embedding: EmbeddingConfig{
			Host:              "http://localhost:11434/v1",
			Model:             "embeddinggemma",
			APIKeyEnv:         "ICONSEARCH_EMBED_API_KEY",
			MaxAttempts:       3,
			FallbackDimension: 384,
		},
		Store: vectorstore.Config{
			Type: vectorstore.BackendEmbedded,
			Embedded: &vectorstore.EmbeddedConfig{
				Path:      filepath.Join("data", "vectors"),
				StoreName: "icons",
			},
		},
		Storage: StorageConfig{
			DataDir: filepath.Join("data", "store"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file, overlaying it on the
// defaults. A missing file yields the defaults; a present but invalid
// file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// EmbedAPIKey resolves the embedding API key from the configured
// environment variable.
func (c *Config) EmbedAPIKey() string {
	if c.Embedding.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Embedding.APIKeyEnv)
}

// AdminToken resolves the administrative bearer token from the
// configured environment variable.
func (c *Config) AdminToken() string {
	if c.Server.AuthTokenEnv == "" {
		return ""
	}
	return os.Getenv(c.Server.AuthTokenEnv)
}
