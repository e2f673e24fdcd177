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


// Package config loads the productfinder configuration.
// Supports YAML files, .env files, and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/productfinder/ai"
	"github.com/poiesic/productfinder/core"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "PRODUCTFINDER_"

// Config holds all configuration for productfinder.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Search    SearchConfig    `yaml:"search"`
	AI        AIConfig        `yaml:"ai"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxAudioBytes    int64         `yaml:"max_audio_bytes"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// StorageConfig holds catalog storage settings.
type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// SearchConfig holds product search settings.
type SearchConfig struct {
	Index          string             `yaml:"index"`
	Entities       []core.EntityScope `yaml:"entities"`
	WorkerPoolSize int                `yaml:"worker_pool_size"`
}

// AIConfig holds transcription and entity extraction settings.
// Host applies to both services unless a service host is set.
type AIConfig struct {
	Host             string `yaml:"host"`
	TranscriberHost  string `yaml:"transcriber_host"`
	ExtractorHost    string `yaml:"extractor_host"`
	TranscriberModel string `yaml:"transcriber_model"`
	ExtractorModel   string `yaml:"extractor_model"`
	APIKey           string `yaml:"api_key"`
	Mock             bool   `yaml:"mock"`
}

// IngestionConfig holds catalog import settings.
type IngestionConfig struct {
	BatchSize      int           `yaml:"batch_size"`
	PoolSize       int           `yaml:"pool_size"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path loads the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadEnvFiles loads variables from .env files into the environment without
// overriding variables that are already set. Missing files are ignored;
// with no arguments ./.env is tried.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// DefaultConfig returns a configuration with defaults for local development.
func DefaultConfig() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			IdleTimeout:      120 * time.Second,
			RequestTimeout:   60 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxAudioBytes:    10 << 20,
		},
		Storage: StorageConfig{
			Path: "./productfinder.db",
		},
		Search: SearchConfig{
			Index: "products",
			Entities: []core.EntityScope{
				{Entity: "category", Scope: "category"},
				{Entity: "color", Scope: "colors", Sku: "color"},
				{Entity: "size", Scope: "sizes", Sku: "size"},
				{Entity: "sex", Scope: "sex"},
			},
		},
		AI: AIConfig{
			Host:             aiDefaults.ExtractorHost,
			TranscriberModel: aiDefaults.TranscriberModel,
			ExtractorModel:   aiDefaults.ExtractorModel,
			APIKey:           aiDefaults.APIKey,
		},
		Ingestion: IngestionConfig{
			BatchSize:      100,
			MaxAttempts:    5,
			RetryBaseDelay: 50 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required unless in_memory is set")
	}

	if c.Search.Index == "" {
		return fmt.Errorf("search index is required")
	}

	if err := core.ValidateEntityScopes(c.Search.Entities); err != nil {
		return err
	}

	if c.Ingestion.BatchSize < 1 {
		return fmt.Errorf("ingestion batch_size must be positive")
	}

	if c.Ingestion.MaxAttempts < 1 {
		return fmt.Errorf("ingestion max_attempts must be positive")
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	if !c.AI.Mock {
		if err := c.AIProviderConfig().Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ScopeTable returns the immutable entity scope table.
func (c *Config) ScopeTable() *core.ScopeTable {
	return core.NewScopeTable(c.Search.Entities...)
}

// AIProviderConfig builds the AI provider configuration. The extractor is
// asked for the configured entity types.
func (c *Config) AIProviderConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithTranscriberModel(c.AI.TranscriberModel),
		ai.WithExtractorModel(c.AI.ExtractorModel),
		ai.WithAPIKey(c.AI.APIKey),
	}
	if c.AI.Host != "" {
		opts = append(opts, ai.WithHost(c.AI.Host))
	}
	if c.AI.TranscriberHost != "" {
		opts = append(opts, ai.WithTranscriberHost(c.AI.TranscriberHost))
	}
	if c.AI.ExtractorHost != "" {
		opts = append(opts, ai.WithExtractorHost(c.AI.ExtractorHost))
	}
	if types := c.ScopeTable().EntityTypes(); len(types) > 0 {
		opts = append(opts, ai.WithEntityTypes(types...))
	}
	return ai.NewConfig(opts...)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := getenv("STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	if v := getenv("STORAGE_IN_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.InMemory = b
		}
	}

	if v := getenv("SEARCH_INDEX"); v != "" {
		cfg.Search.Index = v
	}

	if v := getenv("AI_HOST"); v != "" {
		cfg.AI.Host = v
	}

	if v := getenv("TRANSCRIBER_HOST"); v != "" {
		cfg.AI.TranscriberHost = v
	}

	if v := getenv("EXTRACTOR_HOST"); v != "" {
		cfg.AI.ExtractorHost = v
	}

	if v := getenv("TRANSCRIBER_MODEL"); v != "" {
		cfg.AI.TranscriberModel = v
	}

	if v := getenv("EXTRACTOR_MODEL"); v != "" {
		cfg.AI.ExtractorModel = v
	}

	if v := getenv("API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}

	if v := getenv("AI_MOCK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AI.Mock = b
		}
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func getenv(name string) string {
	return os.Getenv(EnvPrefix + name)
}
