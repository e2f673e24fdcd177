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
)

// Config holds configuration for the language service providers.
type Config struct {
	// TranscriberHost is the base URL for the speech transcription API.
	// Example: "http://localhost:8000/v1" for a local OpenAI-compatible whisper server
	TranscriberHost string

	// ExtractorHost is the base URL for the chat API used for entity extraction.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	ExtractorHost string

	// TranscriberModel is the model identifier used for speech transcription.
	// Example: "whisper-1", "Systran/faster-whisper-small"
	TranscriberModel string

	// ExtractorModel is the model identifier used for entity extraction.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	ExtractorModel string

	// APIKey is sent as the bearer token. Local servers usually accept any value.
	// Default: "none"
	APIKey string

	// EntityTypes lists the entity categories the extractor may emit.
	// Usually the entity types of the configured scope mappings.
	EntityTypes []string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithTranscriberHost sets the transcription service host URL.
func WithTranscriberHost(host string) ConfigOption {
	return func(c *Config) {
		c.TranscriberHost = host
	}
}

// WithExtractorHost sets the extraction service host URL.
func WithExtractorHost(host string) ConfigOption {
	return func(c *Config) {
		c.ExtractorHost = host
	}
}

// WithHost sets both transcriber and extractor hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.TranscriberHost = host
		c.ExtractorHost = host
	}
}

// WithTranscriberModel sets the transcription model identifier.
func WithTranscriberModel(model string) ConfigOption {
	return func(c *Config) {
		c.TranscriberModel = model
	}
}

// WithExtractorModel sets the extraction model identifier.
func WithExtractorModel(model string) ConfigOption {
	return func(c *Config) {
		c.ExtractorModel = model
	}
}

// WithAPIKey sets the bearer token sent to both services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEntityTypes sets the entity categories the extractor may emit.
func WithEntityTypes(types ...string) ConfigOption {
	return func(c *Config) {
		c.EntityTypes = append([]string(nil), types...)
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both transcriber and extractor use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		TranscriberHost:  defaultHost,
		ExtractorHost:    defaultHost,
		TranscriberModel: "whisper-1",
		ExtractorModel:   "qwen2.5:3b",
		APIKey:           "none",
		EntityTypes:      append([]string(nil), DefaultEntityTypes...),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithExtractorHost("http://localhost:11434/v1"),
//	    WithTranscriberHost("http://localhost:8000/v1"),
//	    WithEntityTypes("color", "size"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.TranscriberHost = normalizeHost(c.TranscriberHost)
	c.ExtractorHost = normalizeHost(c.ExtractorHost)
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.TranscriberHost == "" {
		return errors.New("ai config: TranscriberHost is required")
	}
	if c.ExtractorHost == "" {
		return errors.New("ai config: ExtractorHost is required")
	}
	if c.TranscriberModel == "" {
		return errors.New("ai config: TranscriberModel is required")
	}
	if c.ExtractorModel == "" {
		return errors.New("ai config: ExtractorModel is required")
	}
	if len(c.EntityTypes) == 0 {
		return errors.New("ai config: EntityTypes must not be empty")
	}
	for _, t := range c.EntityTypes {
		if strings.TrimSpace(t) == "" {
			return errors.New("ai config: EntityTypes must not contain blank entries")
		}
	}
	return nil
}
