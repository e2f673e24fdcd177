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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/productfinder/ai"
	"github.com/poiesic/productfinder/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxParseAttempts bounds how often a malformed model response is retried.
const maxParseAttempts = 3

// EntityExtractor implements ai.EntityExtractor using OpenAI-compatible chat APIs.
type EntityExtractor struct {
	client       llms.Model
	entityTypes  []string
	systemPrompt string
	logger       *slog.Logger
}

// extractedEntity is an internal type used for JSON unmarshaling.
// It matches the structure requested from the LLM.
type extractedEntity struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Canonical string `json:"canonical"`
}

// extraction is the wrapper structure for the LLM's JSON response.
type extraction struct {
	Entities []extractedEntity `json:"entities"`
}

// newEntityExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEntityExtractor(config *ai.Config) (*EntityExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return newEntityExtractorWithModel(client, config.EntityTypes), nil
}

// newEntityExtractorWithModel wires an extractor around any llms.Model.
func newEntityExtractorWithModel(client llms.Model, entityTypes []string) *EntityExtractor {
	types := append([]string(nil), entityTypes...)
	return &EntityExtractor{
		client:       client,
		entityTypes:  types,
		systemPrompt: buildSystemPrompt(types),
		logger:       slog.Default().With("component", "openai-extractor"),
	}
}

// NewEntityExtractor creates a new entity extractor using the provided configuration.
//
// Returns ai.EntityExtractor interface to enforce abstraction.
func NewEntityExtractor(config *ai.Config) (ai.EntityExtractor, error) {
	return newEntityExtractor(config)
}

// ExtractEntities asks the model for product attributes in the utterance.
// Entities of unknown types and entities without a canonical value are dropped.
func (e *EntityExtractor) ExtractEntities(ctx context.Context, utterance string) (*ai.EntityResult, error) {
	result := &ai.EntityResult{Query: utterance, Entities: []core.Entity{}}

	text := scrubUtterance(utterance)
	if text == "" {
		return result, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(e.systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var parsed extraction
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return result, nil
		}

		responseText := repairJSON(stripCodeFence(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	result.Entities = e.toEntities(parsed.Entities)
	e.logger.Debug("extracted entities",
		"total", len(parsed.Entities),
		"kept", len(result.Entities))
	return result, nil
}

// toEntities converts model output to domain entities, merging repeated
// mentions of the same type and text into one entity with several resolutions.
func (e *EntityExtractor) toEntities(raw []extractedEntity) []core.Entity {
	entities := make([]core.Entity, 0, len(raw))
	for _, r := range raw {
		entityType := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(r.Type)), " ", "_")
		canonical := strings.TrimSpace(r.Canonical)
		if canonical == "" || !slices.Contains(e.entityTypes, entityType) {
			continue
		}

		idx := slices.IndexFunc(entities, func(x core.Entity) bool {
			return x.Type == entityType && x.Text == r.Text
		})
		if idx >= 0 {
			if !slices.ContainsFunc(entities[idx].Resolutions, func(res core.Resolution) bool { return res.Value == canonical }) {
				entities[idx].Resolutions = append(entities[idx].Resolutions, core.Resolution{Value: canonical})
			}
			continue
		}

		entities = append(entities, core.Entity{
			Type:        entityType,
			Text:        r.Text,
			Resolutions: []core.Resolution{{Value: canonical}},
		})
	}
	return entities
}
