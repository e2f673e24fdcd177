package openai

import (
	"context"
	"testing"

	"github.com/poiesic/productfinder/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms/fake"
)

func TestExtractEntities_ParsesModelOutput(t *testing.T) {
	llm := fake.NewFakeLLM([]string{
		"```json\n{\"entities\": [" +
			"{\"type\": \"Color\", \"text\": \"red\", \"canonical\": \"Red\"}," +
			"{\"type\": \"category\", \"text\": \"shirt\", \"canonical\": \"Shirts\"}," +
			"{\"type\": \"brand\", \"text\": \"acme\", \"canonical\": \"Acme\"}," +
			"]}\n```",
	})
	extractor := newEntityExtractorWithModel(llm, ai.DefaultEntityTypes)

	result, err := extractor.ExtractEntities(context.Background(), "A red shirt, please!")
	require.NoError(t, err)
	assert.Equal(t, "A red shirt, please!", result.Query)
	require.Len(t, result.Entities, 2)

	assert.Equal(t, "color", result.Entities[0].Type)
	canonical, ok := result.Entities[0].Canonical()
	require.True(t, ok)
	assert.Equal(t, "Red", canonical)
	assert.Equal(t, "category", result.Entities[1].Type)
}

func TestExtractEntities_MergesResolutions(t *testing.T) {
	llm := fake.NewFakeLLM([]string{
		`{"entities": [{"type": "size", "text": "big", "canonical": "L"}, {"type": "size", "text": "big", "canonical": "XL"}, {"type": "size", "text": "big", "canonical": "L"}]}`,
	})
	extractor := newEntityExtractorWithModel(llm, []string{"size"})

	result, err := extractor.ExtractEntities(context.Background(), "something big")
	require.NoError(t, err)
	require.Len(t, result.Entities, 1)
	require.Len(t, result.Entities[0].Resolutions, 2)
	assert.Equal(t, "L", result.Entities[0].Resolutions[0].Value)
	assert.Equal(t, "XL", result.Entities[0].Resolutions[1].Value)
}

func TestExtractEntities_DropsEmptyCanonical(t *testing.T) {
	llm := fake.NewFakeLLM([]string{
		`{"entities": [{"type": "color", "text": "reddish", "canonical": "  "}]}`,
	})
	extractor := newEntityExtractorWithModel(llm, []string{"color"})

	result, err := extractor.ExtractEntities(context.Background(), "reddish")
	require.NoError(t, err)
	assert.Empty(t, result.Entities)
}

func TestExtractEntities_RetriesMalformedResponse(t *testing.T) {
	llm := fake.NewFakeLLM([]string{
		`not json at all`,
		`{"entities": [{"type": "sex", "text": "women's", "canonical": "women"}]}`,
	})
	extractor := newEntityExtractorWithModel(llm, ai.DefaultEntityTypes)

	result, err := extractor.ExtractEntities(context.Background(), "women's jacket")
	require.NoError(t, err)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "sex", result.Entities[0].Type)
}

func TestExtractEntities_GivesUpAfterRetries(t *testing.T) {
	llm := fake.NewFakeLLM([]string{`garbage`})
	extractor := newEntityExtractorWithModel(llm, ai.DefaultEntityTypes)

	_, err := extractor.ExtractEntities(context.Background(), "blue shoes")
	assert.Error(t, err)
}

func TestExtractEntities_EmptyUtteranceSkipsModel(t *testing.T) {
	// An unconfigured fake errors on any call, so success proves it was not called.
	extractor := newEntityExtractorWithModel(fake.NewFakeLLM(nil), ai.DefaultEntityTypes)

	result, err := extractor.ExtractEntities(context.Background(), " ?! ")
	require.NoError(t, err)
	assert.Empty(t, result.Entities)
}

func TestExtractEntities_ModelError(t *testing.T) {
	extractor := newEntityExtractorWithModel(fake.NewFakeLLM(nil), ai.DefaultEntityTypes)

	_, err := extractor.ExtractEntities(context.Background(), "red shirt")
	assert.Error(t, err)
}

func TestBuildSystemPrompt_ListsEntityTypes(t *testing.T) {
	prompt := buildSystemPrompt([]string{"color", "material"})
	assert.Contains(t, prompt, "color")
	assert.Contains(t, prompt, "material")
}

func TestScrubUtterance(t *testing.T) {
	assert.Equal(t, "red shirt size M", scrubUtterance("  red shirt,   size M! "))
	assert.Equal(t, "", scrubUtterance("?!."))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
