package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/productfinder/ai"
	"github.com/poiesic/productfinder/core"
)

// DefaultVocabulary maps lowercase words to the entity type the default
// extractor assigns them.
var DefaultVocabulary = map[string]string{
	"red":    "color",
	"blue":   "color",
	"green":  "color",
	"black":  "color",
	"white":  "color",
	"small":  "size",
	"medium": "size",
	"large":  "size",
	"men":    "sex",
	"women":  "sex",
	"shirt":  "category",
	"shoes":  "category",
	"jacket": "category",
}

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, words found in Vocabulary become entities.
	ExtractEntitiesFunc func(ctx context.Context, utterance string) (*ai.EntityResult, error)

	// Vocabulary overrides DefaultVocabulary when non-nil.
	Vocabulary map[string]string

	mu        sync.Mutex
	callCount int
}

// NewMockEntityExtractor creates a mock entity extractor with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities recognizes vocabulary words in the utterance.
// Each recognized word resolves to itself as the canonical value.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, utterance string) (*ai.EntityResult, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.ExtractEntitiesFunc
	vocabulary := m.Vocabulary
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, utterance)
	}
	if vocabulary == nil {
		vocabulary = DefaultVocabulary
	}

	result := &ai.EntityResult{Query: utterance, Entities: []core.Entity{}}
	for _, word := range strings.Fields(strings.ToLower(utterance)) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		entityType, ok := vocabulary[word]
		if !ok {
			continue
		}
		result.Entities = append(result.Entities, core.Entity{
			Type:        entityType,
			Text:        word,
			Resolutions: []core.Resolution{{Value: word}},
		})
	}
	return result, nil
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
	m.Vocabulary = nil
}
