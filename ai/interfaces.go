package ai

import (
	"context"
	"io"
)

// Transcriber converts recorded speech to text.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe reads an audio clip and returns the recognized utterance.
	// The filename is a hint for the audio container format (e.g. "clip.wav").
	// Returns an error if the transcription service fails.
	Transcribe(ctx context.Context, audio io.Reader, filename string) (*SpeechResult, error)
}

// EntityExtractor recognizes typed entities in an utterance.
// Implementations must be thread-safe for concurrent use.
type EntityExtractor interface {
	// ExtractEntities analyzes an utterance and returns the entities found in it,
	// each resolved to one or more canonical values.
	// Returns an empty entity list if nothing is recognized.
	// Returns an error if entity extraction fails.
	ExtractEntities(ctx context.Context, utterance string) (*EntityResult, error)
}

// AIProvider aggregates the language services for convenient initialization
// and lifecycle management.
type AIProvider interface {
	// Transcriber returns the speech transcription service.
	Transcriber() Transcriber

	// EntityExtractor returns the entity extraction service.
	EntityExtractor() EntityExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
