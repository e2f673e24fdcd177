package mock

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/poiesic/productfinder/ai"
)

// MockTranscriber is a test double for ai.Transcriber.
// It allows custom behavior injection via function fields.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, the audio payload is read as UTF-8 text and returned verbatim.
	TranscribeFunc func(ctx context.Context, audio io.Reader, filename string) (*ai.SpeechResult, error)

	mu        sync.Mutex
	callCount int
}

// NewMockTranscriber creates a mock transcriber with default behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe returns the payload as the recognized utterance.
// An empty payload yields a no-match result.
func (m *MockTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (*ai.SpeechResult, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.TranscribeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, audio, filename)
	}

	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return &ai.SpeechResult{Header: ai.SpeechHeader{Status: ai.RecognitionNoMatch}}, nil
	}
	result := ai.NewSpeechResult(text)
	return &result, nil
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockTranscriber) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.TranscribeFunc = nil
}
