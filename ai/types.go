package ai

import "github.com/poiesic/productfinder/core"

// RecognitionStatus reports the outcome of a transcription.
type RecognitionStatus string

const (
	// RecognitionSuccess means the audio produced an utterance.
	RecognitionSuccess RecognitionStatus = "success"
	// RecognitionNoMatch means speech was detected but not recognized.
	RecognitionNoMatch RecognitionStatus = "no_match"
)

// SpeechHeader carries the recognized text of a speech result.
type SpeechHeader struct {
	// Name is the transcribed utterance.
	Name   string            `json:"name"`
	Status RecognitionStatus `json:"status,omitempty"`
}

// SpeechResult is the output of a Transcriber. Only the header text is
// consumed by product search.
type SpeechResult struct {
	Header SpeechHeader `json:"header"`
}

// NewSpeechResult wraps already-transcribed text as a successful speech result.
func NewSpeechResult(text string) SpeechResult {
	return SpeechResult{Header: SpeechHeader{Name: text, Status: RecognitionSuccess}}
}

// EntityResult is the output of an EntityExtractor.
type EntityResult struct {
	Query    string        `json:"query"`
	Entities []core.Entity `json:"entities"`
}

// DefaultEntityTypes are the entity categories extracted when no scope
// configuration narrows them down.
var DefaultEntityTypes = []string{
	"category",
	"color",
	"size",
	"sex",
}
