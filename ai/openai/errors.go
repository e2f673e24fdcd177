package openai

import "errors"

// ErrTranscriptionFailed is returned when the transcription endpoint rejects a request
// or answers with a body that cannot be decoded.
var ErrTranscriptionFailed = errors.New("transcription failed")
