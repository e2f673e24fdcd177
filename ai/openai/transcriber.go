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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/productfinder/ai"
)

const defaultTranscribeTimeout = 60 * time.Second

// Transcriber implements ai.Transcriber against the OpenAI-compatible
// /audio/transcriptions endpoint (whisper.cpp, faster-whisper-server, OpenAI).
type Transcriber struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// transcription is the JSON body returned by the endpoint.
type transcription struct {
	Text string `json:"text"`
}

// newTranscriber is an internal constructor that returns the concrete type.
func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Transcriber{
		endpoint: strings.TrimSuffix(config.TranscriberHost, "/") + "/audio/transcriptions",
		model:    config.TranscriberModel,
		apiKey:   config.APIKey,
		client:   &http.Client{Timeout: defaultTranscribeTimeout},
		logger:   slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a new transcriber using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe uploads the audio clip and returns the recognized text.
// An empty transcript is reported as a no-match result, not an error.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (*ai.SpeechResult, error) {
	if filename == "" {
		filename = "audio.wav"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, err
	}
	if err := form.WriteField("model", t.model); err != nil {
		return nil, err
	}
	if err := form.WriteField("response_format", "json"); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	t.logger.Debug("transcribing audio", "filename", filename, "bytes", body.Len())
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("transcription request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrTranscriptionFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out transcription
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return &ai.SpeechResult{Header: ai.SpeechHeader{Status: ai.RecognitionNoMatch}}, nil
	}
	result := ai.NewSpeechResult(text)
	return &result, nil
}
