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


package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/productfinder"
	"github.com/poiesic/productfinder/ai"
	"github.com/poiesic/productfinder/ai/mock"
	"github.com/poiesic/productfinder/config"
	"github.com/poiesic/productfinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, provider ai.AIProvider) (*Server, *productfinder.Engine) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Storage.InMemory = true
	cfg.Storage.Path = ""
	cfg.AI.Mock = true
	cfg.Search.WorkerPoolSize = 2
	cfg.Server.MaxAudioBytes = 1024

	var opts []productfinder.EngineOption
	if provider != nil {
		opts = append(opts, productfinder.WithProvider(provider))
	}
	engine, err := productfinder.NewEngine(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	_, err = engine.Catalog().AddProducts(context.Background(), engine.IndexName(),
		&core.Product{
			Key:      "oxford",
			Document: core.Document{
				Name: "Oxford Shirt", Category: "shirt",
				Colors: []string{"red", "blue"}, Sizes: []string{"small", "large"},
			},
			Skus: []core.ProductSku{
				{ProductNumber: "OX-RS", Attributes: []core.Attribute{{Name: "color", Value: "red"}, {Name: "size", Value: "small"}}},
				{ProductNumber: "OX-RL", Attributes: []core.Attribute{{Name: "color", Value: "red"}, {Name: "size", Value: "large"}}},
				{ProductNumber: "OX-BL", Attributes: []core.Attribute{{Name: "color", Value: "blue"}, {Name: "size", Value: "large"}}},
			},
		},
		&core.Product{
			Key:      "runner",
			Document: core.Document{Name: "Trail Runner", Category: "shoes", Colors: []string{"black"}},
		},
	)
	require.NoError(t, err)

	srv, err := New(engine, cfg.Server)
	require.NoError(t, err)
	return srv, engine
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func audioRequest(t *testing.T, field string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "clip.wav")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speech", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNew_RequiresEngine(t *testing.T) {
	_, err := New(nil, config.ServerConfig{})
	assert.ErrorIs(t, err, ErrEngineRequired)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy","service":"productfinder"}`, rec.Body.String())
}

func TestFind(t *testing.T) {
	t.Run("extracts entities when none are given", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(t, srv, http.MethodPost, "/api/v1/find", FindRequest{Text: "red shirt"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[FindResponse](t, rec)
		assert.Equal(t, "red shirt", resp.Query)
		assert.Len(t, resp.Entities, 2)
		require.Len(t, resp.Matches, 1)
		assert.Equal(t, "oxford", resp.Matches[0].Key)
	})

	t.Run("uses given entities", func(t *testing.T) {
		extractor := mock.NewMockEntityExtractor()
		srv, _ := newTestServer(t, mock.NewMockProviderWithServices(mock.NewMockTranscriber(), extractor))

		rec := do(t, srv, http.MethodPost, "/api/v1/find", FindRequest{
			Text: "something to run in",
			Entities: []core.Entity{
				{Type: "category", Resolutions: []core.Resolution{{Value: "shoes"}}},
			},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[FindResponse](t, rec)
		require.Len(t, resp.Matches, 1)
		assert.Equal(t, "runner", resp.Matches[0].Key)
		assert.Equal(t, 0, extractor.CallCount())
	})

	t.Run("empty entity list skips extraction", func(t *testing.T) {
		extractor := mock.NewMockEntityExtractor()
		srv, _ := newTestServer(t, mock.NewMockProviderWithServices(mock.NewMockTranscriber(), extractor))

		rec := do(t, srv, http.MethodPost, "/api/v1/find", map[string]any{"text": "trail runner", "entities": []any{}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 0, extractor.CallCount())
	})

	t.Run("no matches", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(t, srv, http.MethodPost, "/api/v1/find", FindRequest{Text: "green jacket"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[FindResponse](t, rec)
		assert.Empty(t, resp.Matches)
		assert.Contains(t, rec.Body.String(), `"matches":[]`)
	})

	t.Run("missing text", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(t, srv, http.MethodPost, "/api/v1/find", FindRequest{Text: "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/find", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("extraction failure", func(t *testing.T) {
		extractor := mock.NewMockEntityExtractor()
		extractor.ExtractEntitiesFunc = func(ctx context.Context, utterance string) (*ai.EntityResult, error) {
			return nil, errors.New("model offline")
		}
		srv, _ := newTestServer(t, mock.NewMockProviderWithServices(mock.NewMockTranscriber(), extractor))

		rec := do(t, srv, http.MethodPost, "/api/v1/find", FindRequest{Text: "red shirt"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decode[errorResponse](t, rec)
		assert.Equal(t, "entity extraction failed", resp.Error)
		assert.Equal(t, "model offline", resp.Detail)
	})
}

func TestSpeech(t *testing.T) {
	t.Run("transcribes and searches", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, audioRequest(t, "audio", []byte("red shirt")))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[FindResponse](t, rec)
		assert.Equal(t, "red shirt", resp.Query)
		assert.Equal(t, string(ai.RecognitionSuccess), resp.Status)
		require.Len(t, resp.Matches, 1)
		assert.Equal(t, "oxford", resp.Matches[0].Key)
	})

	t.Run("no match skips search", func(t *testing.T) {
		extractor := mock.NewMockEntityExtractor()
		srv, _ := newTestServer(t, mock.NewMockProviderWithServices(mock.NewMockTranscriber(), extractor))

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, audioRequest(t, "audio", []byte("   ")))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[FindResponse](t, rec)
		assert.Equal(t, string(ai.RecognitionNoMatch), resp.Status)
		assert.Empty(t, resp.Matches)
		assert.Equal(t, 0, extractor.CallCount())
	})

	t.Run("missing audio field", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, audioRequest(t, "file", []byte("red shirt")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("audio too large", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, audioRequest(t, "audio", bytes.Repeat([]byte("a"), 4096)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("transcription failure", func(t *testing.T) {
		transcriber := mock.NewMockTranscriber()
		transcriber.TranscribeFunc = func(ctx context.Context, audio io.Reader, filename string) (*ai.SpeechResult, error) {
			return nil, errors.New("service unavailable")
		}
		srv, _ := newTestServer(t, mock.NewMockProviderWithServices(transcriber, mock.NewMockEntityExtractor()))

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, audioRequest(t, "audio", []byte("red shirt")))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestNarrow(t *testing.T) {
	t.Run("loads skus and asks for the next attribute", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(t, srv, http.MethodPost, "/api/v1/skus/narrow", map[string]any{
			"product":  "oxford",
			"selected": map[string]string{"color": "red"},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[NarrowResponse](t, rec)
		assert.Equal(t, "oxford", resp.Product)
		assert.Len(t, resp.Skus, 2)
		require.NotNil(t, resp.Next)
		assert.Equal(t, "size", resp.Next.Name)
		assert.Equal(t, []string{"small", "large"}, resp.Next.Choices)
		assert.Equal(t, "size", resp.Attribute)
		assert.False(t, resp.Complete)
	})

	t.Run("resolves a single sku", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(t, srv, http.MethodPost, "/api/v1/skus/narrow", map[string]any{
			"product":  "oxford",
			"selected": map[string]string{"color": "blue"},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[NarrowResponse](t, rec)
		require.NotNil(t, resp.Resolved)
		assert.Equal(t, "OX-BL", resp.Resolved.ProductNumber)
		assert.True(t, resp.Complete)
		assert.Nil(t, resp.Next)
	})

	t.Run("uses skus from the request", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(t, srv, http.MethodPost, "/api/v1/skus/narrow", map[string]any{
			"product": "custom",
			"skus": []map[string]string{
				{"productNumber": "C-1", "color": "red"},
				{"productNumber": "C-2", "color": "green"},
			},
			"entities": []core.Entity{{Type: "color", Resolutions: []core.Resolution{{Value: "Green"}}}},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[NarrowResponse](t, rec)
		require.Len(t, resp.Skus, 1)
		assert.Equal(t, "C-2", resp.Skus[0].ProductNumber)
	})

	t.Run("unknown product", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(t, srv, http.MethodPost, "/api/v1/skus/narrow", map[string]any{"product": "missing"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("product or skus required", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)

		rec := do(t, srv, http.MethodPost, "/api/v1/skus/narrow", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProduct(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	t.Run("found", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/products/oxford", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[ProductResponse](t, rec)
		assert.Equal(t, "oxford", resp.Key)
		assert.Equal(t, "Oxford Shirt", resp.Document.Name)
		assert.Len(t, resp.Skus, 3)
		assert.False(t, resp.InsertedAt.IsZero())
	})

	t.Run("not found", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/products/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServe_GracefulShutdown(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.cfg.GracefulShutdown = time.Second

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrServerClosed)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
