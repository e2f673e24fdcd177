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
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/productfinder/ai"
	"github.com/poiesic/productfinder/core"
	"github.com/poiesic/productfinder/sku"
)

// FindRequest is the body of POST /api/v1/find. When Entities is omitted
// the text is sent to the entity extractor first.
type FindRequest struct {
	Text     string        `json:"text"`
	Entities []core.Entity `json:"entities,omitempty"`
}

// FindResponse carries the ranked matches of a search.
type FindResponse struct {
	Query    string           `json:"query"`
	Status   string           `json:"status,omitempty"`
	Entities []core.Entity    `json:"entities"`
	Matches  []*core.Document `json:"matches"`
}

// NarrowResponse is one SKU narrowing step.
type NarrowResponse struct {
	Product   string                `json:"product"`
	Attribute string                `json:"attribute,omitempty"`
	Skus      []core.ProductSku     `json:"skus"`
	Next      *core.AttributeChoice `json:"next,omitempty"`
	Resolved  *core.ProductSku      `json:"resolved,omitempty"`
	Complete  bool                  `json:"complete"`
}

// ProductResponse is a stored catalog product.
type ProductResponse struct {
	Key        string            `json:"key"`
	Document   core.Document     `json:"document"`
	Skus       []core.ProductSku `json:"skus"`
	InsertedAt time.Time         `json:"insertedAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "productfinder"})
}

func (s *Server) find(w http.ResponseWriter, r *http.Request) {
	var req FindRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required", "")
		return
	}

	entities := ai.EntityResult{Query: req.Text, Entities: req.Entities}
	if req.Entities == nil {
		extracted, err := s.engine.Provider().EntityExtractor().ExtractEntities(r.Context(), req.Text)
		if err != nil {
			s.fail(w, r, "entity extraction failed", err)
			return
		}
		entities = *extracted
	}

	s.search(w, r, ai.NewSpeechResult(req.Text), entities)
}

func (s *Server) speech(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxAudioBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxAudioBytes)
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "audio too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	speech, err := s.engine.Provider().Transcriber().Transcribe(r.Context(), file, header.Filename)
	if err != nil {
		s.fail(w, r, "transcription failed", err)
		return
	}

	text := speech.Header.Name
	if speech.Header.Status == ai.RecognitionNoMatch || strings.TrimSpace(text) == "" {
		writeJSON(w, http.StatusOK, FindResponse{
			Query:    text,
			Status:   string(ai.RecognitionNoMatch),
			Entities: []core.Entity{},
			Matches:  []*core.Document{},
		})
		return
	}

	entities, err := s.engine.Provider().EntityExtractor().ExtractEntities(r.Context(), text)
	if err != nil {
		s.fail(w, r, "entity extraction failed", err)
		return
	}

	s.search(w, r, *speech, *entities)
}

type findResult struct {
	err     error
	matches []*core.Document
}

// search runs FindProduct and waits for its callback or the request deadline.
func (s *Server) search(w http.ResponseWriter, r *http.Request, speech ai.SpeechResult, entities ai.EntityResult) {
	done := make(chan findResult, 1)
	err := s.engine.Finder().FindProduct(r.Context(), speech, entities, func(err error, matches []*core.Document) {
		done <- findResult{err: err, matches: matches}
	})
	if err != nil {
		s.fail(w, r, "search unavailable", err)
		return
	}

	var res findResult
	select {
	case res = <-done:
	case <-r.Context().Done():
		s.fail(w, r, "search canceled", r.Context().Err())
		return
	}
	if res.err != nil {
		s.fail(w, r, "search failed", res.err)
		return
	}

	if entities.Entities == nil {
		entities.Entities = []core.Entity{}
	}
	matches := res.matches
	if matches == nil {
		matches = []*core.Document{}
	}

	writeJSON(w, http.StatusOK, FindResponse{
		Query:    speech.Header.Name,
		Status:   string(speech.Header.Status),
		Entities: entities.Entities,
		Matches:  matches,
	})
}

func (s *Server) narrow(w http.ResponseWriter, r *http.Request) {
	var sel core.SkuSelection
	if err := decodeJSON(r, &sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(sel.Skus) == 0 && sel.Product == "" {
		writeError(w, http.StatusBadRequest, "product or skus are required", "")
		return
	}

	out, err := s.engine.NarrowProduct(r.Context(), &sel)
	if err != nil {
		s.fail(w, r, "narrowing failed", err)
		return
	}

	writeJSON(w, http.StatusOK, newNarrowResponse(&sel, out))
}

func newNarrowResponse(sel *core.SkuSelection, out sku.Outcome) NarrowResponse {
	skus := out.Skus
	if skus == nil {
		skus = []core.ProductSku{}
	}
	return NarrowResponse{
		Product:   sel.Product,
		Attribute: sel.Attribute,
		Skus:      skus,
		Next:      out.Next,
		Resolved:  out.Resolved,
		Complete:  out.Complete(),
	}
}

func (s *Server) product(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	product, err := s.engine.Catalog().GetProduct(r.Context(), s.engine.IndexName(), key)
	if err != nil {
		s.fail(w, r, "product lookup failed", err)
		return
	}

	skus := product.Skus
	if skus == nil {
		skus = []core.ProductSku{}
	}
	writeJSON(w, http.StatusOK, ProductResponse{
		Key:        product.Key,
		Document:   product.Document,
		Skus:       skus,
		InsertedAt: product.InsertedAt,
		UpdatedAt:  product.UpdatedAt,
	})
}

