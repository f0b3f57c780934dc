// Package http provides the HTTP handlers exposing the document store's
// REST contract: collections under /{collection}, documents under
// /{collection}/{id}, workflow notifications under /{collection}/{id}/{action}.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/query"
	"github.com/ponto-app/registro/internal/store"
)

// DocumentService is the store contract the handlers need.
type DocumentService interface {
	List(ctx context.Context, collection string, search query.Params) ([]models.Document, error)
	Get(ctx context.Context, collection, id string) (models.Document, error)
	Create(ctx context.Context, collection string, body models.Document) (models.Document, error)
	Put(ctx context.Context, collection, id string, body models.Document) (models.Document, error)
	Patch(ctx context.Context, collection, id string, body models.Document) (models.Document, error)
	Delete(ctx context.Context, collection, id string) error
}

// DocumentHandler serves CRUD requests over a DocumentService.
type DocumentHandler struct {
	Store DocumentService
}

// List handles GET /{collection}.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	docs, err := h.Store.List(r.Context(), collection, query.Params(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Get handles GET /{collection}/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.Get(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Create handles POST /{collection}.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	doc, err := h.Store.Create(r.Context(), chi.URLParam(r, "collection"), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// Put handles PUT /{collection}/{id}.
func (h *DocumentHandler) Put(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	doc, err := h.Store.Put(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Patch handles PATCH /{collection}/{id}.
func (h *DocumentHandler) Patch(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	doc, err := h.Store.Patch(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /{collection}/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (models.Document, bool) {
	var body models.Document
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store sentinels to their HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrInvalidPath):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
