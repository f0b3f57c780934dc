package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/query"
	"github.com/ponto-app/registro/internal/store"
)

// Remote speaks the same CRUD contract against an HTTP API. The client is
// caller-provided and already authenticated; timeout and retry policy belong
// to it, not to this type.
type Remote struct {
	base   string
	client *http.Client
	log    *zap.Logger
}

// NewRemote returns a transport for the API at base (trailing slash
// stripped). client defaults to http.DefaultClient, log to a nop logger.
func NewRemote(base string, client *http.Client, log *zap.Logger) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Remote{base: strings.TrimRight(base, "/"), client: client, log: log}
}

func (r *Remote) collectionURL(collection string, search query.Params) string {
	u := r.base + "/" + url.PathEscape(collection)
	if len(search) > 0 {
		u += "?" + url.Values(search).Encode()
	}
	return u
}

func (r *Remote) documentURL(collection, id string, extra ...string) string {
	u := r.base + "/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
	for _, seg := range extra {
		u += "/" + url.PathEscape(seg)
	}
	return u
}

// do executes one request and decodes the JSON response into out (skipped
// when out is nil or the response is 204).
func (r *Remote) do(ctx context.Context, method, rawurl string, body models.Document, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawurl, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawurl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return statusError(resp.StatusCode, method, rawurl, strings.TrimSpace(string(text)))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps HTTP statuses onto the store's error taxonomy so callers
// handle both backends with the same errors.Is checks.
func statusError(code int, method, rawurl, text string) error {
	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, method, rawurl)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s %s", store.ErrConflict, method, rawurl)
	default:
		if text != "" {
			return fmt.Errorf("%s %s: %d - %s", method, rawurl, code, text)
		}
		return fmt.Errorf("%s %s: %d", method, rawurl, code)
	}
}

// List implements Transport.
func (r *Remote) List(ctx context.Context, collection string, search query.Params) ([]models.Document, error) {
	var out []models.Document
	if err := r.do(ctx, http.MethodGet, r.collectionURL(collection, search), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get implements Transport.
func (r *Remote) Get(ctx context.Context, collection, id string) (models.Document, error) {
	var out models.Document
	if err := r.do(ctx, http.MethodGet, r.documentURL(collection, id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create implements Transport.
func (r *Remote) Create(ctx context.Context, collection string, body models.Document) (models.Document, error) {
	var out models.Document
	if err := r.do(ctx, http.MethodPost, r.collectionURL(collection, nil), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Put implements Transport.
func (r *Remote) Put(ctx context.Context, collection, id string, body models.Document) (models.Document, error) {
	var out models.Document
	if err := r.do(ctx, http.MethodPut, r.documentURL(collection, id), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Patch implements Transport.
func (r *Remote) Patch(ctx context.Context, collection, id string, body models.Document) (models.Document, error) {
	var out models.Document
	if err := r.do(ctx, http.MethodPatch, r.documentURL(collection, id), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete implements Transport.
func (r *Remote) Delete(ctx context.Context, collection, id string) error {
	return r.do(ctx, http.MethodDelete, r.documentURL(collection, id), nil, nil)
}

// Notify implements Transport, posting to the per-action endpoint
// ("/<collection>/<id>/<action>").
func (r *Remote) Notify(ctx context.Context, collection, id, action string, body models.Document) error {
	if body == nil {
		body = models.Document{}
	}
	return r.do(ctx, http.MethodPost, r.documentURL(collection, id, action), body, nil)
}
