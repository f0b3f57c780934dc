// Package transport defines the uniform CRUD contract the record cache talks
// through, with a local implementation over the document store and a remote
// implementation over HTTP. Which one a cache uses is decided at
// construction, never by a process-wide mode flag.
package transport

import (
	"context"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/query"
)

// Transport is the backend contract consumed by the record cache. Both the
// local document store and the remote API satisfy it.
type Transport interface {
	// List returns the documents of collection matching search.
	List(ctx context.Context, collection string, search query.Params) ([]models.Document, error)
	// Get returns one document by id, or store.ErrNotFound.
	Get(ctx context.Context, collection, id string) (models.Document, error)
	// Create adds a document, allocating an id when the body carries none;
	// store.ErrConflict when the supplied id exists.
	Create(ctx context.Context, collection string, body models.Document) (models.Document, error)
	// Put replaces or creates the document at id.
	Put(ctx context.Context, collection, id string, body models.Document) (models.Document, error)
	// Patch shallow-merges body into the document at id, or store.ErrNotFound.
	Patch(ctx context.Context, collection, id string, body models.Document) (models.Document, error)
	// Delete removes the document at id, or store.ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
	// Notify posts a workflow action to the backend's dedicated endpoint.
	// Callers treat failures as best-effort.
	Notify(ctx context.Context, collection, id, action string, body models.Document) error
}
