package transport

import (
	"context"

	"go.uber.org/zap"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/query"
	"github.com/ponto-app/registro/internal/store"
)

// Local adapts a document store to the Transport contract, making the cache
// work offline exactly as it does against the remote API.
type Local struct {
	store *store.Store
	log   *zap.Logger
}

// NewLocal wraps st. log may be nil.
func NewLocal(st *store.Store, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{store: st, log: log}
}

// List implements Transport.
func (l *Local) List(ctx context.Context, collection string, search query.Params) ([]models.Document, error) {
	return l.store.List(ctx, collection, search)
}

// Get implements Transport.
func (l *Local) Get(ctx context.Context, collection, id string) (models.Document, error) {
	return l.store.Get(ctx, collection, id)
}

// Create implements Transport.
func (l *Local) Create(ctx context.Context, collection string, body models.Document) (models.Document, error) {
	return l.store.Create(ctx, collection, body)
}

// Put implements Transport.
func (l *Local) Put(ctx context.Context, collection, id string, body models.Document) (models.Document, error) {
	return l.store.Put(ctx, collection, id, body)
}

// Patch implements Transport.
func (l *Local) Patch(ctx context.Context, collection, id string, body models.Document) (models.Document, error) {
	return l.store.Patch(ctx, collection, id, body)
}

// Delete implements Transport.
func (l *Local) Delete(ctx context.Context, collection, id string) error {
	return l.store.Delete(ctx, collection, id)
}

// Notify implements Transport. There is no reviewer service behind the local
// store, so the notification is only logged.
func (l *Local) Notify(_ context.Context, collection, id, action string, _ models.Document) error {
	l.log.Debug("local workflow notification",
		zap.String("collection", collection),
		zap.String("id", id),
		zap.String("action", action),
	)
	return nil
}
