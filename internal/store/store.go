// Package store implements the local document store: named collections of
// open documents with REST-like CRUD, sequential or caller-supplied ids,
// json-server query semantics and whole-state persistence to a substrate.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/query"
	"github.com/ponto-app/registro/internal/store/substrate"
)

// SeedFunc supplies the initial dataset loaded into an empty substrate,
// keyed by collection name. It runs at most once per store.
type SeedFunc func(ctx context.Context) (map[string][]models.Document, error)

// Store owns the collections and their persistence. All operations are safe
// for concurrent use; every mutating call persists the whole state before
// returning, so a later read always observes it.
type Store struct {
	mu     sync.Mutex
	sub    substrate.Substrate
	seed   SeedFunc
	seeded bool
	db     *database
	log    *zap.Logger
	now    func() time.Time
}

// New loads existing state from the substrate and returns a ready store.
// seed may be nil.
func New(ctx context.Context, sub substrate.Substrate, seed SeedFunc, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{sub: sub, seed: seed, db: newDatabase(), log: log, now: time.Now}
	raw, err := sub.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load substrate: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, s.db); err != nil {
			return nil, fmt.Errorf("decode substrate state: %w", err)
		}
	}
	return s, nil
}

// ensureSeed loads the seed dataset into an empty substrate, exactly once.
// Callers hold s.mu.
func (s *Store) ensureSeed(ctx context.Context) error {
	if s.seeded {
		return nil
	}
	s.seeded = true
	if s.seed == nil || !s.db.empty() {
		return nil
	}
	data, err := s.seed(ctx)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	for name, docs := range data {
		if name == metaKey {
			continue
		}
		s.db.collections[name] = docs
	}
	s.log.Info("seeded empty store", zap.Int("collections", len(data)))
	return s.persist(ctx)
}

// persist writes the whole state to the substrate. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	raw, err := json.Marshal(s.db)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.sub.Save(ctx, raw); err != nil {
		return fmt.Errorf("save substrate: %w", err)
	}
	return nil
}

// List returns the collection filtered, sorted and paginated by search.
func (s *Store) List(ctx context.Context, collection string, search query.Params) ([]models.Document, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: empty collection", ErrInvalidPath)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSeed(ctx); err != nil {
		return nil, err
	}
	s.db.ensureCollection(collection)
	docs := query.Apply(s.db.collections[collection], search)
	out := make([]models.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out, nil
}

// Get returns the single document whose id stringifies equal to id.
func (s *Store) Get(ctx context.Context, collection, id string) (models.Document, error) {
	if collection == "" || id == "" {
		return nil, fmt.Errorf("%w: GET %s/%s", ErrInvalidPath, collection, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSeed(ctx); err != nil {
		return nil, err
	}
	s.db.ensureCollection(collection)
	idx := s.db.indexOf(collection, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return s.db.collections[collection][idx].Clone(), nil
}

// Create appends a new document. The id comes from the body when supplied,
// otherwise the next free sequential integer for the collection. createdAt
// and updatedAt are stamped unless already present.
func (s *Store) Create(ctx context.Context, collection string, body models.Document) (models.Document, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: empty collection", ErrInvalidPath)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSeed(ctx); err != nil {
		return nil, err
	}
	s.db.ensureCollection(collection)

	doc := body.Clone()
	if doc == nil {
		doc = models.Document{}
	}
	var id any
	if supplied, ok := doc["id"]; ok && supplied != nil {
		id = supplied
	} else {
		id = s.db.allocateID(collection)
	}
	doc["id"] = id
	now := s.timestamp()
	if _, ok := doc["createdAt"]; !ok {
		doc["createdAt"] = now
	}
	if _, ok := doc["updatedAt"]; !ok {
		doc["updatedAt"] = now
	}

	if s.db.indexOf(collection, models.Stringify(id)) >= 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrConflict, collection, models.Stringify(id))
	}
	s.db.collections[collection] = append(s.db.collections[collection], doc)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// Put replaces the document at id, creating it when absent. The original
// createdAt is preserved on replace.
func (s *Store) Put(ctx context.Context, collection, id string, body models.Document) (models.Document, error) {
	if collection == "" || id == "" {
		return nil, fmt.Errorf("%w: PUT %s/%s", ErrInvalidPath, collection, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSeed(ctx); err != nil {
		return nil, err
	}
	s.db.ensureCollection(collection)

	next := body.Clone()
	if next == nil {
		next = models.Document{}
	}
	next["id"] = id
	now := s.timestamp()
	next["updatedAt"] = now

	idx := s.db.indexOf(collection, id)
	if idx < 0 {
		if _, ok := next["createdAt"]; !ok {
			next["createdAt"] = now
		}
		s.db.collections[collection] = append(s.db.collections[collection], next)
	} else {
		if prev, ok := s.db.collections[collection][idx]["createdAt"]; ok {
			next["createdAt"] = prev
		} else if _, ok := next["createdAt"]; !ok {
			next["createdAt"] = now
		}
		s.db.collections[collection][idx] = next
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

// Patch shallow-merges body into the existing document, body winning field
// by field. The id is forced back to the path id.
func (s *Store) Patch(ctx context.Context, collection, id string, body models.Document) (models.Document, error) {
	if collection == "" || id == "" {
		return nil, fmt.Errorf("%w: PATCH %s/%s", ErrInvalidPath, collection, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSeed(ctx); err != nil {
		return nil, err
	}
	s.db.ensureCollection(collection)

	idx := s.db.indexOf(collection, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	merged := s.db.collections[collection][idx].Clone()
	for k, v := range body.Clone() {
		merged[k] = v
	}
	merged["id"] = s.db.collections[collection][idx]["id"]
	merged["updatedAt"] = s.timestamp()
	s.db.collections[collection][idx] = merged
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return merged.Clone(), nil
}

// Delete removes the document at id.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if collection == "" || id == "" {
		return fmt.Errorf("%w: DELETE %s/%s", ErrInvalidPath, collection, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSeed(ctx); err != nil {
		return err
	}
	s.db.ensureCollection(collection)

	idx := s.db.indexOf(collection, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	docs := s.db.collections[collection]
	s.db.collections[collection] = append(docs[:idx], docs[idx+1:]...)
	return s.persist(ctx)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
