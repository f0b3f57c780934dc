package transport

import (
	"context"
	"sync"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/query"
)

// UserOptions selects which relations GetUser attaches to the user document.
// Embed names child collections filtered by userId; Expand names parent
// documents referenced by "<relation>Id" fields.
type UserOptions struct {
	Embed  []string // "registros", "escalas"
	Expand []string // "PerfilTipo", "tipoContrato"
}

// DefaultUserOptions mirrors what the application loads for a profile view.
func DefaultUserOptions() UserOptions {
	return UserOptions{
		Embed:  []string{"escalas", "registros"},
		Expand: []string{"PerfilTipo", "tipoContrato"},
	}
}

// GetUser loads one user and resolves the requested relations with follow-up
// queries issued in parallel. All follow-ups must succeed; the first failure
// is returned and the partially-expanded document discarded.
func GetUser(ctx context.Context, t Transport, id string, opts UserOptions) (models.Document, error) {
	user, err := t.Get(ctx, "users", id)
	if err != nil {
		return nil, err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	followUp := func(run func() (string, any, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			field, value, err := run()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			user[field] = value
		}()
	}

	for _, name := range opts.Embed {
		if _, ok := user[name]; ok {
			continue
		}
		switch name {
		case "registros":
			followUp(func() (string, any, error) {
				list, err := t.List(ctx, "registros", query.Params{
					"userId": {id}, "_sort": {"data"}, "_order": {"desc"},
				})
				return "registros", list, err
			})
		case "escalas":
			followUp(func() (string, any, error) {
				list, err := t.List(ctx, "escalas", query.Params{"userId": {id}})
				return "escalas", list, err
			})
		}
	}
	for _, name := range opts.Expand {
		if _, ok := user[name]; ok {
			continue
		}
		refID := models.Stringify(user[name+"Id"])
		if refID == "" {
			continue
		}
		field := name
		collection := name + "s"
		followUp(func() (string, any, error) {
			doc, err := t.Get(ctx, collection, refID)
			return field, doc, err
		})
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return user, nil
}
