package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ponto-app/registro/internal/models"
)

// FileSeed returns a SeedFunc reading the initial dataset from a JSON file
// shaped like the persisted layout ({"<collection>": [...]}); a "_meta" key
// in the file is ignored.
func FileSeed(path string) SeedFunc {
	return func(_ context.Context) (map[string][]models.Document, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		var root map[string]json.RawMessage
		if err := json.Unmarshal(raw, &root); err != nil {
			return nil, fmt.Errorf("decode seed file: %w", err)
		}
		out := make(map[string][]models.Document, len(root))
		for name, data := range root {
			if name == metaKey {
				continue
			}
			var docs []models.Document
			if err := json.Unmarshal(data, &docs); err != nil {
				return nil, fmt.Errorf("decode seed collection %q: %w", name, err)
			}
			out[name] = docs
		}
		return out, nil
	}
}

// StaticSeed returns a SeedFunc serving a fixed in-memory dataset.
func StaticSeed(data map[string][]models.Document) SeedFunc {
	return func(_ context.Context) (map[string][]models.Document, error) {
		return data, nil
	}
}
