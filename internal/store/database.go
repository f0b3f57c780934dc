package store

import (
	"encoding/json"
	"strconv"

	"github.com/ponto-app/registro/internal/models"
)

// metaKey is the reserved root key holding allocator state.
const metaKey = "_meta"

// database is the in-memory image of the persisted state: one list of
// documents per collection name, plus the next-id allocator per collection.
type database struct {
	collections map[string][]models.Document
	nextID      map[string]int
}

func newDatabase() *database {
	return &database{
		collections: make(map[string][]models.Document),
		nextID:      make(map[string]int),
	}
}

// persistedMeta mirrors the "_meta" object of the substrate layout.
type persistedMeta struct {
	NextID map[string]int `json:"nextId"`
}

// MarshalJSON writes the substrate layout: {"<collection>": [...], "_meta": {"nextId": {...}}}.
func (d *database) MarshalJSON() ([]byte, error) {
	root := make(map[string]any, len(d.collections)+1)
	for name, docs := range d.collections {
		if docs == nil {
			docs = []models.Document{}
		}
		root[name] = docs
	}
	root[metaKey] = persistedMeta{NextID: d.nextID}
	return json.Marshal(root)
}

// UnmarshalJSON reads the substrate layout back.
func (d *database) UnmarshalJSON(data []byte) error {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	d.collections = make(map[string][]models.Document, len(root))
	d.nextID = make(map[string]int)
	for name, raw := range root {
		if name == metaKey {
			var meta persistedMeta
			if err := json.Unmarshal(raw, &meta); err != nil {
				return err
			}
			if meta.NextID != nil {
				d.nextID = meta.NextID
			}
			continue
		}
		var docs []models.Document
		if err := json.Unmarshal(raw, &docs); err != nil {
			return err
		}
		d.collections[name] = docs
	}
	return nil
}

// ensureCollection creates the collection if absent and primes its id
// allocator from the highest numeric id already present.
func (d *database) ensureCollection(name string) {
	if _, ok := d.collections[name]; !ok {
		d.collections[name] = []models.Document{}
	}
	if _, ok := d.nextID[name]; !ok {
		max := 0
		for _, doc := range d.collections[name] {
			if n, err := strconv.Atoi(models.Stringify(doc["id"])); err == nil && n > max {
				max = n
			}
		}
		d.nextID[name] = max + 1
	}
}

// allocateID hands out the next sequential integer id for the collection.
func (d *database) allocateID(name string) int {
	d.ensureCollection(name)
	id := d.nextID[name]
	d.nextID[name]++
	return id
}

// indexOf returns the position of the document whose id stringifies to id,
// or -1.
func (d *database) indexOf(name, id string) int {
	for i, doc := range d.collections[name] {
		if models.Stringify(doc["id"]) == id {
			return i
		}
	}
	return -1
}

// empty reports whether the database holds no collections besides meta.
func (d *database) empty() bool {
	return len(d.collections) == 0
}
