// Package substrate provides the persistence backends a document store can
// save its whole state to: an in-memory buffer, a JSON file, a Postgres row
// or a SQLite row. The store treats all of them as an opaque byte blob.
package substrate

import (
	"context"
	"os"
	"sync"
)

// Substrate is a single-slot byte store. Load returns (nil, nil) when no
// state has been saved yet.
type Substrate interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Memory keeps the state in process memory. Used by tests and as a scratch
// backend.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory returns an empty in-memory substrate.
func NewMemory() *Memory { return &Memory{} }

// Load implements Substrate.
func (m *Memory) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

// Save implements Substrate.
func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make([]byte, len(data))
	copy(m.data, data)
	return nil
}

// File persists the state as a single JSON file on disk.
type File struct {
	path string
}

// NewFile returns a substrate backed by the file at path. The file is created
// on first save.
func NewFile(path string) *File { return &File{path: path} }

// Load implements Substrate. A missing file counts as empty state.
func (f *File) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Save implements Substrate.
func (f *File) Save(_ context.Context, data []byte) error {
	return os.WriteFile(f.path, data, 0o600)
}
