package substrate

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	data, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != nil {
		t.Errorf("expected empty state, got %q", data)
	}

	if err := m.Save(ctx, []byte(`{"users":[]}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err = m.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"users":[]}` {
		t.Errorf("unexpected state: %q", data)
	}

	// Loaded bytes are a copy, not the internal buffer.
	data[0] = 'X'
	again, _ := m.Load(ctx)
	if string(again) != `{"users":[]}` {
		t.Errorf("internal state mutated: %q", again)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appdb.json")
	f := NewFile(path)
	ctx := context.Background()

	data, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != nil {
		t.Errorf("expected empty state for missing file, got %q", data)
	}

	if err := f.Save(ctx, []byte(`{"registros":[]}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err = f.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"registros":[]}` {
		t.Errorf("unexpected state: %q", data)
	}
}
