package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/query"
	"github.com/ponto-app/registro/internal/store/substrate"
)

func newTestStore(t *testing.T) (*Store, *substrate.Memory) {
	t.Helper()
	sub := substrate.NewMemory()
	s, err := New(context.Background(), sub, nil, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 9, 9, 12, 0, 0, 0, time.UTC) }
	return s, sub
}

func TestCreateAllocatesSequentialIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, "users", models.Document{"name": "ana"})
	require.NoError(t, err)
	second, err := s.Create(ctx, "users", models.Document{"name": "bia"})
	require.NoError(t, err)

	assert.Equal(t, "1", models.Stringify(first["id"]))
	assert.Equal(t, "2", models.Stringify(second["id"]))
	assert.Equal(t, "2025-09-09T12:00:00Z", first["createdAt"])
	assert.Equal(t, "2025-09-09T12:00:00Z", first["updatedAt"])
}

func TestCreateRecomputesNextIDFromExistingMax(t *testing.T) {
	sub := substrate.NewMemory()
	require.NoError(t, sub.Save(context.Background(),
		[]byte(`{"users":[{"id":7,"name":"ana"},{"id":"20250909-1","name":"rec"}]}`)))
	s, err := New(context.Background(), sub, nil, nil)
	require.NoError(t, err)

	doc, err := s.Create(context.Background(), "users", models.Document{"name": "bia"})
	require.NoError(t, err)
	assert.Equal(t, "8", models.Stringify(doc["id"]))
}

func TestCreateConflictOnSuppliedID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "registros", models.Document{"id": "20250909-1"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "registros", models.Document{"id": "20250909-1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetByID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "users", models.Document{"name": "ana"})
	require.NoError(t, err)

	got, err := s.Get(ctx, "users", models.Stringify(created["id"]))
	require.NoError(t, err)
	assert.Equal(t, "ana", got["name"])

	_, err = s.Get(ctx, "users", "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFilterSortPaginate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, day := range []string{"2025-09-10", "2025-09-08", "2025-09-09"} {
		_, err := s.Create(ctx, "registros", models.Document{"userId": 1, "data": day})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, "registros", models.Document{"userId": 2, "data": "2025-09-09"})
	require.NoError(t, err)

	list, err := s.List(ctx, "registros", query.Params{
		"userId": {"1"},
		"_sort":  {"data"},
		"_order": {"asc"},
	})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2025-09-08", list[0]["data"])
	assert.Equal(t, "2025-09-10", list[2]["data"])

	ranged, err := s.List(ctx, "registros", query.Params{
		"userId":   {"1"},
		"data_gte": {"2025-09-09"},
		"data_lte": {"2025-09-09"},
	})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "2025-09-09", ranged[0]["data"])
}

func TestPatchMergesAndPreserves(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "registros", models.Document{
		"id": "20250909-1", "userId": 1, "data": "2025-09-09", "totalMin": 0,
		"createdAt": "2025-09-01T08:00:00Z",
	})
	require.NoError(t, err)

	merged, err := s.Patch(ctx, "registros", "20250909-1", models.Document{"totalMin": 180})
	require.NoError(t, err)
	assert.Equal(t, 180, merged["totalMin"])
	assert.Equal(t, "2025-09-09", merged["data"])
	assert.Equal(t, created["createdAt"], merged["createdAt"])
	assert.Equal(t, "2025-09-09T12:00:00Z", merged["updatedAt"])
	// id is forced back even if the body tries to change it
	forced, err := s.Patch(ctx, "registros", "20250909-1", models.Document{"id": "evil"})
	require.NoError(t, err)
	assert.Equal(t, "20250909-1", models.Stringify(forced["id"]))

	_, err = s.Patch(ctx, "registros", "missing", models.Document{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutUpsert(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Put(ctx, "registros", "20250909-1", models.Document{"totalMin": 60})
	require.NoError(t, err)
	assert.Equal(t, "20250909-1", created["id"])
	assert.Equal(t, "2025-09-09T12:00:00Z", created["createdAt"])

	s.now = func() time.Time { return time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC) }
	replaced, err := s.Put(ctx, "registros", "20250909-1", models.Document{"totalMin": 90})
	require.NoError(t, err)
	assert.Equal(t, 90, replaced["totalMin"])
	// replace keeps the original createdAt and drops unlisted fields
	assert.Equal(t, "2025-09-09T12:00:00Z", replaced["createdAt"])
	assert.Equal(t, "2025-09-10T09:00:00Z", replaced["updatedAt"])
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "registros", models.Document{"id": "x"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "registros", "x"))
	assert.ErrorIs(t, s.Delete(ctx, "registros", "x"), ErrNotFound)
}

func TestInvalidPath(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.List(ctx, "", nil)
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, err = s.Get(ctx, "users", "")
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, err = s.Patch(ctx, "", "1", nil)
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.ErrorIs(t, s.Delete(ctx, "users", ""), ErrInvalidPath)
}

func TestLazySeedRunsOnce(t *testing.T) {
	sub := substrate.NewMemory()
	calls := 0
	seed := func(_ context.Context) (map[string][]models.Document, error) {
		calls++
		return map[string][]models.Document{
			"users": {{"id": 1, "name": "ana"}},
		}, nil
	}
	s, err := New(context.Background(), sub, seed, nil)
	require.NoError(t, err)

	list, err := s.List(context.Background(), "users", nil)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = s.List(context.Background(), "users", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// A store over non-empty state never seeds.
	s2, err := New(context.Background(), sub, seed, nil)
	require.NoError(t, err)
	_, err = s2.List(context.Background(), "users", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestMutationsPersistWholeState(t *testing.T) {
	sub := substrate.NewMemory()
	s, err := New(context.Background(), sub, nil, nil)
	require.NoError(t, err)

	_, err = s.Create(context.Background(), "registros", models.Document{"id": "20250909-1", "userId": 1})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), "users", models.Document{"name": "ana"})
	require.NoError(t, err)

	// A fresh store over the same substrate observes everything, including
	// the id allocator.
	reloaded, err := New(context.Background(), sub, nil, nil)
	require.NoError(t, err)
	got, err := reloaded.Get(context.Background(), "registros", "20250909-1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got["userId"])

	doc, err := reloaded.Create(context.Background(), "users", models.Document{"name": "bia"})
	require.NoError(t, err)
	assert.Equal(t, "2", models.Stringify(doc["id"]))
}

func TestGetReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "registros", models.Document{"id": "x", "pares": []any{map[string]any{"in": "09:00"}}})
	require.NoError(t, err)

	got, err := s.Get(ctx, "registros", "x")
	require.NoError(t, err)
	got["pares"].([]any)[0].(map[string]any)["in"] = "mutated"

	again, err := s.Get(ctx, "registros", "x")
	require.NoError(t, err)
	assert.Equal(t, "09:00", again["pares"].([]any)[0].(map[string]any)["in"])
}
