// Package cache implements the per-day record cache ("registros"): day
// entries, persisted-id tracking, workflow state, a per-key write queue that
// serializes persists for the same (user, day), and range preloading. It
// talks to its backend only through the transport contract, so it behaves
// identically against the remote API and the local document store.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ponto-app/registro/internal/models"
	"github.com/ponto-app/registro/internal/query"
	"github.com/ponto-app/registro/internal/timecalc"
	"github.com/ponto-app/registro/internal/transport"
)

// Collection is the backend collection day records live in.
const Collection = "registros"

// Cache owns the in-memory day caches for one user. All maps are keyed by the
// "YYYY-MM-DD" day string and mutated only through Cache methods.
type Cache struct {
	transport transport.Transport
	log       *zap.Logger
	now       func() time.Time
	userID    int

	mu            sync.Mutex
	entries       map[string][]models.Pair
	idByDate      map[string]string
	statusByDate  map[string]models.Status
	metaByDate    map[string]models.Meta
	historyByDate map[string][]models.HistoryEntry

	queue *keyedQueue
}

// New returns an empty cache for userID over t. log may be nil.
func New(t transport.Transport, userID int, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cache{
		transport: t,
		log:       log,
		now:       time.Now,
		userID:    userID,
		queue:     newKeyedQueue(),
	}
	c.resetLocked()
	return c
}

// UserID returns the user this cache is configured for.
func (c *Cache) UserID() int { return c.userID }

func (c *Cache) resetLocked() {
	c.entries = make(map[string][]models.Pair)
	c.idByDate = make(map[string]string)
	c.statusByDate = make(map[string]models.Status)
	c.metaByDate = make(map[string]models.Meta)
	c.historyByDate = make(map[string][]models.HistoryEntry)
}

func (c *Cache) writeKey(day string) string {
	return fmt.Sprintf("%d|%s", c.userID, day)
}

func (c *Cache) timestamp() string {
	return c.now().UTC().Format(time.RFC3339)
}

// fetchDay queries the backend for the user's record of one day. A missing
// record returns ok=false, not an error.
func (c *Cache) fetchDay(ctx context.Context, day string) (models.Record, bool, error) {
	list, err := c.transport.List(ctx, Collection, query.Params{
		"userId": {models.Stringify(c.userID)},
		"data":   {day},
		"_limit": {"1"},
	})
	if err != nil {
		return models.Record{}, false, fmt.Errorf("fetch day %s: %w", day, err)
	}
	if len(list) == 0 {
		return models.Record{}, false, nil
	}
	rec, err := models.RecordFromDocument(list[0])
	if err != nil {
		return models.Record{}, false, fmt.Errorf("fetch day %s: %w", day, err)
	}
	return rec, true, nil
}

// seedLocked fills every per-day map from a fetched record. Callers hold c.mu.
func (c *Cache) seedLocked(day string, rec models.Record) {
	pairs := rec.Pares
	if pairs == nil {
		pairs = []models.Pair{}
	}
	c.entries[day] = pairs
	if rec.ID != "" {
		c.idByDate[day] = rec.ID
	}
	status := rec.Status
	if status == "" {
		status = models.StatusRascunho
	}
	c.statusByDate[day] = status
	c.metaByDate[day] = rec.Meta
	c.historyByDate[day] = rec.History
}

// EnsureDayLoaded makes one day present in the cache: a no-op when cached,
// otherwise a single-day fetch. A day absent on the backend is seeded with
// defaults (draft status, no pairs, revision zero).
func (c *Cache) EnsureDayLoaded(ctx context.Context, day string) error {
	c.mu.Lock()
	_, loaded := c.entries[day]
	c.mu.Unlock()
	if loaded {
		return nil
	}

	rec, _, err := c.fetchDay(ctx, day)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, loaded := c.entries[day]; loaded {
		// Another loader won; keep its state.
		return nil
	}
	c.seedLocked(day, rec)
	return nil
}

// PreloadRange fetches every record of the user whose day falls in
// [start, end] inclusive with one range query and seeds the per-day caches.
// Days in range without a record stay unseeded; callers default them if they
// need to.
func (c *Cache) PreloadRange(ctx context.Context, start, end string) (map[string]models.Record, error) {
	list, err := c.transport.List(ctx, Collection, query.Params{
		"userId":   {models.Stringify(c.userID)},
		"data_gte": {start},
		"data_lte": {end},
		"_sort":    {"data"},
		"_order":   {"asc"},
	})
	if err != nil {
		return nil, fmt.Errorf("preload range %s..%s: %w", start, end, err)
	}

	records := make(map[string]models.Record, len(list))
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range list {
		rec, err := models.RecordFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("preload range %s..%s: %w", start, end, err)
		}
		if rec.Data == "" {
			continue
		}
		c.seedLocked(rec.Data, rec)
		records[rec.Data] = rec
	}
	return records, nil
}

// Persist flushes one day to the backend through the per-key queue, so
// overlapping calls for the same day never interleave. The day total is
// recomputed from the cached pairs; a day without a known server id is
// created under its deterministic composite id, everything else is patched.
func (c *Cache) Persist(ctx context.Context, day string) error {
	return c.queue.Do(c.writeKey(day), func() error {
		c.mu.Lock()
		pairs := append([]models.Pair(nil), c.entries[day]...)
		existingID := c.idByDate[day]
		status := c.statusByDate[day]
		meta := c.metaByDate[day]
		history := append([]models.HistoryEntry(nil), c.historyByDate[day]...)
		c.mu.Unlock()

		if status == "" {
			status = models.StatusRascunho
		}
		totalMin := timecalc.TotalMinutes(pairs)
		now := c.timestamp()

		if existingID != "" {
			body := models.Document{
				"pares":     pairsBody(pairs),
				"totalMin":  totalMin,
				"status":    string(status),
				"meta":      meta,
				"history":   history,
				"updatedAt": now,
			}
			if _, err := c.transport.Patch(ctx, Collection, existingID, body); err != nil {
				return fmt.Errorf("persist %s: %w", day, err)
			}
			return nil
		}

		newID := models.RecordID(c.userID, day)
		body := models.Document{
			"id":        newID,
			"userId":    c.userID,
			"data":      day,
			"pares":     pairsBody(pairs),
			"totalMin":  totalMin,
			"status":    string(status),
			"meta":      meta,
			"history":   history,
			"createdAt": now,
			"updatedAt": now,
		}
		created, err := c.transport.Create(ctx, Collection, body)
		if err != nil {
			return fmt.Errorf("persist %s: %w", day, err)
		}
		id := models.Stringify(created["id"])
		if id == "" {
			id = newID
		}
		c.mu.Lock()
		c.idByDate[day] = id
		c.mu.Unlock()
		return nil
	})
}

func pairsBody(pairs []models.Pair) []models.Pair {
	if pairs == nil {
		return []models.Pair{}
	}
	return pairs
}

/* ===== Local pair helpers: cache-only, Persist flushes ===== */

// Pairs returns a copy of the cached pairs of a day.
func (c *Cache) Pairs(day string) []models.Pair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Pair(nil), c.entries[day]...)
}

// SetPairs replaces the pairs of a day.
func (c *Cache) SetPairs(day string, pairs []models.Pair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[day] = append([]models.Pair(nil), pairs...)
}

// AddPair appends one pair to a day.
func (c *Cache) AddPair(day string, p models.Pair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[day] = append(append([]models.Pair(nil), c.entries[day]...), p)
}

// RemovePairAt deletes the pair at index; out-of-range indexes are ignored.
func (c *Cache) RemovePairAt(day string, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	curr := c.entries[day]
	if index < 0 || index >= len(curr) {
		return
	}
	next := append([]models.Pair(nil), curr[:index]...)
	c.entries[day] = append(next, curr[index+1:]...)
}

// DuplicatePairAt appends a copy of the pair at index; out-of-range indexes
// are ignored.
func (c *Cache) DuplicatePairAt(day string, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	curr := c.entries[day]
	if index < 0 || index >= len(curr) {
		return
	}
	c.entries[day] = append(append([]models.Pair(nil), curr...), curr[index])
}

// SortPairsAsc orders the pairs of a day by their in time. Unparsable in
// times sort first.
func (c *Cache) SortPairsAsc(day string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := append([]models.Pair(nil), c.entries[day]...)
	sort.SliceStable(next, func(i, j int) bool {
		return pairSortKey(next[i]) < pairSortKey(next[j])
	})
	c.entries[day] = next
}

func pairSortKey(p models.Pair) int {
	min, err := timecalc.ToMinutes(p.In)
	if err != nil {
		return -1
	}
	return min
}

// ClearDay empties the pairs of a day (cache-only).
func (c *Cache) ClearDay(day string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[day] = []models.Pair{}
}

// PairsCount returns the number of cached pairs of a day.
func (c *Cache) PairsCount(day string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries[day])
}

// PairsCountByDate returns the pair counts of every cached day.
func (c *Cache) PairsCountByDate() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.entries))
	for day, pairs := range c.entries {
		out[day] = len(pairs)
	}
	return out
}

// Entries returns a snapshot of all cached days, for aggregation.
func (c *Cache) Entries() map[string][]models.Pair {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string][]models.Pair, len(c.entries))
	for day, pairs := range c.entries {
		out[day] = append([]models.Pair(nil), pairs...)
	}
	return out
}

// IDByDate returns the persisted id of a day, "" when none is known.
func (c *Cache) IDByDate(day string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idByDate[day]
}

// Loaded reports whether a day is present in the cache.
func (c *Cache) Loaded(day string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[day]
	return ok
}

// ClearAllLocal drops every cached day without touching the backend.
func (c *Cache) ClearAllLocal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// ClearAllFromServer deletes every record of the user on the backend, then
// clears the local cache. A failed delete aborts before the local clear.
func (c *Cache) ClearAllFromServer(ctx context.Context) error {
	list, err := c.transport.List(ctx, Collection, query.Params{
		"userId": {models.Stringify(c.userID)},
	})
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, doc := range list {
		id := models.Stringify(doc["id"])
		if id == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.transport.Delete(ctx, Collection, id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return fmt.Errorf("clear all: %w", firstErr)
	}
	c.ClearAllLocal()
	return nil
}
