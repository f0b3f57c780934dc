package cache

import "sync"

// keyedQueue serializes operations per key: calls with the same key run
// strictly FIFO, calls with distinct keys run independently. The tail entry
// is removed once its chain drains, so idle keys cost nothing.
type keyedQueue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newKeyedQueue() *keyedQueue {
	return &keyedQueue{tails: make(map[string]chan struct{})}
}

// Do runs fn after every previously enqueued operation for key has finished,
// and returns fn's error to the caller.
func (q *keyedQueue) Do(key string, fn func() error) error {
	q.mu.Lock()
	prev := q.tails[key]
	done := make(chan struct{})
	q.tails[key] = done
	q.mu.Unlock()

	if prev != nil {
		<-prev
	}
	defer func() {
		close(done)
		q.mu.Lock()
		if q.tails[key] == done {
			delete(q.tails, key)
		}
		q.mu.Unlock()
	}()
	return fn()
}
