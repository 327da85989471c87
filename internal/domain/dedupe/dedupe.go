// Package dedupe tracks webhook delivery ids so redelivered calls are
// acknowledged without being analyzed twice.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen delivery ids to ensure at-most-once analysis.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id from the seen set, allowing a retry. Used when
	// a delivery was marked seen but could not be queued for analysis.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

const defaultMaxSize = 50_000

// inMemoryDeduper implements Deduper with a map plus a FIFO list of ids.
// When the map is full the oldest live id is evicted. maxSize <= 0
// disables eviction entirely.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order; order[:head] already consumed
	head    int
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		// Evict oldest ids until a map slot frees up. Deleting a slot
		// whose id was already unrecorded is a no-op, so stale slots
		// are skipped.
		for len(d.seen) >= d.maxSize && d.head < len(d.order) {
			oldest := d.order[d.head]
			d.head++
			delete(d.seen, oldest)
		}
		d.order = append(d.order, id)
		if d.head > d.maxSize {
			d.order = append(d.order[:0], d.order[d.head:]...)
			d.head = 0
		}
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// The id's order slot goes stale and is skipped at eviction time.
	delete(d.seen, id)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
