// Package dedupe defines the interface for observation idempotency
// tracking.
//
// Absorbing an observation is intentionally not idempotent (each call is
// one more observation), so redelivered transport messages must be caught
// before they reach the model. The deduper records observation IDs for
// exactly that purpose.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Default deduper configuration constants.
const (
	defaultMaxSize = 50000
)

// Deduper records seen observation IDs to ensure at-most-once absorption.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set, allowing a retry. Use it
	// when an observation was recorded but failed to enqueue (backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a map plus a fixed-size ring of
// IDs in insertion order. When the ring wraps, the ID in the reused slot
// is evicted (FIFO). maxSize <= 0 disables eviction entirely.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string // insertion order, len == maxSize in bounded mode
	next    int      // ring slot for the next insert
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration
// options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 {
		// Bounded mode: once the ring has wrapped, the slot about to be
		// reused holds the oldest live ID.
		if old := d.ring[d.next]; old != "" {
			if _, exists := d.seen[old]; exists {
				delete(d.seen, old)
				d.size.Add(-1)
			}
		}
		d.ring[d.next] = id
		d.next = (d.next + 1) % d.maxSize
	}

	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen set, allowing it to be retried.
// The ring slot is left in place; re-recording the same ID later simply
// occupies a fresh slot.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

// Size returns the current number of recorded IDs.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
