// Package queue defines the contract for enqueuing and consuming
// observations.
//
// Implementations may use channels or more advanced structures. The
// in-memory bounded queue below is the default.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/fairshare/internal/domain/model"
	"github.com/okian/fairshare/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 100000
	defaultBufferSize    = 100000
)

// Observation represents the payload type flowing through the queue.
type Observation = model.Observation

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an observation to the queue.
	// Returns false if the queue is full and the observation was dropped.
	Enqueue(ctx context.Context, o Observation) bool

	// Dequeue returns a channel that receives observations as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Observation

	// Len returns the current number of queued observations.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new
	// observations can be enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	observations chan Observation
	capacity     int
	bufferSize   int
	mu           sync.RWMutex
	closed       bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration
// options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	q.observations = make(chan Observation, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds an observation to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, o Observation) bool {
	start := time.Now()
	defer func() {
		metrics.RecordQueueLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if len(q.observations) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.observations <- o:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.observations))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives observations as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Observation {
	out := make(chan Observation)
	go func() {
		defer close(out)
		for o := range q.observations {
			select {
			case out <- o:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.observations))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued observations.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.observations)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.observations)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
