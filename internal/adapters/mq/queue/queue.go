// Package queue defines the contract for enqueuing and consuming
// post-call transcription deliveries awaiting analysis.
package queue

import (
	"context"
	"sync"

	"github.com/speechwell/speechwell/internal/domain/model"
	"github.com/speechwell/speechwell/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 10_000
)

// Call is the payload type flowing through the queue.
type Call = model.Call

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a call to the queue.
	// Returns false if the queue is full or closed and the call was not enqueued.
	Enqueue(ctx context.Context, c Call) bool

	// Dequeue returns a channel that receives calls as they become available.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Call

	// Len returns the current number of queued calls.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new calls
	// can be enqueued and the dequeue channel drains then closes.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	calls    chan Call
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.calls = make(chan Call, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a call to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Call) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueDrop()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.calls <- c:
		q.publishGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueDrop()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueDrop()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives calls as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Call {
	out := make(chan Call)
	go func() {
		defer close(out)
		for c := range q.calls {
			select {
			case out <- c:
				q.publishGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued calls.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.calls)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.calls)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishGauges() {
	size := len(q.calls)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
