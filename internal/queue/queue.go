// ABOUTME: In-memory FIFO event queue decoupling webhook ingestion from processing.
// ABOUTME: Producers enqueue without blocking; a single consumer drains in arrival order.

package queue

import (
	"errors"
	"sync"

	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

var (
	// ErrQueueClosed is returned by Enqueue once shutdown has begun
	ErrQueueClosed = errors.New("event queue is closed")
	// ErrQueueFull is returned by Enqueue when a capacity cap is configured and reached
	ErrQueueFull = errors.New("event queue is full")
)

// EventQueue is the hand-off between webhook producers and the consumer loop.
// Capacity 0 means unbounded, which is the default deployment shape: the
// queue is best-effort and non-durable, and events past a cap would be
// rejected rather than parked.
type EventQueue struct {
	mu       sync.Mutex
	events   []types.WebhookEvent
	capacity int
	closed   bool
	notify   chan struct{}
	logger   *logrus.Logger
}

// NewEventQueue creates an event queue. capacity <= 0 disables the cap.
func NewEventQueue(capacity int, logger *logrus.Logger) *EventQueue {
	return &EventQueue{
		capacity: capacity,
		notify:   make(chan struct{}, 1),
		logger:   logger,
	}
}

// Enqueue appends one event. It never waits for processing; it fails only
// when the queue has been closed or a configured capacity cap is reached.
func (q *EventQueue) Enqueue(event types.WebhookEvent) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if q.capacity > 0 && len(q.events) >= q.capacity {
		q.mu.Unlock()
		q.logger.WithFields(logrus.Fields{
			"event_type": event.EventType,
			"capacity":   q.capacity,
		}).Warn("Rejecting event, queue at capacity")
		return ErrQueueFull
	}
	q.events = append(q.events, event)
	depth := len(q.events)
	q.mu.Unlock()

	q.logger.WithFields(logrus.Fields{
		"event_type": event.EventType,
		"depth":      depth,
	}).Debug("Event enqueued")

	// Wake the consumer without blocking the producer
	select {
	case q.notify <- struct{}{}:
	default:
	}

	return nil
}

// Dequeue pops the oldest event, if any
func (q *EventQueue) Dequeue() (types.WebhookEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return types.WebhookEvent{}, false
	}
	event := q.events[0]
	q.events = q.events[1:]
	return event, true
}

// Depth returns the number of queued, unprocessed events
func (q *EventQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close marks the queue closed and discards anything still queued.
// Unprocessed events are lost; durability is an explicit non-goal.
func (q *EventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	if dropped := len(q.events); dropped > 0 {
		q.logger.WithField("dropped_events", dropped).Warn("Discarding queued events on shutdown")
	}
	q.events = nil
}
