// ABOUTME: Single background consumer loop that drains the event queue in FIFO order.
// ABOUTME: Isolates per-event failures so one bad event never stops processing.

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

// ProcessFunc runs the full pipeline for one event
type ProcessFunc func(ctx context.Context, event types.WebhookEvent) error

// Recorder receives consumer lifecycle observations, typically for metrics
type Recorder interface {
	EventEnqueued(eventType string)
	EventProcessed(eventType string, duration time.Duration, success bool)
	SetQueueDepth(depth int)
}

// NopRecorder discards all observations
type NopRecorder struct{}

func (NopRecorder) EventEnqueued(string)                       {}
func (NopRecorder) EventProcessed(string, time.Duration, bool) {}
func (NopRecorder) SetQueueDepth(int)                          {}

// Consumer drains an EventQueue with exactly one goroutine. Events are
// started in strict arrival order and processed sequentially; a failed
// event is logged and dropped after its single attempt.
type Consumer struct {
	queue    *EventQueue
	process  ProcessFunc
	recorder Recorder
	logger   *logrus.Logger
}

// NewConsumer creates a consumer for the given queue and pipeline
func NewConsumer(queue *EventQueue, process ProcessFunc, recorder Recorder, logger *logrus.Logger) *Consumer {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Consumer{
		queue:    queue,
		process:  process,
		recorder: recorder,
		logger:   logger,
	}
}

// Enqueue hands one event to the queue and records it
func (c *Consumer) Enqueue(event types.WebhookEvent) error {
	if err := c.queue.Enqueue(event); err != nil {
		return err
	}
	c.recorder.EventEnqueued(event.EventType)
	c.recorder.SetQueueDepth(c.queue.Depth())
	return nil
}

// Run blocks until ctx is cancelled, processing queued events one at a
// time. On cancellation the in-flight event finishes, the queue is closed,
// and anything still queued is discarded.
func (c *Consumer) Run(ctx context.Context) {
	logger := c.logger.WithField("component", "event_consumer")
	logger.Info("Event consumer started")

	for {
		event, ok := c.queue.Dequeue()
		if !ok {
			select {
			case <-ctx.Done():
				c.queue.Close()
				logger.Info("Event consumer stopping")
				return
			case <-c.queue.notify:
				continue
			}
		}

		c.processOne(ctx, event)
		c.recorder.SetQueueDepth(c.queue.Depth())

		// Stop pulling new events once shutdown has been requested
		select {
		case <-ctx.Done():
			c.queue.Close()
			logger.Info("Event consumer stopping")
			return
		default:
		}
	}
}

// processOne runs the pipeline for a single event, recovering panics so
// that nothing terminates the loop. The event gets exactly one attempt.
func (c *Consumer) processOne(ctx context.Context, event types.WebhookEvent) {
	logger := c.logger.WithField("event_type", event.EventType)
	startTime := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic while processing event: %v", r)
			}
		}()
		return c.process(ctx, event)
	}()

	duration := time.Since(startTime)
	c.recorder.EventProcessed(event.EventType, duration, err == nil)

	if err != nil {
		logger.WithError(err).WithField("duration", duration).Error("Event processing failed, dropping event")
		return
	}

	logger.WithField("duration", duration).Debug("Event processed")
}
