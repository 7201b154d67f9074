// Package queue buffers accepted events in memory and flushes them to the
// event store in batches.
package queue

import (
	"sync"

	"dashboard-aggregates-service/internal/events/core/domain"
	"dashboard-aggregates-service/internal/events/core/ports"
	"dashboard-aggregates-service/internal/platform/telemetry"
)

// Buffer is a bounded channel of events with a non-blocking Enqueue.
type Buffer struct {
	events  chan *domain.Event
	closed  chan struct{}
	once    sync.Once
	metrics *telemetry.Metrics
}

var _ ports.EventQueuePort = (*Buffer)(nil)

// NewBuffer creates a buffer holding at most capacity events. metrics may be nil.
func NewBuffer(capacity int, metrics *telemetry.Metrics) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		events:  make(chan *domain.Event, capacity),
		closed:  make(chan struct{}),
		metrics: metrics,
	}
}

func (b *Buffer) Enqueue(e *domain.Event) error {
	select {
	case <-b.closed:
		return domain.ErrQueueFull
	default:
	}

	select {
	case b.events <- e:
		if b.metrics != nil {
			b.metrics.QueueDepth.Set(float64(len(b.events)))
		}
		return nil
	default:
		if b.metrics != nil {
			b.metrics.EventsDropped.Inc()
		}
		return domain.ErrQueueFull
	}
}

// Len returns the number of events waiting to be flushed.
func (b *Buffer) Len() int {
	return len(b.events)
}

func (b *Buffer) Cap() int {
	return cap(b.events)
}

// Close stops accepting events. Safe to call multiple times.
func (b *Buffer) Close() {
	b.once.Do(func() {
		close(b.closed)
	})
}
