package queue

import (
	"context"
	"sync"
	"time"

	"dashboard-aggregates-service/internal/events/core/domain"
	"dashboard-aggregates-service/internal/events/core/ports"
	"dashboard-aggregates-service/internal/platform/logger"
	"dashboard-aggregates-service/internal/platform/telemetry"
)

const (
	// insertBatchSize is the maximum number of rows per repository call.
	insertBatchSize = 500

	// flushTimeout bounds each flush.
	flushTimeout = 5 * time.Second

	// retryDelay separates the first insert attempt from its single retry.
	// Inserts are idempotent on dedupe_key, so a retry never duplicates rows.
	retryDelay = 200 * time.Millisecond
)

// Flusher owns the buffer's consumer side: it batches events and writes them
// when the batch reaches threshold or the interval ticks, and drains the
// buffer on Stop.
type Flusher struct {
	repo      ports.EventRepositoryPort
	buffer    *Buffer
	log       logger.Logger
	metrics   *telemetry.Metrics
	interval  time.Duration
	threshold int
	wg        sync.WaitGroup
}

func NewFlusher(
	repo ports.EventRepositoryPort,
	buffer *Buffer,
	log logger.Logger,
	metrics *telemetry.Metrics,
	interval time.Duration,
	threshold int,
) *Flusher {
	if log == nil {
		log = logger.NewNop()
	}
	if threshold < 1 {
		threshold = 1
	}
	return &Flusher{
		repo:      repo,
		buffer:    buffer,
		log:       log,
		metrics:   metrics,
		interval:  interval,
		threshold: threshold,
	}
}

// Start launches the flush loop.
func (f *Flusher) Start() {
	f.wg.Add(1)
	go f.loop()
}

// Stop closes the buffer and waits until every queued event was flushed.
func (f *Flusher) Stop() {
	f.buffer.Close()
	f.wg.Wait()
}

func (f *Flusher) loop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	batch := make([]*domain.Event, 0, f.threshold)

	for {
		select {
		case e := <-f.buffer.events:
			batch = append(batch, e)
			if len(batch) >= f.threshold {
				f.flush(batch)
				batch = make([]*domain.Event, 0, f.threshold)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				f.flush(batch)
				batch = make([]*domain.Event, 0, f.threshold)
			}

		case <-f.buffer.closed:
			f.drain(&batch)
			if len(batch) > 0 {
				f.flush(batch)
			}
			return
		}
	}
}

func (f *Flusher) drain(batch *[]*domain.Event) {
	for {
		select {
		case e := <-f.buffer.events:
			*batch = append(*batch, e)
		default:
			return
		}
	}
}

func (f *Flusher) flush(batch []*domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	var inserted, dropped int
	for start := 0; start < len(batch); start += insertBatchSize {
		end := min(start+insertBatchSize, len(batch))

		n, err := f.insert(ctx, batch[start:end])
		if err != nil {
			dropped += end - start
			f.log.Error("Dropped session events after retry",
				logger.Error(err),
				logger.Int("batch_size", end-start),
				logger.Int("dropped", end-start),
			)
			if f.metrics != nil {
				f.metrics.FlushFailures.Inc()
				f.metrics.EventsLost.Add(float64(end - start))
			}
			continue
		}
		inserted += n
	}

	if f.metrics != nil {
		f.metrics.EventsFlushed.Add(float64(inserted))
		f.metrics.QueueDepth.Set(float64(f.buffer.Len()))
	}

	f.log.Debug("Flushed session events",
		logger.Int("total", len(batch)),
		logger.Int("inserted", inserted),
		logger.Int("dropped", dropped),
	)
}

// insert writes one chunk, retrying once after retryDelay.
func (f *Flusher) insert(ctx context.Context, chunk []*domain.Event) (int, error) {
	n, err := f.repo.InsertEvents(ctx, chunk)
	if err == nil {
		return n, nil
	}

	f.log.Warn("Insert failed, retrying once",
		logger.Error(err),
		logger.Int("batch_size", len(chunk)),
	)

	select {
	case <-time.After(retryDelay):
	case <-ctx.Done():
		return 0, err
	}
	return f.repo.InsertEvents(ctx, chunk)
}
