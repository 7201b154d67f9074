package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dashboard-aggregates-service/internal/events/adapters/queue"
	"dashboard-aggregates-service/internal/events/core/domain"
	"dashboard-aggregates-service/internal/platform/logger"
	"dashboard-aggregates-service/internal/platform/telemetry"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeRepo records every batch it receives.
type fakeRepo struct {
	mu       sync.Mutex
	batches  [][]*domain.Event
	InsertFn func(ctx context.Context, events []*domain.Event) (int, error)
}

func (f *fakeRepo) InsertEvents(ctx context.Context, events []*domain.Event) (int, error) {
	f.mu.Lock()
	f.batches = append(f.batches, events)
	f.mu.Unlock()
	if f.InsertFn != nil {
		return f.InsertFn(ctx, events)
	}
	return len(events), nil
}

func (f *fakeRepo) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func newTestEvent(t *testing.T, session string) *domain.Event {
	t.Helper()
	return &domain.Event{
		SessionID:     session,
		Country:       "USA",
		FirstSeenDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EventDate:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		DeviceClass:   "desktop",
		DedupeKey:     session + "|2024-01-02",
	}
}

func TestBuffer_EnqueueFull(t *testing.T) {
	m := telemetry.NewMetrics()
	buf := queue.NewBuffer(1, m)
	defer buf.Close()

	if err := buf.Enqueue(newTestEvent(t, "a")); err != nil {
		t.Fatalf("expected first Enqueue to succeed, got %v", err)
	}
	if err := buf.Enqueue(newTestEvent(t, "b")); !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if got := testutil.ToFloat64(m.EventsDropped); got != 1 {
		t.Fatalf("expected 1 dropped event, got %v", got)
	}
}

func TestBuffer_ClosedRejects(t *testing.T) {
	buf := queue.NewBuffer(10, nil)
	buf.Close()
	buf.Close()

	if err := buf.Enqueue(newTestEvent(t, "a")); !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected closed buffer to reject, got %v", err)
	}
}

func TestFlusher_FlushesOnThreshold(t *testing.T) {
	repo := &fakeRepo{}
	buf := queue.NewBuffer(100, nil)
	f := queue.NewFlusher(repo, buf, logger.NewNop(), nil, time.Hour, 3)
	f.Start()
	defer f.Stop()

	for _, s := range []string{"a", "b", "c"} {
		if err := buf.Enqueue(newTestEvent(t, s)); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for repo.total() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected a threshold flush, got %d events", repo.total())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFlusher_FlushesOnInterval(t *testing.T) {
	repo := &fakeRepo{}
	buf := queue.NewBuffer(100, nil)
	f := queue.NewFlusher(repo, buf, nil, nil, 10*time.Millisecond, 1000)
	f.Start()
	defer f.Stop()

	_ = buf.Enqueue(newTestEvent(t, "a"))

	deadline := time.Now().Add(time.Second)
	for repo.total() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("expected an interval flush")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFlusher_StopDrains(t *testing.T) {
	repo := &fakeRepo{}
	m := telemetry.NewMetrics()
	buf := queue.NewBuffer(100, m)
	f := queue.NewFlusher(repo, buf, nil, m, time.Hour, 1000)
	f.Start()

	for i := 0; i < 25; i++ {
		_ = buf.Enqueue(newTestEvent(t, string(rune('a'+i))))
	}
	f.Stop()

	if repo.total() != 25 {
		t.Fatalf("expected 25 events flushed on stop, got %d", repo.total())
	}
	if got := testutil.ToFloat64(m.EventsFlushed); got != 25 {
		t.Fatalf("expected flushed counter 25, got %v", got)
	}
}

func TestFlusher_RepositoryErrorIsCounted(t *testing.T) {
	repo := &fakeRepo{
		InsertFn: func(ctx context.Context, events []*domain.Event) (int, error) {
			return 0, errors.New("db down")
		},
	}
	m := telemetry.NewMetrics()
	buf := queue.NewBuffer(10, m)
	f := queue.NewFlusher(repo, buf, nil, m, time.Hour, 1000)
	f.Start()

	_ = buf.Enqueue(newTestEvent(t, "a"))
	f.Stop()

	if got := testutil.ToFloat64(m.FlushFailures); got != 1 {
		t.Fatalf("expected 1 flush failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsLost); got != 1 {
		t.Fatalf("expected 1 lost event, got %v", got)
	}
	// first attempt + one retry
	if got := repo.total(); got != 2 {
		t.Fatalf("expected 2 insert attempts, got %d", got)
	}
}

func TestFlusher_RetriesFailedInsertOnce(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	repo := &fakeRepo{
		InsertFn: func(ctx context.Context, events []*domain.Event) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			if attempts == 1 {
				return 0, errors.New("connection reset")
			}
			return len(events), nil
		},
	}
	m := telemetry.NewMetrics()
	buf := queue.NewBuffer(10, m)
	f := queue.NewFlusher(repo, buf, logger.NewNop(), m, time.Hour, 1000)
	f.Start()

	for _, s := range []string{"a", "b", "c"} {
		if err := buf.Enqueue(newTestEvent(t, s)); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	f.Stop()

	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if got := testutil.ToFloat64(m.EventsFlushed); got != 3 {
		t.Fatalf("expected 3 flushed after retry, got %v", got)
	}
	if got := testutil.ToFloat64(m.FlushFailures); got != 0 {
		t.Fatalf("expected no flush failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsLost); got != 0 {
		t.Fatalf("expected no lost events, got %v", got)
	}
}
