package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"dashboard-aggregates-service/internal/events/core/domain"
)

// Fake queue implementing EventQueuePort
type fakeQueue struct {
	EnqueueFn func(e *domain.Event) error
	queued    []*domain.Event
}

func (f *fakeQueue) Enqueue(e *domain.Event) error {
	if f.EnqueueFn != nil {
		if err := f.EnqueueFn(e); err != nil {
			return err
		}
	}
	f.queued = append(f.queued, e)
	return nil
}

func newTestUseCase(q *fakeQueue) *StoreEventUseCase {
	uc := NewStoreEventUseCase(q)
	uc.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return uc
}

func validInput() StoreEventInput {
	return StoreEventInput{
		SessionID:     "sess_1",
		Country:       "deu",
		FirstSeenDate: "2024-03-01",
		EventDate:     "2024-03-08",
		DeviceClass:   "Mobile",
	}
}

// ------------------------------------------------------------
// SUCCESS TEST
// ------------------------------------------------------------
func TestStoreEvent_Success(t *testing.T) {
	q := &fakeQueue{}
	uc := newTestUseCase(q)

	e, err := uc.Execute(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(q.queued) != 1 || q.queued[0] != e {
		t.Fatalf("expected the event to be queued once")
	}
	if e.Country != "DEU" {
		t.Fatalf("expected country DEU, got %s", e.Country)
	}
	if e.DeviceClass != "mobile" {
		t.Fatalf("expected device class mobile, got %s", e.DeviceClass)
	}
	if e.DedupeKey != "sess_1|2024-03-08" {
		t.Fatalf("unexpected dedupe key %q", e.DedupeKey)
	}
	if e.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected event id to be set")
	}
}

func TestStoreEvent_UnknownValuesAreNormalized(t *testing.T) {
	q := &fakeQueue{}
	uc := newTestUseCase(q)

	in := validInput()
	in.Country = ""
	in.DeviceClass = "smart-fridge"

	e, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Country != "UNK" || e.DeviceClass != "unknown" {
		t.Fatalf("expected UNK/unknown, got %s/%s", e.Country, e.DeviceClass)
	}
}

// ------------------------------------------------------------
// VALIDATION
// ------------------------------------------------------------
func TestStoreEvent_Validation(t *testing.T) {
	cases := map[string]func(in *StoreEventInput){
		"missing session":     func(in *StoreEventInput) { in.SessionID = "  " },
		"bad first seen":      func(in *StoreEventInput) { in.FirstSeenDate = "03/01/2024" },
		"bad event date":      func(in *StoreEventInput) { in.EventDate = "" },
		"event before cohort": func(in *StoreEventInput) { in.EventDate = "2024-02-28" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			q := &fakeQueue{}
			in := validInput()
			mutate(&in)

			_, err := newTestUseCase(q).Execute(context.Background(), in)
			if !errors.Is(err, ErrInvalidEvent) {
				t.Fatalf("expected ErrInvalidEvent, got %v", err)
			}
			if len(q.queued) != 0 {
				t.Fatalf("invalid event must not be queued")
			}
		})
	}
}

func TestStoreEvent_FutureDate(t *testing.T) {
	in := validInput()
	in.EventDate = "2024-03-11"

	_, err := newTestUseCase(&fakeQueue{}).Execute(context.Background(), in)
	if !errors.Is(err, ErrFutureTime) {
		t.Fatalf("expected ErrFutureTime, got %v", err)
	}
}

func TestStoreEvent_QueueFull(t *testing.T) {
	q := &fakeQueue{EnqueueFn: func(e *domain.Event) error { return domain.ErrQueueFull }}

	_, err := newTestUseCase(q).Execute(context.Background(), validInput())
	if !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

// ------------------------------------------------------------
// BULK
// ------------------------------------------------------------
func TestBulkCreateEvents_AllQueued(t *testing.T) {
	q := &fakeQueue{}
	uc := newTestUseCase(q)

	second := validInput()
	second.SessionID = "sess_2"

	res, err := uc.BulkCreateEvents(context.Background(), BulkCreateEventsInput{
		Events: []StoreEventInput{validInput(), second},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Queued != 2 || res.Rejected != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestBulkCreateEvents_ValidationErrorQueuesNothing(t *testing.T) {
	q := &fakeQueue{}
	bad := validInput()
	bad.SessionID = ""

	_, err := newTestUseCase(q).BulkCreateEvents(context.Background(), BulkCreateEventsInput{
		Events: []StoreEventInput{validInput(), bad},
	})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if len(q.queued) != 0 {
		t.Fatalf("expected no events queued, got %d", len(q.queued))
	}
}

func TestBulkCreateEvents_QueueFillsMidway(t *testing.T) {
	q := &fakeQueue{}
	q.EnqueueFn = func(e *domain.Event) error {
		if len(q.queued) >= 2 {
			return domain.ErrQueueFull
		}
		return nil
	}

	in := BulkCreateEventsInput{Events: []StoreEventInput{validInput(), validInput(), validInput(), validInput()}}
	res, err := newTestUseCase(q).BulkCreateEvents(context.Background(), in)

	if !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if res.Queued != 2 || res.Rejected != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
