package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	aggdomain "dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/events/core/domain"
	"dashboard-aggregates-service/internal/events/core/ports"

	"github.com/google/uuid"
)

var (
	ErrInvalidEvent = errors.New("invalid event")
	ErrFutureTime   = errors.New("event date cannot be in the future")
)

type StoreEventUseCase struct {
	queue ports.EventQueuePort
	now   func() time.Time
}

func NewStoreEventUseCase(queue ports.EventQueuePort) *StoreEventUseCase {
	return &StoreEventUseCase{queue: queue, now: time.Now}
}

type StoreEventInput struct {
	SessionID     string
	Country       string
	FirstSeenDate string // YYYY-MM-DD
	EventDate     string // YYYY-MM-DD
	DeviceClass   string
}

// Execute validates the input and hands the event to the ingestion queue.
// The event is persisted asynchronously.
func (uc *StoreEventUseCase) Execute(ctx context.Context, in StoreEventInput) (*domain.Event, error) {
	e, err := uc.build(in)
	if err != nil {
		return nil, err
	}

	if err := uc.queue.Enqueue(e); err != nil {
		return nil, err
	}

	return e, nil
}

func (uc *StoreEventUseCase) build(in StoreEventInput) (*domain.Event, error) {
	if err := uc.validateInput(in); err != nil {
		return nil, err
	}

	// validateInput already parsed both dates.
	firstSeen, _ := time.Parse(aggdomain.DateLayout, in.FirstSeenDate)
	eventDate, _ := time.Parse(aggdomain.DateLayout, in.EventDate)
	sessionID := strings.TrimSpace(in.SessionID)

	return &domain.Event{
		ID:            uuid.New(),
		SessionID:     sessionID,
		Country:       aggdomain.NormalizeCountry(in.Country),
		FirstSeenDate: firstSeen,
		EventDate:     eventDate,
		DeviceClass:   string(aggdomain.ParseDeviceClass(in.DeviceClass)),
		DedupeKey:     buildDedupeKey(sessionID, eventDate),
		ReceivedAt:    uc.now().UTC(),
	}, nil
}

// One row per session and day is all the aggregations need.
func buildDedupeKey(sessionID string, eventDate time.Time) string {
	return sessionID + "|" + eventDate.Format(aggdomain.DateLayout)
}

type BulkCreateEventsInput struct {
	Events []StoreEventInput
}

type BulkCreateEventsResult struct {
	Queued   int
	Rejected int
}

// BulkCreateEvents validates every event before queueing any. If the queue
// fills up midway, the remaining events are reported as rejected together
// with domain.ErrQueueFull.
func (uc *StoreEventUseCase) BulkCreateEvents(ctx context.Context, in BulkCreateEventsInput) (BulkCreateEventsResult, error) {
	var res BulkCreateEventsResult

	events := make([]*domain.Event, 0, len(in.Events))
	for i, ev := range in.Events {
		e, err := uc.build(ev)
		if err != nil {
			return res, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, e)
	}

	for i, e := range events {
		if err := uc.queue.Enqueue(e); err != nil {
			res.Rejected = len(events) - i
			return res, err
		}
		res.Queued++
	}

	return res, nil
}

func (uc *StoreEventUseCase) validateInput(in StoreEventInput) error {
	if strings.TrimSpace(in.SessionID) == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidEvent)
	}

	firstSeen, err := time.Parse(aggdomain.DateLayout, in.FirstSeenDate)
	if err != nil {
		return fmt.Errorf("%w: first_seen_date must be YYYY-MM-DD", ErrInvalidEvent)
	}
	eventDate, err := time.Parse(aggdomain.DateLayout, in.EventDate)
	if err != nil {
		return fmt.Errorf("%w: event_date must be YYYY-MM-DD", ErrInvalidEvent)
	}

	if eventDate.Before(firstSeen) {
		return fmt.Errorf("%w: event_date before first_seen_date", ErrInvalidEvent)
	}

	if eventDate.After(aggdomain.Day(uc.now())) {
		return ErrFutureTime
	}

	return nil
}
