package ports

import (
	"context"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
)

// EventFilter bounds both date columns, inclusive at day granularity.
type EventFilter struct {
	FirstSeenFrom time.Time
	FirstSeenTo   time.Time
	EventFrom     time.Time
	EventTo       time.Time
}

// CohortFilter covers every event that can land in w's matrix.
func CohortFilter(w domain.Window) EventFilter {
	return EventFilter{
		FirstSeenFrom: w.From,
		FirstSeenTo:   w.To,
		EventFrom:     w.From,
		EventTo:       w.LastEventDay(),
	}
}

// ActivityFilter covers every event dated inside r, whatever its cohort.
func ActivityFilter(r domain.DateRange) EventFilter {
	return EventFilter{EventFrom: r.From, EventTo: r.To}
}

type SessionEventReaderPort interface {
	ListSessionEvents(ctx context.Context, f EventFilter) ([]domain.SessionEvent, error)
}
