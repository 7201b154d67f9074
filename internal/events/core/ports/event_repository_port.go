package ports

import (
	"context"

	"dashboard-aggregates-service/internal/events/core/domain"
)

type EventRepositoryPort interface {
	// InsertEvents writes a batch. Rows whose dedupe key already exists are
	// skipped; inserted counts only the new ones.
	InsertEvents(ctx context.Context, events []*domain.Event) (inserted int, err error)
}

type EventQueuePort interface {
	// Enqueue never blocks. A full queue returns domain.ErrQueueFull.
	Enqueue(e *domain.Event) error
}
