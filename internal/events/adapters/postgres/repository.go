package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"dashboard-aggregates-service/internal/events/core/domain"
	"dashboard-aggregates-service/internal/events/core/ports"
)

// schemaSQL is embedded so the service can bootstrap its own table.
//
//go:embed schema.sql
var schemaSQL string

// EnsureSchema applies schema.sql. Safe to run multiple times.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type EventRepository struct {
	db DB
}

func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

var _ ports.EventRepositoryPort = (*EventRepository)(nil)

// Ping reports whether the event store accepts connections.
func (r *EventRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const columnsPerRow = 8

const insertEventsPrefix = `
INSERT INTO session_events (
    id,
    session_id,
    country,
    first_seen_date,
    event_date,
    device_class,
    dedupe_key,
    received_at
) VALUES `

const insertEventsSuffix = `
ON CONFLICT (dedupe_key) DO NOTHING;
`

// InsertEvents writes the batch as a single multi-row INSERT.
func (r *EventRepository) InsertEvents(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(events)*columnsPerRow)
	var sb strings.Builder
	sb.WriteString(insertEventsPrefix)

	for i, e := range events {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeValueTuple(&sb, i)

		args = append(args,
			e.ID,
			e.SessionID,
			e.Country,
			e.FirstSeenDate,
			e.EventDate,
			e.DeviceClass,
			e.DedupeKey,
			e.ReceivedAt,
		)
	}
	sb.WriteString(insertEventsSuffix)

	res, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("exec batch insert: %w", err)
	}

	// rows < len(events) -> some were duplicates (ON CONFLICT DO NOTHING)
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rows), nil
}

// writeValueTuple writes ($n+1, ..., $n+8) for the given row.
func writeValueTuple(sb *strings.Builder, rowIndex int) {
	base := rowIndex * columnsPerRow
	sb.WriteByte('(')
	for col := 1; col <= columnsPerRow; col++ {
		if col > 1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "$%d", base+col)
	}
	sb.WriteByte(')')
}
