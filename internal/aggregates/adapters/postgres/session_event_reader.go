package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/ports"
)

type SessionEventReader struct {
	db DB
}

func NewSessionEventReader(db DB) *SessionEventReader {
	return &SessionEventReader{db: db}
}

var _ ports.SessionEventReaderPort = (*SessionEventReader)(nil)

// ListSessionEvents returns every stored event matching f. Zero filter bounds
// are left open. NULL columns come back as zero values, so the aggregators
// count those rows as malformed instead of failing the query.
func (r *SessionEventReader) ListSessionEvents(ctx context.Context, f ports.EventFilter) ([]domain.SessionEvent, error) {
	var (
		conds []string
		args  []any
	)
	bound := func(column, op string, t time.Time) {
		if t.IsZero() {
			return
		}
		args = append(args, domain.Day(t))
		conds = append(conds, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}
	bound("first_seen_date", ">=", f.FirstSeenFrom)
	bound("first_seen_date", "<=", f.FirstSeenTo)
	bound("event_date", ">=", f.EventFrom)
	bound("event_date", "<=", f.EventTo)

	query := `
SELECT
    session_id,
    country,
    first_seen_date,
    event_date,
    device_class
FROM session_events`
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var events []domain.SessionEvent
	for rows.Next() {
		var (
			sessionID, country, device sql.NullString
			firstSeen, eventDate       sql.NullTime
		)
		if err := rows.Scan(&sessionID, &country, &firstSeen, &eventDate, &device); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}

		ev := domain.SessionEvent{
			SessionID:   sessionID.String,
			Country:     country.String,
			DeviceClass: domain.ParseDeviceClass(device.String),
		}
		if firstSeen.Valid {
			ev.FirstSeenDate = domain.Day(firstSeen.Time)
		}
		if eventDate.Valid {
			ev.EventDate = domain.Day(eventDate.Time)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}

	return events, nil
}
