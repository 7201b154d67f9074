package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/ports"
)

// LocationCounter counts distinct sessions per country over a trailing
// window of event days ending today.
type LocationCounter struct {
	db   DB
	days int
	now  func() time.Time
}

// NewLocationCounter covers the trailing days calendar days, today included.
func NewLocationCounter(db DB, days int) *LocationCounter {
	if days < 1 {
		days = 1
	}
	return &LocationCounter{db: db, days: days, now: time.Now}
}

var _ ports.LocationSourcePort = (*LocationCounter)(nil)

const visitorCountsSQL = `
SELECT
    country,
    COUNT(DISTINCT session_id) AS visitors
FROM session_events
WHERE event_date >= $1
  AND session_id IS NOT NULL
GROUP BY country
ORDER BY country`

func (c *LocationCounter) VisitorCounts(ctx context.Context) (map[string]int64, error) {
	since := domain.Day(c.now()).AddDate(0, 0, -(c.days - 1))

	rows, err := c.db.QueryContext(ctx, visitorCountsSQL, since)
	if err != nil {
		return nil, fmt.Errorf("query visitor counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			country  sql.NullString
			visitors int64
		)
		if err := rows.Scan(&country, &visitors); err != nil {
			return nil, fmt.Errorf("scan visitor count: %w", err)
		}
		// NULL and malformed codes are merged downstream.
		counts[country.String] += visitors
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visitor counts: %w", err)
	}

	return counts, nil
}
