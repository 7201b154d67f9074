package ports

import "context"

// LocationSourcePort yields true (un-noised) visitor counts per country.
type LocationSourcePort interface {
	VisitorCounts(ctx context.Context) (map[string]int64, error)
}
