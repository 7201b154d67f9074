package domain

import "dashboard-aggregates-service/internal/aggregates/core/bucket"

// GeoAggregate is the published visitor count and share of one country.
type GeoAggregate struct {
	Country      string      `json:"country"`
	Name         string      `json:"name,omitempty"`
	VisitorCount int64       `json:"visitor_count"`
	Percentage   float64     `json:"percentage"`
	Tier         bucket.Tier `json:"tier"`
}

// GeoSnapshot lists every country sorted by visitor count descending, then
// country code ascending. Totals always describe the full set.
type GeoSnapshot struct {
	Entries        []GeoAggregate `json:"entries"`
	TotalVisitors  int64          `json:"total_visitors"`
	TotalCountries int            `json:"total_countries"`
	Malformed      int            `json:"malformed"`
}

// Truncate returns a copy holding at most n entries. n <= 0 keeps everything.
// Totals are not recomputed.
func (s *GeoSnapshot) Truncate(n int) *GeoSnapshot {
	out := *s
	if n <= 0 || n >= len(s.Entries) {
		out.Entries = append([]GeoAggregate(nil), s.Entries...)
		return &out
	}
	out.Entries = append([]GeoAggregate(nil), s.Entries[:n]...)
	return &out
}
