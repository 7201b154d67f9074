package domain

import "time"

// CohortCell is one (cohort_day, day_offset) count in sparse form.
type CohortCell struct {
	CohortDay    time.Time `json:"cohort_day"`
	DayOffset    int       `json:"day_offset"`
	SessionCount int64     `json:"session_count"`
}

// CohortRow holds the published (noised) counts of one cohort, indexed by
// day offset.
type CohortRow struct {
	CohortDay time.Time `json:"cohort_day"`
	Counts    []int64   `json:"counts"`
}

// Size is the published day-0 count. ok is false when it is zero: the
// cohort size is then unknown.
func (r CohortRow) Size() (size int64, ok bool) {
	if len(r.Counts) == 0 || r.Counts[0] <= 0 {
		return 0, false
	}
	return r.Counts[0], true
}

// RetentionRate returns the percentage of the cohort observed at offset.
// ok is false when the cohort size is unknown or offset is off the axis;
// there is no fallback denominator.
func (r CohortRow) RetentionRate(offset int) (rate float64, ok bool) {
	size, ok := r.Size()
	if !ok || offset < 0 || offset >= len(r.Counts) {
		return 0, false
	}
	return float64(r.Counts[offset]) / float64(size) * 100, true
}

// CohortMatrix is the dense cohort-retention matrix for one window.
// Built once per computation and never mutated afterwards.
type CohortMatrix struct {
	Window      Window      `json:"window"`
	Rows        []CohortRow `json:"rows"`
	Malformed   int         `json:"malformed"`
	OutOfWindow int         `json:"out_of_window"`
}

// Cells returns the sparse form, omitting zero counts.
func (m *CohortMatrix) Cells() []CohortCell {
	cells := make([]CohortCell, 0, len(m.Rows))
	for _, row := range m.Rows {
		for offset, count := range row.Counts {
			if count == 0 {
				continue
			}
			cells = append(cells, CohortCell{
				CohortDay:    row.CohortDay,
				DayOffset:    offset,
				SessionCount: count,
			})
		}
	}
	return cells
}
