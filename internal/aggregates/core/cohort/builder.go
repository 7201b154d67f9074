// Package cohort builds noised cohort-retention matrices from session events.
package cohort

import (
	"sort"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
)

// Noiser perturbs one true count. Implemented by *privacy.Injector.
type Noiser interface {
	Inject(trueCount int64) int64
}

type cellKey struct {
	day    time.Time
	offset int
}

// Build groups events by first-seen day and counts distinct sessions per day
// offset. Every cell of the dense result, zeros included, is noised exactly
// once, in ascending (cohort day, offset) order.
func Build(events []domain.SessionEvent, w domain.Window, n Noiser) *domain.CohortMatrix {
	m := &domain.CohortMatrix{Window: w}

	sessions := make(map[cellKey]map[string]struct{})
	days := make(map[time.Time]struct{})

	for _, ev := range events {
		if ev.Malformed() {
			m.Malformed++
			continue
		}

		day := domain.Day(ev.FirstSeenDate)
		offset := domain.DaysBetween(day, ev.EventDate)
		if !w.ContainsCohort(day) || offset < 0 || offset > w.MaxOffset {
			m.OutOfWindow++
			continue
		}

		k := cellKey{day: day, offset: offset}
		set, ok := sessions[k]
		if !ok {
			set = make(map[string]struct{})
			sessions[k] = set
		}
		set[ev.SessionID] = struct{}{}
		days[day] = struct{}{}
	}

	ordered := make([]time.Time, 0, len(days))
	for d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	m.Rows = make([]domain.CohortRow, 0, len(ordered))
	for _, day := range ordered {
		counts := make([]int64, w.Columns())
		for offset := range counts {
			counts[offset] = n.Inject(int64(len(sessions[cellKey{day: day, offset: offset}])))
		}
		m.Rows = append(m.Rows, domain.CohortRow{CohortDay: day, Counts: counts})
	}

	return m
}

// TrueCounts builds the matrix without noise. Used for diagnostics and tests;
// never publish its output.
func TrueCounts(events []domain.SessionEvent, w domain.Window) *domain.CohortMatrix {
	return Build(events, w, identity{})
}

type identity struct{}

func (identity) Inject(c int64) int64 { return c }
