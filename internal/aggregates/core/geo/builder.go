// Package geo builds noised per-country visitor snapshots.
package geo

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"dashboard-aggregates-service/internal/aggregates/core/bucket"
	"dashboard-aggregates-service/internal/aggregates/core/domain"
)

// Noiser perturbs one true count. Implemented by *privacy.Injector.
type Noiser interface {
	Inject(trueCount int64) int64
}

// Tally counts distinct sessions per country. normalize maps raw codes onto
// the published code set; nil means domain.NormalizeCountry.
func Tally(events []domain.SessionEvent, normalize func(string) string) (counts map[string]int64, malformed int) {
	if normalize == nil {
		normalize = domain.NormalizeCountry
	}

	seen := make(map[string]map[string]struct{})
	for _, ev := range events {
		if ev.SessionID == "" {
			malformed++
			continue
		}
		country := normalize(ev.Country)
		set, ok := seen[country]
		if !ok {
			set = make(map[string]struct{})
			seen[country] = set
		}
		set[ev.SessionID] = struct{}{}
	}

	counts = make(map[string]int64, len(seen))
	for country, set := range seen {
		counts[country] = int64(len(set))
	}
	return counts, malformed
}

// Build noises each country once (in code order, so a seeded source is
// reproducible), derives percentages from the noised total and classifies
// every entry against the largest noised count.
func Build(counts map[string]int64, n Noiser) *domain.GeoSnapshot {
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	entries := make([]domain.GeoAggregate, len(codes))
	values := make([]float64, len(codes))
	for i, code := range codes {
		noised := n.Inject(counts[code])
		entries[i] = domain.GeoAggregate{Country: code, VisitorCount: noised}
		values[i] = float64(noised)
	}

	total := floats.Sum(values)
	var largest float64
	if len(values) > 0 {
		largest = floats.Max(values)
	}

	for i := range entries {
		if total > 0 {
			entries[i].Percentage = values[i] / total * 100
		}
		entries[i].Tier = bucket.Classify(values[i], largest)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].VisitorCount != entries[j].VisitorCount {
			return entries[i].VisitorCount > entries[j].VisitorCount
		}
		return entries[i].Country < entries[j].Country
	})

	return &domain.GeoSnapshot{
		Entries:        entries,
		TotalVisitors:  int64(total),
		TotalCountries: len(entries),
	}
}

// FromEvents is Tally followed by Build.
func FromEvents(events []domain.SessionEvent, n Noiser, normalize func(string) string) *domain.GeoSnapshot {
	counts, malformed := Tally(events, normalize)
	snap := Build(counts, n)
	snap.Malformed = malformed
	return snap
}
