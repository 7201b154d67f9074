package domain_test

import (
	"errors"
	"testing"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
)

func date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWindow_Validate(t *testing.T) {
	tests := []struct {
		name    string
		window  domain.Window
		wantErr bool
	}{
		{"ok", domain.NewWindow(date("2024-01-01"), date("2024-01-31"), 30), false},
		{"single day", domain.NewWindow(date("2024-01-01"), date("2024-01-01"), 0), false},
		{"negative span", domain.NewWindow(date("2024-01-02"), date("2024-01-01"), 30), true},
		{"negative offset", domain.NewWindow(date("2024-01-01"), date("2024-01-02"), -1), true},
		{"offset too wide", domain.NewWindow(date("2024-01-01"), date("2024-01-02"), 31), true},
		{"missing from", domain.Window{To: date("2024-01-02"), MaxOffset: 30}, true},
		{"span too wide", domain.NewWindow(date("2023-01-01"), date("2024-06-01"), 30), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.window.Validate()
			if tt.wantErr && !errors.Is(err, domain.ErrInvalidWindow) {
				t.Fatalf("expected ErrInvalidWindow, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCohortRow_RetentionUndefinedWithoutSize(t *testing.T) {
	row := domain.CohortRow{CohortDay: date("2024-01-01"), Counts: []int64{0, 3, 1}}

	if _, ok := row.Size(); ok {
		t.Fatalf("expected unknown size")
	}
	if _, ok := row.RetentionRate(1); ok {
		t.Fatalf("expected undefined retention for a cohort without day-0 sessions")
	}
}

func TestCohortRow_RetentionRate(t *testing.T) {
	row := domain.CohortRow{CohortDay: date("2024-01-01"), Counts: []int64{4, 2, 1}}

	rate, ok := row.RetentionRate(0)
	if !ok || rate != 100 {
		t.Fatalf("expected 100%% at day 0, got %v (ok=%v)", rate, ok)
	}
	rate, ok = row.RetentionRate(1)
	if !ok || rate != 50 {
		t.Fatalf("expected 50%% at day 1, got %v (ok=%v)", rate, ok)
	}
	if _, ok := row.RetentionRate(3); ok {
		t.Fatalf("expected offset off the axis to be undefined")
	}
}

func TestCohortMatrix_CellsOmitZeros(t *testing.T) {
	m := &domain.CohortMatrix{Rows: []domain.CohortRow{
		{CohortDay: date("2024-01-01"), Counts: []int64{2, 0, 1}},
		{CohortDay: date("2024-01-02"), Counts: []int64{0, 0, 0}},
	}}

	cells := m.Cells()
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[1].DayOffset != 2 || cells[1].SessionCount != 1 {
		t.Fatalf("unexpected cell: %+v", cells[1])
	}
}

func TestGeoSnapshot_TruncateKeepsTotals(t *testing.T) {
	s := &domain.GeoSnapshot{
		Entries: []domain.GeoAggregate{
			{Country: "USA", VisitorCount: 10},
			{Country: "DEU", VisitorCount: 5},
			{Country: "FRA", VisitorCount: 1},
		},
		TotalVisitors:  16,
		TotalCountries: 3,
	}

	top := s.Truncate(2)
	if len(top.Entries) != 2 || top.TotalVisitors != 16 || top.TotalCountries != 3 {
		t.Fatalf("unexpected truncation: %+v", top)
	}
	if len(s.Entries) != 3 {
		t.Fatalf("Truncate must not modify the receiver")
	}
	if len(s.Truncate(0).Entries) != 3 {
		t.Fatalf("Truncate(0) should keep every entry")
	}
}

func TestNormalizeCountry(t *testing.T) {
	cases := map[string]string{
		"usa":  "USA",
		" deu": "DEU",
		"":     domain.UnknownCountry,
		"US":   domain.UnknownCountry,
		"U5A":  domain.UnknownCountry,
	}
	for in, want := range cases {
		if got := domain.NormalizeCountry(in); got != want {
			t.Fatalf("NormalizeCountry(%q) = %q, want %q", in, got, want)
		}
	}
}
