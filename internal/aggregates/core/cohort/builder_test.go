package cohort_test

import (
	"testing"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/cohort"
	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/privacy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ev(session, firstSeen, eventDate string) domain.SessionEvent {
	return domain.SessionEvent{
		SessionID:     session,
		Country:       "USA",
		FirstSeenDate: day(firstSeen),
		EventDate:     day(eventDate),
		DeviceClass:   domain.DeviceDesktop,
	}
}

func scenarioEvents() []domain.SessionEvent {
	return []domain.SessionEvent{
		ev("a", "2024-01-01", "2024-01-01"),
		ev("b", "2024-01-01", "2024-01-01"),
		ev("a", "2024-01-01", "2024-01-08"),
		ev("c", "2024-01-02", "2024-01-02"),
		ev("c", "2024-01-02", "2024-01-05"),
	}
}

// countingNoiser adds nothing and records every call.
type countingNoiser struct{ calls int }

func (c *countingNoiser) Inject(v int64) int64 {
	c.calls++
	return v
}

func TestBuild_Scenario(t *testing.T) {
	w := domain.NewWindow(day("2024-01-01"), day("2024-01-31"), 30)
	noiser := &countingNoiser{}

	m := cohort.Build(scenarioEvents(), w, noiser)

	require.Len(t, m.Rows, 2)
	assert.Equal(t, day("2024-01-01"), m.Rows[0].CohortDay)
	assert.Equal(t, day("2024-01-02"), m.Rows[1].CohortDay)
	for _, row := range m.Rows {
		assert.Len(t, row.Counts, 31)
	}

	assert.Equal(t, int64(2), m.Rows[0].Counts[0])
	assert.Equal(t, int64(1), m.Rows[0].Counts[7])
	assert.Equal(t, int64(1), m.Rows[1].Counts[0])
	assert.Equal(t, int64(1), m.Rows[1].Counts[3])
	assert.Equal(t, int64(0), m.Rows[1].Counts[1])

	// Zeros are noised too.
	assert.Equal(t, 62, noiser.calls)
	assert.Zero(t, m.Malformed)
	assert.Zero(t, m.OutOfWindow)
}

func TestBuild_DistinctSessions(t *testing.T) {
	w := domain.NewWindow(day("2024-01-01"), day("2024-01-01"), 3)
	events := []domain.SessionEvent{
		ev("a", "2024-01-01", "2024-01-01"),
		ev("a", "2024-01-01", "2024-01-01"),
		ev("a", "2024-01-01", "2024-01-01"),
	}

	m := cohort.TrueCounts(events, w)

	require.Len(t, m.Rows, 1)
	assert.Equal(t, []int64{1, 0, 0, 0}, m.Rows[0].Counts)
}

func TestBuild_SkipsMalformedAndOutOfWindow(t *testing.T) {
	w := domain.NewWindow(day("2024-01-01"), day("2024-01-02"), 5)
	events := []domain.SessionEvent{
		ev("a", "2024-01-01", "2024-01-01"),
		{SessionID: "", FirstSeenDate: day("2024-01-01"), EventDate: day("2024-01-01")},
		{SessionID: "x", EventDate: day("2024-01-01")},
		ev("b", "2024-01-01", "2024-01-10"), // offset 9 > 5
		ev("c", "2024-01-03", "2024-01-03"), // cohort after window
		ev("d", "2024-01-02", "2024-01-01"), // negative offset
	}

	m := cohort.TrueCounts(events, w)

	assert.Equal(t, 2, m.Malformed)
	assert.Equal(t, 3, m.OutOfWindow)
	require.Len(t, m.Rows, 1)
	assert.Equal(t, int64(1), m.Rows[0].Counts[0])
}

func TestBuild_EmptyInputIsEmptyMatrix(t *testing.T) {
	w := domain.NewWindow(day("2024-01-01"), day("2024-01-31"), 30)

	m := cohort.TrueCounts(nil, w)

	require.NotNil(t, m)
	assert.Empty(t, m.Rows)
	assert.Empty(t, m.Cells())
}

func TestBuild_SeededNoiseIsIdempotent(t *testing.T) {
	w := domain.NewWindow(day("2024-01-01"), day("2024-01-31"), 30)

	build := func() *domain.CohortMatrix {
		in, err := privacy.NewInjector(privacy.DefaultBudget(), privacy.NewSeededSource(42))
		require.NoError(t, err)
		return cohort.Build(scenarioEvents(), w, in)
	}

	assert.Equal(t, build(), build())
}

func TestBuild_NoisedDayZeroKeepsRetentionAtHundred(t *testing.T) {
	w := domain.NewWindow(day("2024-01-01"), day("2024-01-31"), 30)

	for seed := uint64(0); seed < 50; seed++ {
		in, err := privacy.NewInjector(privacy.Budget{Epsilon: 0.2, Sensitivity: 1}, privacy.NewSeededSource(seed))
		require.NoError(t, err)

		m := cohort.Build(scenarioEvents(), w, in)
		for _, row := range m.Rows {
			require.GreaterOrEqual(t, row.Counts[0], int64(1))
			rate, ok := row.RetentionRate(0)
			require.True(t, ok)
			require.Equal(t, 100.0, rate)
		}
	}
}
