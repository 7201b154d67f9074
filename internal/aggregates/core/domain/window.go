package domain

import (
	"fmt"
	"time"
)

const (
	// MaxDayOffset bounds the day-offset axis of a cohort matrix.
	MaxDayOffset = 30

	// MaxSpanDays bounds how many cohort days one query may cover.
	MaxSpanDays = 366
)

// Window selects cohort days [From, To] (inclusive, day granularity) and the
// day-offset axis [0, MaxOffset].
type Window struct {
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	MaxOffset int       `json:"max_offset"`
}

// NewWindow truncates both ends to the day.
func NewWindow(from, to time.Time, maxOffset int) Window {
	return Window{From: Day(from), To: Day(to), MaxOffset: maxOffset}
}

func (w Window) Validate() error {
	if w.MaxOffset < 0 || w.MaxOffset > MaxDayOffset {
		return fmt.Errorf("%w: max_offset %d outside [0,%d]", ErrInvalidWindow, w.MaxOffset, MaxDayOffset)
	}
	return validateRange(w.From, w.To)
}

// Columns is the width of every matrix row.
func (w Window) Columns() int {
	return w.MaxOffset + 1
}

// ContainsCohort reports whether day falls inside [From, To].
func (w Window) ContainsCohort(day time.Time) bool {
	day = Day(day)
	return !day.Before(w.From) && !day.After(w.To)
}

// LastEventDay is the latest event date that can land on the offset axis.
func (w Window) LastEventDay() time.Time {
	return w.To.AddDate(0, 0, w.MaxOffset)
}

// Key identifies the window in the aggregate cache.
func (w Window) Key() string {
	return fmt.Sprintf("%s|%s|%d", w.From.Format(DateLayout), w.To.Format(DateLayout), w.MaxOffset)
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: Day(from), To: Day(to)}
}

func (r DateRange) Validate() error {
	return validateRange(r.From, r.To)
}

func (r DateRange) Key() string {
	return r.From.Format(DateLayout) + "|" + r.To.Format(DateLayout)
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidWindow)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: negative span", ErrInvalidWindow)
	}
	if DaysBetween(from, to) >= MaxSpanDays {
		return fmt.Errorf("%w: span exceeds %d days", ErrInvalidWindow, MaxSpanDays)
	}
	return nil
}
