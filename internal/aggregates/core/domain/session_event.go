package domain

import (
	"strings"
	"time"
)

type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceUnknown DeviceClass = "unknown"
)

// ParseDeviceClass maps free-form input onto a known class.
func ParseDeviceClass(s string) DeviceClass {
	switch DeviceClass(strings.ToLower(strings.TrimSpace(s))) {
	case DeviceDesktop:
		return DeviceDesktop
	case DeviceMobile:
		return DeviceMobile
	case DeviceTablet:
		return DeviceTablet
	default:
		return DeviceUnknown
	}
}

// UnknownCountry groups sessions whose origin could not be resolved.
const UnknownCountry = "UNK"

// NormalizeCountry upper-cases an ISO-3166 alpha-3 code; anything that is
// not three letters becomes UnknownCountry.
func NormalizeCountry(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return UnknownCountry
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return UnknownCountry
		}
	}
	return code
}

// SessionEvent is one observed session activity. Read-only to aggregation.
type SessionEvent struct {
	SessionID     string
	Country       string
	FirstSeenDate time.Time
	EventDate     time.Time
	DeviceClass   DeviceClass
}

// Malformed reports whether required fields are missing.
func (e SessionEvent) Malformed() bool {
	return e.SessionID == "" || e.FirstSeenDate.IsZero() || e.EventDate.IsZero()
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b, both truncated to the day.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// DateLayout is the calendar date wire format.
const DateLayout = "2006-01-02"
