// Package bucket maps values onto the ordered intensity tiers used by the
// dashboard heatmaps.
package bucket

import (
	"fmt"
	"math"
)

// Tier is an ordered intensity tier; a larger Tier means more intense.
type Tier int

const (
	None Tier = iota
	VeryLow
	Low
	Medium
	High
	VeryHigh
)

var tierNames = [...]string{
	None:     "none",
	VeryLow:  "very_low",
	Low:      "low",
	Medium:   "medium",
	High:     "high",
	VeryHigh: "very_high",
}

// Classify maps value against the largest value in its set.
// A zero value, a degenerate max (<= 0) or any NaN input is None.
func Classify(value, max float64) Tier {
	if !(value > 0) || !(max > 0) {
		return None
	}

	intensity := value / max
	switch {
	case math.IsNaN(intensity):
		// +Inf/+Inf
		return None
	case intensity < 0.1:
		return VeryLow
	case intensity < 0.3:
		return Low
	case intensity < 0.5:
		return Medium
	case intensity < 0.9:
		// [0.7, 0.9) is the band just below VeryHigh, which is High.
		return High
	default:
		return VeryHigh
	}
}

func (t Tier) String() string {
	if t < None || t > VeryHigh {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

func (t Tier) MarshalText() ([]byte, error) {
	if t < None || t > VeryHigh {
		return nil, fmt.Errorf("bucket: invalid tier %d", int(t))
	}
	return []byte(tierNames[t]), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	for i, name := range tierNames {
		if name == string(b) {
			*t = Tier(i)
			return nil
		}
	}
	return fmt.Errorf("bucket: unknown tier %q", b)
}
