// Package privacy implements the Laplace mechanism that perturbs every
// published count.
package privacy

import (
	"errors"
	"fmt"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
)

const (
	DefaultEpsilon     = 1.0
	DefaultSensitivity = 1.0
)

// Budget is the process-wide noise configuration. Read-only after start.
type Budget struct {
	Epsilon     float64
	Sensitivity float64
}

func DefaultBudget() Budget {
	return Budget{Epsilon: DefaultEpsilon, Sensitivity: DefaultSensitivity}
}

// Validate rejects a budget that would disable or invert the noise.
func (b Budget) Validate() error {
	if !(b.Epsilon > 0) {
		return fmt.Errorf("%w: epsilon must be > 0, got %v", domain.ErrNoiseConfiguration, b.Epsilon)
	}
	if !(b.Sensitivity > 0) {
		return fmt.Errorf("%w: sensitivity must be > 0, got %v", domain.ErrNoiseConfiguration, b.Sensitivity)
	}
	return nil
}

// Scale is the Laplace scale parameter b = sensitivity / epsilon.
func (b Budget) Scale() float64 {
	return b.Sensitivity / b.Epsilon
}

// ErrNilSource is returned when an Injector is built without randomness.
var ErrNilSource = errors.New("privacy: nil random source")
