package privacy

import (
	"math"
	"sync/atomic"
)

// Injector perturbs true counts with Laplace noise calibrated to a Budget.
// An Injector belongs to one computation and is not safe for concurrent use.
type Injector struct {
	scale float64
	src   Source
	draws atomic.Int64
}

func NewInjector(b Budget, src Source) (*Injector, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrNilSource
	}
	return &Injector{scale: b.Scale(), src: src}, nil
}

// Laplace draws one sample from Laplace(0, scale) by inverse CDF.
func (in *Injector) Laplace() float64 {
	in.draws.Add(1)

	u := in.src.Float64() - 0.5
	// Float64 is in [0,1), so u == -0.5 is possible and ln(0) is not.
	for u <= -0.5 {
		u = in.src.Float64() - 0.5
	}

	sign := 1.0
	if u < 0 {
		sign = -1.0
	}
	return -in.scale * sign * math.Log(1-2*math.Abs(u))
}

// Inject returns trueCount plus rounded noise. The result is at least 1 when
// trueCount > 0 and never negative. Negative input is treated as zero.
func (in *Injector) Inject(trueCount int64) int64 {
	if trueCount < 0 {
		trueCount = 0
	}

	noised := int64(math.Round(float64(trueCount) + in.Laplace()))

	floor := int64(0)
	if trueCount > 0 {
		floor = 1
	}
	if noised < floor {
		return floor
	}
	return noised
}

// Draws reports how many noise samples this injector has produced.
func (in *Injector) Draws() int64 {
	return in.draws.Load()
}
