// Package locations provides visitor-count sources for the locations map.
package locations

import (
	"context"
	"math/rand/v2"
	"sort"

	"dashboard-aggregates-service/internal/aggregates/core/ports"
)

// Generator produces plausible visitor counts for demos and local runs.
// The same seed always yields the same counts.
type Generator struct {
	seed   uint64
	weight map[string]float64
	base   int64
}

var _ ports.LocationSourcePort = (*Generator)(nil)

// defaultWeights roughly follow a global web audience.
var defaultWeights = map[string]float64{
	"USA": 1.00,
	"IND": 0.62,
	"GBR": 0.41,
	"DEU": 0.38,
	"BRA": 0.33,
	"FRA": 0.29,
	"CAN": 0.24,
	"JPN": 0.21,
	"AUS": 0.17,
	"ESP": 0.15,
	"ITA": 0.14,
	"MEX": 0.12,
	"NLD": 0.10,
	"TUR": 0.09,
	"POL": 0.08,
	"SWE": 0.06,
	"KOR": 0.05,
	"ZAF": 0.04,
	"NGA": 0.03,
	"ISL": 0.01,
}

const defaultBase = 5000

func NewGenerator(seed uint64) *Generator {
	return &Generator{seed: seed, weight: defaultWeights, base: defaultBase}
}

// VisitorCounts scales each weight by base with up to ±20% jitter.
func (g *Generator) VisitorCounts(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	codes := sortedCodes(g.weight)
	rng := rand.New(rand.NewPCG(g.seed, g.seed+1))

	counts := make(map[string]int64, len(codes))
	for _, code := range codes {
		jitter := 0.8 + 0.4*rng.Float64()
		counts[code] = int64(g.weight[code] * float64(g.base) * jitter)
	}
	return counts, nil
}

func sortedCodes(m map[string]float64) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
