package usecase

import (
	"context"
	"errors"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/geo"
	"dashboard-aggregates-service/internal/aggregates/core/ports"
)

const (
	kindLocations = "locations"
	locationsKey  = "all"
)

var ErrNilLocationSource = errors.New("nil location source")

type GetLocationsInput struct {
	Top int // <= 0 returns every country
}

// GetLocationsUseCase serves the locations map. Whatever the source, its
// counts go through the same noise, percentage and tier path as geo trends.
type GetLocationsUseCase struct {
	source ports.LocationSourcePort
	lookup ports.CountryLookupPort
	cache  SnapshotCache[*domain.GeoSnapshot]
	deps   Dependencies
}

func NewGetLocationsUseCase(
	source ports.LocationSourcePort,
	lookup ports.CountryLookupPort,
	cache SnapshotCache[*domain.GeoSnapshot],
	deps Dependencies,
) (*GetLocationsUseCase, error) {
	if err := deps.init(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrNilLocationSource
	}
	return &GetLocationsUseCase{source: source, lookup: lookup, cache: cache, deps: deps}, nil
}

func (uc *GetLocationsUseCase) Execute(ctx context.Context, in GetLocationsInput) (*domain.GeoSnapshot, error) {
	snap, err := uc.cache.GetOrCompute(ctx, locationsKey, uc.compute)
	if err != nil {
		return nil, uc.deps.upstream(kindLocations, err)
	}
	return snap.Truncate(in.Top), nil
}

func (uc *GetLocationsUseCase) compute(ctx context.Context) (*domain.GeoSnapshot, error) {
	raw, err := uc.source.VisitorCounts(ctx)
	if err != nil {
		return nil, err
	}

	normalize := countryNormalizer(uc.lookup)
	counts := make(map[string]int64, len(raw))
	for code, n := range raw {
		counts[normalize(code)] += n
	}

	injector, err := uc.deps.newInjector()
	if err != nil {
		return nil, err
	}

	s := geo.Build(counts, injector)
	nameEntries(s, uc.lookup)
	uc.deps.record(kindLocations, injector.Draws(), 0)
	return s, nil
}
