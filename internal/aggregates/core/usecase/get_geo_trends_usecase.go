package usecase

import (
	"context"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/geo"
	"dashboard-aggregates-service/internal/aggregates/core/ports"
)

const kindGeo = "geo"

type GetGeoTrendsInput struct {
	From time.Time
	To   time.Time
	Top  int // <= 0 returns every country
}

type GetGeoTrendsUseCase struct {
	reader ports.SessionEventReaderPort
	lookup ports.CountryLookupPort
	cache  SnapshotCache[*domain.GeoSnapshot]
	deps   Dependencies
}

func NewGetGeoTrendsUseCase(
	reader ports.SessionEventReaderPort,
	lookup ports.CountryLookupPort,
	cache SnapshotCache[*domain.GeoSnapshot],
	deps Dependencies,
) (*GetGeoTrendsUseCase, error) {
	if err := deps.init(); err != nil {
		return nil, err
	}
	if reader == nil {
		return nil, ErrNilReader
	}
	return &GetGeoTrendsUseCase{reader: reader, lookup: lookup, cache: cache, deps: deps}, nil
}

// Execute returns the per-country snapshot for sessions active in the range.
// The full snapshot is cached; truncation to Top happens per request.
func (uc *GetGeoTrendsUseCase) Execute(ctx context.Context, in GetGeoTrendsInput) (*domain.GeoSnapshot, error) {
	r := domain.NewDateRange(in.From, in.To)
	if err := r.Validate(); err != nil {
		return nil, err
	}

	snap, err := uc.cache.GetOrCompute(ctx, r.Key(), func(ctx context.Context) (*domain.GeoSnapshot, error) {
		events, err := uc.reader.ListSessionEvents(ctx, ports.ActivityFilter(r))
		if err != nil {
			return nil, err
		}

		injector, err := uc.deps.newInjector()
		if err != nil {
			return nil, err
		}

		s := geo.FromEvents(events, injector, countryNormalizer(uc.lookup))
		nameEntries(s, uc.lookup)
		uc.deps.record(kindGeo, injector.Draws(), s.Malformed)
		return s, nil
	})
	if err != nil {
		return nil, uc.deps.upstream(kindGeo, err)
	}

	return snap.Truncate(in.Top), nil
}
