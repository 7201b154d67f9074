package usecase

import (
	"context"
	"errors"
	"fmt"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/aggregates/core/ports"
	"dashboard-aggregates-service/internal/aggregates/core/privacy"
	"dashboard-aggregates-service/internal/platform/logger"
	"dashboard-aggregates-service/internal/platform/telemetry"
)

// SnapshotCache is satisfied by *cache.Cache[V].
type SnapshotCache[V any] interface {
	GetOrCompute(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, error)
	Purge(ctx context.Context) error
}

// Dependencies are shared by every aggregate use case.
type Dependencies struct {
	Budget  privacy.Budget
	Sources privacy.SourceFactory

	Metrics *telemetry.Metrics // optional
	Logger  logger.Logger      // optional
}

func (d *Dependencies) init() error {
	if err := d.Budget.Validate(); err != nil {
		return err
	}
	if d.Sources == nil {
		return fmt.Errorf("%w: no random source factory", domain.ErrNoiseConfiguration)
	}
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	return nil
}

func (d Dependencies) newInjector() (*privacy.Injector, error) {
	return privacy.NewInjector(d.Budget, d.Sources())
}

func (d Dependencies) record(kind string, draws int64, malformed int) {
	if malformed > 0 {
		d.Logger.Warn("skipped malformed session events",
			logger.String("kind", kind),
			logger.Int("count", malformed),
		)
	}
	if d.Metrics == nil {
		return
	}
	d.Metrics.NoiseDraws.Add(float64(draws))
	d.Metrics.MalformedRecords.WithLabelValues(kind).Add(float64(malformed))
}

// upstream maps store failures and timeouts onto ErrUpstreamUnavailable.
// Caller cancellation passes through unchanged.
func (d Dependencies) upstream(kind string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrInvalidWindow) {
		return err
	}
	if d.Metrics != nil {
		d.Metrics.UpstreamFailures.WithLabelValues(kind).Inc()
	}
	d.Logger.Error("aggregate computation failed", logger.String("kind", kind), logger.Error(err))

	if errors.Is(err, domain.ErrUpstreamUnavailable) || errors.Is(err, domain.ErrNoiseConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
}

// countryNormalizer upper-cases codes and folds anything the lookup does not
// know into domain.UnknownCountry.
func countryNormalizer(lookup ports.CountryLookupPort) func(string) string {
	return func(raw string) string {
		code := domain.NormalizeCountry(raw)
		if lookup == nil || lookup.Known(code) {
			return code
		}
		return domain.UnknownCountry
	}
}

func nameEntries(s *domain.GeoSnapshot, lookup ports.CountryLookupPort) {
	if lookup == nil {
		return
	}
	for i := range s.Entries {
		if name, ok := lookup.Name(s.Entries[i].Country); ok {
			s.Entries[i].Name = name
		}
	}
}
