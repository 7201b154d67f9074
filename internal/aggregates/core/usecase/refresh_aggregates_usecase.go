package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dashboard-aggregates-service/internal/aggregates/core/domain"
	"dashboard-aggregates-service/internal/platform/logger"
)

// Purger drops cached snapshots. Satisfied by *cache.Cache[V].
type Purger interface {
	Purge(ctx context.Context) error
}

// RefreshConfig bounds how often caches may be dropped. MinInterval is the
// cache TTL.
type RefreshConfig struct {
	MinInterval time.Duration
	Now         func() time.Time
}

// RefreshAggregatesUseCase forces the next request for every window to
// recompute, i.e. an early expiry. It runs at most once per MinInterval and
// never touches in-flight computations.
type RefreshAggregatesUseCase struct {
	caches      []Purger
	log         logger.Logger
	minInterval time.Duration
	now         func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewRefreshAggregatesUseCase(cfg RefreshConfig, log logger.Logger, caches ...Purger) *RefreshAggregatesUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RefreshAggregatesUseCase{
		caches:      caches,
		log:         log,
		minInterval: cfg.MinInterval,
		now:         cfg.Now,
	}
}

// Execute purges every cache, or returns a *domain.RefreshThrottledError
// (matching domain.ErrRefreshThrottled) when the previous purge is younger
// than MinInterval. A failed purge still uses up the interval.
func (uc *RefreshAggregatesUseCase) Execute(ctx context.Context) error {
	uc.mu.Lock()
	now := uc.now()
	if !uc.last.IsZero() {
		if wait := uc.last.Add(uc.minInterval).Sub(now); wait > 0 {
			uc.mu.Unlock()
			uc.log.Warn("aggregate refresh throttled", logger.Duration("retry_after", wait))
			return &domain.RefreshThrottledError{RetryAfter: wait}
		}
	}
	uc.last = now
	uc.mu.Unlock()

	var errs []error
	for _, c := range uc.caches {
		if err := c.Purge(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		uc.log.Error("aggregate refresh incomplete", logger.Error(err))
		return fmt.Errorf("refresh aggregates: %w", err)
	}

	uc.log.Info("aggregate caches refreshed", logger.Int("caches", len(uc.caches)))
	return nil
}
