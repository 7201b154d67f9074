// Package cache memoizes published aggregate snapshots per query window.
//
// A snapshot is computed at most once per key and TTL period: concurrent
// callers share one in-flight computation, and the computation finishes and
// populates the cache even when every caller has gone away. Because every
// computation draws fresh noise, serving the stored snapshot is what keeps
// repeated queries from averaging the noise out.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"dashboard-aggregates-service/internal/platform/logger"
	"dashboard-aggregates-service/internal/platform/telemetry"
)

const (
	DefaultTTL            = 5 * time.Minute
	DefaultComputeTimeout = 10 * time.Second
)

// ErrComputeTimeout matches context.DeadlineExceeded with errors.Is.
var ErrComputeTimeout = fmt.Errorf("aggregate computation timed out: %w", context.DeadlineExceeded)

// SnapshotStore is a second cache level shared between replicas.
type SnapshotStore interface {
	// Load returns the stored snapshot, if any, with its remaining lifetime
	// (zero when unknown).
	Load(ctx context.Context, key string) ([]byte, time.Duration, bool, error)
	// Publish stores data unless another writer got there first, and returns
	// whichever snapshot is now stored with its remaining lifetime.
	Publish(ctx context.Context, key string, data []byte, ttl time.Duration) ([]byte, time.Duration, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

type options struct {
	ttl            time.Duration
	computeTimeout time.Duration
	now            func() time.Time
	store          SnapshotStore
	metrics        *telemetry.Metrics
	log            logger.Logger
}

type Option func(*options)

func WithTTL(d time.Duration) Option { return func(o *options) { o.ttl = d } }

func WithComputeTimeout(d time.Duration) Option {
	return func(o *options) { o.computeTimeout = d }
}

// WithClock replaces time.Now, for expiry tests.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithStore(s SnapshotStore) Option { return func(o *options) { o.store = s } }

func WithMetrics(m *telemetry.Metrics) Option { return func(o *options) { o.metrics = m } }

func WithLogger(l logger.Logger) Option { return func(o *options) { o.log = l } }

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache holds snapshots of type V. kind labels metrics and namespaces keys
// in the shared store.
type Cache[V any] struct {
	kind string
	opts options

	mu        sync.RWMutex
	entries   map[string]entry[V]
	lastSweep time.Time
	group     singleflight.Group
}

func New[V any](kind string, opts ...Option) *Cache[V] {
	o := options{
		ttl:            DefaultTTL,
		computeTimeout: DefaultComputeTimeout,
		now:            time.Now,
		log:            logger.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[V]{
		kind:    kind,
		opts:    o,
		entries: make(map[string]entry[V]),
	}
}

// GetOrCompute returns the fresh snapshot for key, computing it if needed.
// compute receives a context detached from ctx and bounded by the compute
// timeout. If ctx ends first the caller gets ctx.Err() while the computation
// carries on for later callers.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, error) {
	var zero V

	if v, ok := c.lookup(key); ok {
		c.hit()
		return v, nil
	}
	c.miss()

	ch := c.group.DoChan(key, func() (any, error) {
		// A flight that finished between our lookup and DoChan has
		// already stored the value.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.computeTimeout)
		defer cancel()

		return c.fill(cctx, key, compute)
	})

	timer := time.NewTimer(c.opts.computeTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		return zero, ErrComputeTimeout
	}
}

func (c *Cache[V]) fill(ctx context.Context, key string, compute func(context.Context) (V, error)) (V, error) {
	var zero V
	storeKey := c.kind + ":" + key

	if c.opts.store != nil {
		if v, ttl, ok := c.loadShared(ctx, storeKey); ok {
			c.set(key, v, ttl)
			return v, nil
		}
	}

	start := c.opts.now()
	v, err := compute(ctx)
	c.observe(start, err)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%s %s: %w", c.kind, key, ErrComputeTimeout)
		}
		return zero, err
	}

	ttl := c.opts.ttl
	if c.opts.store != nil {
		v, ttl = c.publishShared(ctx, storeKey, v)
	}

	c.set(key, v, ttl)
	c.opts.log.Debug("aggregate snapshot computed",
		logger.String("kind", c.kind),
		logger.String("key", key),
		logger.Duration("took", c.opts.now().Sub(start)),
	)
	return v, nil
}

func (c *Cache[V]) loadShared(ctx context.Context, storeKey string) (V, time.Duration, bool) {
	var v V

	data, ttl, found, err := c.opts.store.Load(ctx, storeKey)
	if err != nil {
		c.opts.log.Warn("snapshot store load failed", logger.String("key", storeKey), logger.Error(err))
		return v, 0, false
	}
	if !found {
		return v, 0, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.opts.log.Warn("discarding undecodable shared snapshot", logger.String("key", storeKey), logger.Error(err))
		return v, 0, false
	}
	return v, ttl, true
}

// publishShared returns the snapshot other replicas will serve, ours or the
// one a faster replica published first, and how long it stays valid.
func (c *Cache[V]) publishShared(ctx context.Context, storeKey string, v V) (V, time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.opts.log.Warn("snapshot not shareable", logger.String("key", storeKey), logger.Error(err))
		return v, c.opts.ttl
	}

	stored, ttl, err := c.opts.store.Publish(ctx, storeKey, data, c.opts.ttl)
	if err != nil {
		c.opts.log.Warn("snapshot store publish failed", logger.String("key", storeKey), logger.Error(err))
		return v, c.opts.ttl
	}
	if stored == nil || bytes.Equal(stored, data) {
		return v, ttl
	}

	var winner V
	if err := json.Unmarshal(stored, &winner); err != nil {
		c.opts.log.Warn("discarding undecodable shared snapshot", logger.String("key", storeKey), logger.Error(err))
		return v, c.opts.ttl
	}
	return winner, ttl
}

// lookup returns the live entry for key and evicts it once expired.
func (c *Cache[V]) lookup(key string) (V, bool) {
	var zero V
	now := c.opts.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return zero, false
	}
	if now.Before(e.expires) {
		return e.value, true
	}

	c.mu.Lock()
	// A concurrent fill may have replaced it meanwhile.
	if cur, ok := c.entries[key]; ok && !now.Before(cur.expires) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return zero, false
}

// set stores v for ttl, capped at the configured TTL; a non-positive ttl
// means the full TTL. At most once per TTL it also sweeps expired entries.
func (c *Cache[V]) set(key string, v V, ttl time.Duration) {
	if ttl <= 0 || ttl > c.opts.ttl {
		ttl = c.opts.ttl
	}
	now := c.opts.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: v, expires: now.Add(ttl)}

	if now.Sub(c.lastSweep) < c.opts.ttl {
		return
	}
	c.lastSweep = now
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}

// Invalidate drops the local entry for key. An in-flight computation for key
// still completes and stores its result.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge drops every local entry and, when configured, every shared snapshot
// of this kind.
func (c *Cache[V]) Purge(ctx context.Context) error {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()

	c.opts.log.Info("aggregate cache purged", logger.String("kind", c.kind), logger.Int("entries", n))

	if c.opts.store == nil {
		return nil
	}
	if err := c.opts.store.DeletePrefix(ctx, c.kind+":"); err != nil {
		return fmt.Errorf("purge shared %s snapshots: %w", c.kind, err)
	}
	return nil
}

// Len counts local entries. Expired entries linger until the next lookup of
// their key or the next sweep.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[V]) hit() {
	if c.opts.metrics != nil {
		c.opts.metrics.CacheHits.WithLabelValues(c.kind).Inc()
	}
}

func (c *Cache[V]) miss() {
	if c.opts.metrics != nil {
		c.opts.metrics.CacheMisses.WithLabelValues(c.kind).Inc()
	}
}

func (c *Cache[V]) observe(start time.Time, err error) {
	if c.opts.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.opts.metrics.Computations.WithLabelValues(c.kind, outcome).Inc()
	c.opts.metrics.ComputeDuration.WithLabelValues(c.kind).Observe(c.opts.now().Sub(start).Seconds())
}
