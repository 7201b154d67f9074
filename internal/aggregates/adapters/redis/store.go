// Package redis shares published aggregate snapshots between replicas.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"dashboard-aggregates-service/internal/aggregates/cache"
)

// Config holds Redis connection configuration.
type Config struct {
	Address  string
	Password string
	DB       int
}

// ErrEmptyAddress is returned when Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

const (
	connectionTimeout = 5 * time.Second
	scanBatch         = 200
)

// NewClient creates a client and verifies the connection.
func NewClient(cfg Config) (*goredis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// SnapshotStore keeps snapshots under prefix+key. The first replica to
// publish a key wins until the key expires.
type SnapshotStore struct {
	client goredis.UniversalClient
	prefix string
}

func NewSnapshotStore(client goredis.UniversalClient, prefix string) *SnapshotStore {
	return &SnapshotStore{client: client, prefix: prefix}
}

var _ cache.SnapshotStore = (*SnapshotStore)(nil)

func (s *SnapshotStore) key(k string) string {
	return s.prefix + k
}

// Load returns the snapshot and its remaining lifetime. A key without an
// expiry reports a zero ttl.
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	data, ttl, err := s.get(ctx, s.key(key))
	if errors.Is(err, goredis.Nil) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, ttl, true, nil
}

func (s *SnapshotStore) Publish(ctx context.Context, key string, data []byte, ttl time.Duration) ([]byte, time.Duration, error) {
	k := s.key(key)

	ok, err := s.client.SetNX(ctx, k, data, ttl).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if ok {
		return data, ttl, nil
	}

	existing, remaining, err := s.get(ctx, k)
	if errors.Is(err, goredis.Nil) {
		// The winner expired in between; ours is as good as any.
		return data, ttl, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return existing, remaining, nil
}

// get reads value and PTTL in one round trip.
func (s *SnapshotStore) get(ctx context.Context, k string) ([]byte, time.Duration, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, k)
	ttlCmd := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return nil, 0, err
	}

	data, err := getCmd.Bytes()
	if err != nil {
		return nil, 0, err
	}

	// -1 (no expiry) and -2 (gone) come back as negative durations.
	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return data, ttl, nil
}

func (s *SnapshotStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, s.key(prefix)+"*", scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", prefix, err)
	}

	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}
