// Package ratecache shares the last live exchange-rate table between
// instances through Redis.
package ratecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/evcharge/core/currency"
)

// DefaultKey is the Redis key holding the snapshot.
const DefaultKey = "evcharge:rates:latest"

// RedisStore implements currency.SnapshotStore.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(addr, key string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return NewRedisStoreWithClient(rdb, key)
}

// NewRedisStoreWithClient uses an existing client.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load returns the stored snapshot. A missing key is not an error.
func (s *RedisStore) Load(ctx context.Context) (currency.RateTable, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return currency.RateTable{}, false, nil
	}
	if err != nil {
		return currency.RateTable{}, false, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var snap currency.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return currency.RateTable{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.Table(), true, nil
}

// Save stores t for ttl. A zero ttl keeps the key without expiry.
func (s *RedisStore) Save(ctx context.Context, t currency.RateTable, ttl time.Duration) error {
	raw, err := json.Marshal(t.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }
