package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVStore is a plain string key/value store on Redis used for advisory client mirrors.
// A zero TTL keeps keys until they are removed.
type KVStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewKVStore creates a KV store whose writes expire after ttl (0 = no expiry).
func NewKVStore(client redis.UniversalClient, ttl time.Duration) *KVStore {
	return &KVStore{client: client, ttl: ttl}
}

// Get returns the value for key; found is false when the key does not exist.
func (k *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("key cannot be empty")
	}
	val, err := k.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set overwrites key with value.
func (k *KVStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := k.client.Set(ctx, key, value, k.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (k *KVStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := k.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Health pings the underlying client.
func (k *KVStore) Health(ctx context.Context) error {
	return k.client.Ping(ctx).Err()
}
