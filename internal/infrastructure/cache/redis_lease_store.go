package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLeasePrefix = "marketsync:lease:"

// releaseScript deletes the key only while it still holds the caller's token,
// so an expired lease taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLeaseStore hands out named, expiring leases backed by Redis.
// Suitable for deployments running several syncd instances.
type RedisLeaseStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisLeaseStore connects to Redis and creates a lease store
func NewRedisLeaseStore(ctx context.Context, cfg RedisConfig) (*RedisLeaseStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return NewRedisLeaseStoreWithClient(client, ""), nil
}

// NewRedisLeaseStoreWithClient creates a store with an existing Redis client
func NewRedisLeaseStoreWithClient(client *redis.Client, keyPrefix string) *RedisLeaseStore {
	if keyPrefix == "" {
		keyPrefix = defaultLeasePrefix
	}
	return &RedisLeaseStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the named lease for ttl. ok is false when another holder has it.
func (s *RedisLeaseStore) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, s.keyPrefix+name, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lease %q: %w", name, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives the lease back if token still owns it
func (s *RedisLeaseStore) Release(ctx context.Context, name, token string) error {
	deleted, err := releaseScript.Run(ctx, s.client, []string{s.keyPrefix + name}, token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lease %q: %w", name, err)
	}
	if deleted == 0 {
		return ErrLeaseNotHeld
	}
	return nil
}

// Close closes the Redis client
func (s *RedisLeaseStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisLeaseStore) GetClient() *redis.Client {
	return s.client
}
