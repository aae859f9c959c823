package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/marketsync/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LeaseStore is what the factory hands out
type LeaseStore interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, name, token string) error
	Close() error
}

// LeaseStoreFactory creates lease stores based on configuration
type LeaseStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	connect               func(ctx context.Context, cfg RedisConfig) (LeaseStore, error)
}

// LeaseStoreFactoryOption is a functional option for configuring the factory
type LeaseStoreFactoryOption func(*LeaseStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LeaseStoreFactoryOption {
	return func(f *LeaseStoreFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) LeaseStoreFactoryOption {
	return func(f *LeaseStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLeaseStoreFactory creates a new factory
func NewLeaseStoreFactory(cfg config.RedisConfig, opts ...LeaseStoreFactoryOption) *LeaseStoreFactory {
	f := &LeaseStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connect: func(ctx context.Context, cfg RedisConfig) (LeaseStore, error) {
			return NewRedisLeaseStore(ctx, cfg)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is enabled and reachable, and
// an in-memory store otherwise (unless fallback is disabled).
func (f *LeaseStoreFactory) CreateStore(ctx context.Context) (LeaseStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory lease store")
		return NewInMemoryLeaseStore(), nil
	}

	store, err := f.connect(ctx, RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis lease store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for batch leases: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory lease store. "+
		"Several instances may then process the same batch.",
		zap.Error(err),
	)
	return NewInMemoryLeaseStore(), nil
}

var (
	_ LeaseStore = (*RedisLeaseStore)(nil)
	_ LeaseStore = (*InMemoryLeaseStore)(nil)
)
