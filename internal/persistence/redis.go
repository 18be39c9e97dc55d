package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/token-service/internal/config"
	"github.com/spec-kit/token-service/internal/domain"
)

// Redis wraps the go-redis client and serves as the token store.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis, retrying the initial ping with exponential backoff.
// An unreachable server is logged, not fatal; store calls will fail until it comes up.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries)),
		ctx,
	)
	ping := func() error {
		return client.Ping(ctx).Err()
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("redis ping failed, retrying", zap.Error(err), zap.Duration("next", next))
	}

	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Set stores value under key without expiration.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.Client.Set(ctx, key, value, 0).Err(); err != nil {
		return storeErr("set", err)
	}
	return nil
}

// SetWithExpiration stores value under key, evicted by the server after ttl.
func (r *Redis) SetWithExpiration(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("set %s: non-positive ttl %s", key, ttl)
	}
	if err := r.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		return storeErr("set with expiration", err)
	}
	return nil
}

// Get returns the value under key. found is false when the key does not exist.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("get", err)
	}
	return val, true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		return storeErr("delete", err)
	}
	return nil
}

// Exists reports whether key is present.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.Client.Exists(ctx, key).Result()
	if err != nil {
		return false, storeErr("exists", err)
	}
	return n > 0, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("redis %s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
