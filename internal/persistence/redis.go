package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openintel/achboard/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

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

// GetOrSetJSON returns the cached JSON value at key, computing and storing
// it with the given TTL on a miss. Cache unavailability falls through to
// compute.
func GetOrSetJSON[T any](ctx context.Context, r *Redis, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	if r != nil && r.Client != nil {
		raw, err := r.Client.Get(ctx, key).Bytes()
		if err == nil {
			var cached T
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	if r != nil && r.Client != nil {
		if raw, jsonErr := json.Marshal(value); jsonErr == nil {
			r.Client.Set(ctx, key, raw, ttl)
		}
	}
	return value, nil
}

// PushQueue appends a payload to the named Redis list queue.
func (r *Redis) PushQueue(ctx context.Context, queue string, payload any) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Client.RPush(ctx, queue, raw).Err()
}

// PopQueue blocks up to timeout waiting for a queue entry and decodes it
// into out. Returns false when the wait timed out.
func (r *Redis) PopQueue(ctx context.Context, queue string, timeout time.Duration, out any) (bool, error) {
	if r == nil || r.Client == nil {
		return false, errors.New("redis client not configured")
	}
	res, err := r.Client.BLPop(ctx, timeout, queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if len(res) < 2 {
		return false, nil
	}
	return true, json.Unmarshal([]byte(res[1]), out)
}
