package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 2 * time.Second

// RedisBackend stores the record in Redis so several terminals on one
// workstation share a sign-in. Keys are namespaced per profile:
// bloghub:<profile>:<key>.
type RedisBackend struct {
	rdb     redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedisBackend wraps rdb. An empty profile means "default".
func NewRedisBackend(rdb redis.UniversalClient, profile string) *RedisBackend {
	if profile == "" {
		profile = "default"
	}
	return &RedisBackend{
		rdb:     rdb,
		prefix:  "bloghub:" + profile + ":",
		timeout: defaultRedisTimeout,
	}
}

func (r *RedisBackend) Load(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisBackend) Save(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
