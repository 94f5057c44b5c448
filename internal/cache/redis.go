package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "dashboard:views:"
	redisGenKey    = redisKeyPrefix + "gen"
)

// Redis shares list views between API instances. Invalidate bumps a
// generation counter so stale keys are never read again and expire on their own.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(addr, password string, db int, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) generation(ctx context.Context) (uint64, error) {
	gen, err := r.client.Get(ctx, redisGenKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache generation: %w", err)
	}
	return gen, nil
}

func viewKey(gen uint64, key string) string {
	return fmt.Sprintf("%s%d:%s", redisKeyPrefix, gen, key)
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (uint64, bool, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return 0, false, err
	}
	data, err := r.client.Get(ctx, viewKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return gen, false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return gen, false, err
	}
	return gen, true, nil
}

// Set writes under gen. A value from before an Invalidate lands on a
// generation nobody reads any more and expires with its TTL.
func (r *Redis) Set(ctx context.Context, key string, gen uint64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, viewKey(gen, key), data, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context) error {
	return r.client.Incr(ctx, redisGenKey).Err()
}
