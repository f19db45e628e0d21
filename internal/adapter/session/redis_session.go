package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	flashKeyPrefix       = "flash:"
	idempotencyKeyPrefix = "idem:"

	sessionTTL        = 30 * 24 * time.Hour
	flashTTL          = 10 * time.Minute
	idempotencyKeyTTL = 24 * time.Hour
)

// RedisStore keeps guest sessions, flash messages and checkout
// idempotency keys in Redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Touch(ctx context.Context, sessionID string) error {
	key := sessionKeyPrefix + sessionID
	return r.client.Set(ctx, key, time.Now().Unix(), sessionTTL).Err()
}

func (r *RedisStore) AddFlash(ctx context.Context, sessionID, message string) error {
	key := flashKeyPrefix + sessionID
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, message)
	pipe.Expire(ctx, key, flashTTL)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("push flash: %w", err)
	}
	return nil
}

func (r *RedisStore) PopFlashes(ctx context.Context, sessionID string) ([]string, error) {
	key := flashKeyPrefix + sessionID
	pipe := r.client.TxPipeline()
	lrange := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pop flashes: %w", err)
	}
	return lrange.Val(), nil
}

func (r *RedisStore) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisStore) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
