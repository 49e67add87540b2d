package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPending = "pending"

// IdempotencyStore remembers which brief a client retry key produced.
type IdempotencyStore interface {
	// Reserve claims key for userID. When the key was already claimed it
	// returns the stored brief id, or "" while the first request is still
	// creating its brief.
	Reserve(ctx context.Context, userID, key string) (briefID string, reserved bool, err error)
	Complete(ctx context.Context, userID, key, briefID string) error
	Release(ctx context.Context, userID, key string) error
}

type idempotencyService struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyService(rdb *redis.Client, ttl time.Duration) IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &idempotencyService{rdb: rdb, ttl: ttl}
}

func idempotencyKey(userID, key string) string {
	return fmt.Sprintf("idem:create-brief:%s:%s", userID, key)
}

func (s *idempotencyService) Reserve(ctx context.Context, userID, key string) (string, bool, error) {
	k := idempotencyKey(userID, key)

	ok, err := s.rdb.SetNX(ctx, k, idempotencyPending, s.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	val, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls, try once more
		ok, err = s.rdb.SetNX(ctx, k, idempotencyPending, s.ttl).Result()
		return "", ok, err
	}
	if err != nil {
		return "", false, err
	}
	if val == idempotencyPending {
		return "", false, nil
	}
	return val, false, nil
}

func (s *idempotencyService) Complete(ctx context.Context, userID, key, briefID string) error {
	return s.rdb.Set(ctx, idempotencyKey(userID, key), briefID, s.ttl).Err()
}

func (s *idempotencyService) Release(ctx context.Context, userID, key string) error {
	return s.rdb.Del(ctx, idempotencyKey(userID, key)).Err()
}
