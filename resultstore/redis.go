package resultstore

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implementa Store sobre go-redis. O valor é gravado como string
// decimal pura, sem envelope.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

type RedisOption func(*RedisStore)

func WithRedisTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func NewRedisStore(rdb redis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, n *big.Int) (string, bool, error) {
	v, err := s.rdb.Get(ctx, Key(n)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("result cache get %s: %w", Key(n), err)
	}
	return v, true, nil
}

func (s *RedisStore) Put(ctx context.Context, n *big.Int, value string) error {
	if err := s.rdb.Set(ctx, Key(n), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("result cache put %s: %w", Key(n), err)
	}
	return nil
}

func (s *RedisStore) PutIfAbsent(ctx context.Context, n *big.Int, value string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, Key(n), value, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("result cache put-if-absent %s: %w", Key(n), err)
	}
	return ok, nil
}
