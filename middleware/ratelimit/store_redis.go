package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/zap"
)

const redisOpTimeout = 500 * time.Millisecond

// RedisStore shares counters between instances. Redis failures fail open:
// the request is let through and the error logged.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	logger *logging.Service
}

func NewRedisStore(client redis.UniversalClient, prefix string, logger *logging.Service) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger.Named("ratelimit"),
	}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisStore) Get(key string) (int, time.Time, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	k := s.key(key)
	pipe := s.client.Pipeline()
	countCmd := pipe.Get(ctx, k)
	ttlCmd := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		s.logger.Warn("rate limit lookup failed", zap.Error(err))
		return 0, time.Time{}, false
	}

	count, err := countCmd.Int()
	if err != nil {
		return 0, time.Time{}, false
	}
	ttl := ttlCmd.Val()
	if ttl <= 0 {
		return 0, time.Time{}, false
	}
	return count, time.Now().Add(ttl), true
}

func (s *RedisStore) Set(key string, count int, resetTime time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	ttl := time.Until(resetTime)
	if ttl <= 0 {
		s.Reset(key)
		return
	}
	if err := s.client.Set(ctx, s.key(key), count, ttl).Err(); err != nil {
		s.logger.Warn("rate limit write failed", zap.Error(err))
	}
}

func (s *RedisStore) Increment(key string, resetTime time.Time) int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	k := s.key(key)
	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		s.logger.Warn("rate limit increment failed", zap.Error(err))
		return 0
	}
	if count == 1 {
		if err := s.client.PExpireAt(ctx, k, resetTime).Err(); err != nil {
			s.logger.Warn("rate limit expiry failed", zap.Error(err))
		}
	}
	return int(count)
}

// Close is a no-op; the client belongs to whoever provided it.
func (s *RedisStore) Close() error {
	return nil
}

func (s *RedisStore) Reset(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.logger.Warn("rate limit reset failed", zap.Error(err))
	}
}
