package remember

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisRetention keeps a record in Redis past its expiry so that
// Validate can still report ErrExpired before the key is evicted.
const DefaultRedisRetention = 24 * time.Hour

const touchAttempts = 3

type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "remember"
	}
	return &RedisStore{
		client:    client,
		prefix:    prefix,
		retention: DefaultRedisRetention,
	}
}

func (s *RedisStore) SetRetention(retention time.Duration) {
	if retention > 0 {
		s.retention = retention
	}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + ":" + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*Record, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode remember record: %w", err)
	}
	return &record, nil
}

func (s *RedisStore) Put(ctx context.Context, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode remember record: %w", err)
	}

	if err := s.client.Set(ctx, s.key(record.UserID), data, s.expiration(record)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// expiration is the key lifetime for a record written at its CreatedAt.
func (s *RedisStore) expiration(record *Record) time.Duration {
	if record.TTL <= 0 {
		return s.retention
	}
	return record.TTL + s.retention
}

// Touch runs as a WATCH transaction so a concurrent Put or Delete of the key
// aborts the refresh instead of being overwritten.
func (s *RedisStore) Touch(ctx context.Context, record *Record) error {
	key := s.key(record.UserID)

	for attempt := 0; attempt < touchAttempts; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return ErrNotFound
				}
				return fmt.Errorf("redis get: %w", err)
			}

			var current Record
			if err := json.Unmarshal(data, &current); err != nil {
				return fmt.Errorf("decode remember record: %w", err)
			}
			if current.Token != record.Token {
				return ErrNotFound
			}

			current.CreatedAt = record.CreatedAt
			current.ExpiresAt = record.ExpiresAt
			payload, err := json.Marshal(&current)
			if err != nil {
				return fmt.Errorf("encode remember record: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, s.expiration(&current))
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}

	return fmt.Errorf("redis touch: %w", redis.TxFailedErr)
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
