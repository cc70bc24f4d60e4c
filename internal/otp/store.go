package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "verify:code:"

// ErrCodeNotFound signals that no unexpired code exists for a phone. Callers
// treat it the same as a mismatched code.
var ErrCodeNotFound = errors.New("verification code not found")

// Store keeps pending verification codes keyed by phone number. Entries
// expire after the store's TTL; a Put replaces any prior entry for the same
// phone (last writer wins).
type Store interface {
	Put(ctx context.Context, phone, code string) error
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

// RedisStore implements Store on top of Redis with per-key expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed verification code store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Put records code for phone, replacing any previous entry and resetting the TTL.
func (s *RedisStore) Put(ctx context.Context, phone, code string) error {
	if err := s.client.Set(ctx, codeKeyPrefix+phone, code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return nil
}

// Get returns the unexpired code for phone, or ErrCodeNotFound.
func (s *RedisStore) Get(ctx context.Context, phone string) (string, error) {
	code, err := s.client.Get(ctx, codeKeyPrefix+phone).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", fmt.Errorf("load verification code: %w", err)
	}
	return code, nil
}

// Delete removes the entry for phone. Deleting an absent entry is not an error.
func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, codeKeyPrefix+phone).Err(); err != nil {
		return fmt.Errorf("delete verification code: %w", err)
	}
	return nil
}
