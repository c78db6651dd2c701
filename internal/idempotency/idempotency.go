// Package idempotency binds client supplied request keys to the order that answered them.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "restaurant:idempotency:"

// RedisStore shares claims between API instances with SETNX.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Claim(ctx context.Context, key, orderID string) (string, bool, error) {
	k := s.prefix + key
	ok, err := s.client.SetNX(ctx, k, orderID, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return orderID, true, nil
	}
	existing, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; try once more.
		ok, err = s.client.SetNX(ctx, k, orderID, s.ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("claim idempotency key: %w", err)
		}
		if ok {
			return orderID, true, nil
		}
		existing, err = s.client.Get(ctx, k).Result()
	}
	if err != nil {
		return "", false, fmt.Errorf("read idempotency key: %w", err)
	}
	return existing, false, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

type entry struct {
	orderID string
	expires time.Time
}

// MemoryStore keeps claims in process, for single instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Claim(_ context.Context, key, orderID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && (s.ttl <= 0 || now.Before(e.expires)) {
		return e.orderID, false, nil
	}
	s.entries[key] = entry{orderID: orderID, expires: now.Add(s.ttl)}
	s.sweep(now)
	return orderID, true, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// sweep drops expired claims. Caller holds mu.
func (s *MemoryStore) sweep(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
}
