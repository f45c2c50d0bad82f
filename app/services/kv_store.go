// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore keeps short-lived strings such as revoked token ids and captcha answers
type KeyValueStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// RedisStore is a KeyValueStore backed by redis
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore namespaces every key with prefix
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is the single-process fallback used when redis is not configured
type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]memoryEntry
	now func() time.Time
}

// NewMemoryStore creates an empty store. Expired entries are dropped lazily.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:   make(map[string]memoryEntry),
		now: time.Now,
	}
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.m[key] = e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.m, key)
		s.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemoryStore) sweepLocked() {
	now := s.now()
	for k, e := range s.m {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.m, k)
		}
	}
}
