// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StoreType represents the type of session store.
type StoreType string

// The supported store types.
const (
	Memory StoreType = "memory"
	Redis  StoreType = "redis"
)

// New creates a session store of the given type.  The Redis store
// requires the WithRedisClient option.
func New(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}
	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case Memory:
		return &memoryStore{}, nil

	case Redis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		ttl := config.redisTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		key := config.redisKey
		if key == "" {
			key = "servicecall:session"
		}
		return &redisStore{
			client: config.redisClient,
			ttl:    ttl,
			key:    key,
		}, nil

	default:
		return nil, ErrInvalidStoreType
	}
}

// memoryStore implements Store with an in-process slot.  It is useful
// for tests and for callers that only want the Store shape.
type memoryStore struct {
	mu    sync.RWMutex
	token string
}

// Load implements Store.
func (s *memoryStore) Load(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Save implements Store.
func (s *memoryStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear implements Store.
func (s *memoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	return nil
}

// redisStore implements Store on a single Redis key with a TTL.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	key    string
}

// Load implements Store.  Reading refreshes the TTL so an active
// session does not expire out from under its owner.
func (s *redisStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	_ = s.client.Expire(ctx, s.key, s.ttl).Err()

	return token, nil
}

// Save implements Store.
func (s *redisStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	return s.client.Set(ctx, s.key, token, s.ttl).Err()
}

// Clear implements Store.
func (s *redisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
