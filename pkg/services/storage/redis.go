package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"gitlab.com/postgres-ai/askdb/pkg/config"
)

// redisKeyPrefix defines a namespace of stored keys.
const redisKeyPrefix = "askdb:"

// RedisStore keeps text documents in Redis so that several instances share them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-based text store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromConfig creates a new Redis-based text store with a client built from the configuration.
func NewRedisStoreFromConfig(cfg config.Storage) *RedisStore {
	return NewRedisStore(redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	}))
}

// Get returns an actual entry by the key.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	text, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to get a stored entry")
	}

	return &Entry{Text: text}, nil
}

// Set stores a text by the key. Redis expires the key on its own.
func (s *RedisStore) Set(ctx context.Context, key, text string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}

	if err := s.client.Set(ctx, s.key(key), text, ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to store an entry")
	}

	return nil
}

func (s *RedisStore) key(key string) string {
	return redisKeyPrefix + key
}
