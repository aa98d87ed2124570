package session

import (
	"context"
	stderrors "errors"
	"time"

	"resumechat/internal/config"
	"resumechat/internal/conversation"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "resumechat:session:"

// RedisStore keeps sessions as JSON strings with a redis-side expiry
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps a redis client; an empty prefix uses the default
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (rs *RedisStore) key(id string) string {
	return rs.prefix + id
}

// Ping checks the redis connection
func (rs *RedisStore) Ping(ctx context.Context) error {
	if err := rs.client.Ping(ctx).Err(); err != nil {
		return storeFailed("redis ping failed", err)
	}
	return nil
}

// Load implements Store
func (rs *RedisStore) Load(ctx context.Context, id string) (*conversation.Session, error) {
	data, err := rs.client.Get(ctx, rs.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storeFailed("failed to load session", err)
	}
	return decode(data)
}

// Save implements Store; every save refreshes the expiry
func (rs *RedisStore) Save(ctx context.Context, s *conversation.Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := rs.client.Set(ctx, rs.key(s.ID), data, rs.ttl).Err(); err != nil {
		return storeFailed("failed to save session", err)
	}
	return nil
}

// Delete implements Store
func (rs *RedisStore) Delete(ctx context.Context, id string) error {
	if err := rs.client.Del(ctx, rs.key(id)).Err(); err != nil {
		return storeFailed("failed to delete session", err)
	}
	return nil
}

// Kind implements Store
func (rs *RedisStore) Kind() string {
	return config.StoreRedis
}

// Close closes the redis connection
func (rs *RedisStore) Close() error {
	if rs.client != nil {
		return rs.client.Close()
	}
	return nil
}
