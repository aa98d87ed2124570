package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resumechat/internal/config"
	"resumechat/internal/conversation"
	"resumechat/internal/errors"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

const redisConnectTimeout = 5 * time.Second

// Store persists sessions by id. Load returns a SESSION_NOT_FOUND state error
// for unknown or expired ids.
type Store interface {
	Load(ctx context.Context, id string) (*conversation.Session, error)
	Save(ctx context.Context, s *conversation.Session) error
	Delete(ctx context.Context, id string) error
	Kind() string
	Close() error
}

// NewStore creates the store selected by the session config
func NewStore(cfg config.SessionConfig, logger *errors.Logger) (Store, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	switch cfg.Store {
	case config.StoreMemory, "":
		return NewMemoryStore(cfg.TTL, logger), nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisotel.InstrumentTracing(client); err != nil {
			_ = client.Close()
			return nil, storeFailed("failed to instrument redis tracing", err)
		}
		if err := redisotel.InstrumentMetrics(client); err != nil {
			_ = client.Close()
			return nil, storeFailed("failed to instrument redis metrics", err)
		}

		store := NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.TTL)
		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		logger.Info("Connected to redis session store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return store, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown session store: %s", cfg.Store), nil)
	}
}

func notFound(id string) error {
	return errors.NewStateError(errors.ErrCodeSessionNotFound, "session not found", nil).
		WithContext("session_id", id)
}

func storeFailed(message string, cause error) error {
	return errors.NewIOError(errors.ErrCodeSessionStoreFailed, message, cause)
}

func encode(s *conversation.Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, storeFailed("failed to encode session", err)
	}
	return data, nil
}

func decode(data []byte) (*conversation.Session, error) {
	var s conversation.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, storeFailed("failed to decode session", err)
	}
	return &s, nil
}
