package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
)

const redisDocumentKey = "ticketbot:document"

// RedisBackend stores the document blob under a single key.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to Redis using the provided configuration.
// Connectivity problems are reported but not fatal; the store degrades to
// an empty document on read failure anyway.
func NewRedisBackend(cfg config.RedisConfig, logger *zap.Logger) *RedisBackend {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &RedisBackend{client: client}
}

// Load fetches the document blob.
func (r *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, redisDocumentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save overwrites the document blob without expiry.
func (r *RedisBackend) Save(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, redisDocumentKey, data, 0).Err()
}

// Close closes the client.
func (r *RedisBackend) Close() {
	if r != nil && r.client != nil {
		_ = r.client.Close()
	}
}
