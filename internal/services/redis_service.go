package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"meetingroom/internal/storage"
)

// redisKeyPrefix namespaces every key this service writes in a shared Redis
const redisKeyPrefix = "meetingroom:"

// RedisService owns the Redis connection behind the redis local tier
type RedisService struct {
	client *redis.Client
}

// NewRedisService connects to redisURL and verifies the server answers
func NewRedisService(ctx context.Context, redisURL string) (*RedisService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Two collections and a session key: a small pool is plenty
	opts.PoolSize = 4
	opts.MinIdleConns = 1
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("✅ [REDIS] Connected to %s (db %d)", opts.Addr, opts.DB)
	return &RedisService{client: client}, nil
}

// Store returns the local storage tier backed by this connection
func (r *RedisService) Store() *storage.RedisStore {
	return storage.NewRedisStore(r.client, redisKeyPrefix)
}

// Close closes the Redis connection
func (r *RedisService) Close() error {
	return r.client.Close()
}
