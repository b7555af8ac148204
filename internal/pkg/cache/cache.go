package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/yatube/yatube/internal/pkg/env"
)

// ErrUnavailable is returned when CACHE_HOST is not configured.
var ErrUnavailable = errors.New("cache not configured")

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache connects to Redis when CACHE_HOST is set. Without it the
// application runs on in-memory storage and statistics are skipped.
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "")
	if host == "" {
		log.Info("[Cache] CACHE_HOST not set, using in-memory storage")
		return
	}
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnf("[Cache] Could not connect to Redis: %v", err)
	} else {
		log.Infof("[Cache] Connected to Redis: %s", pong)
	}
}

// GetClient returns the Redis client, or nil when running without Redis.
func GetClient() *redis.Client {
	return client
}

// SetClient replaces the client; nil switches the cache off.
func SetClient(c *redis.Client) {
	client = c
}

func Available() bool {
	return client != nil
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return ErrUnavailable
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	if client == nil {
		return "", ErrUnavailable
	}
	return client.Get(ctx, key).Result()
}

// GetInt retrieves an integer value from the cache by key
func GetInt(key string) (int, error) {
	if client == nil {
		return 0, ErrUnavailable
	}
	return client.Get(ctx, key).Int()
}
