package cache

import (
	"net"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis"

	"github.com/yatube/yatube/internal/pkg/env"
)

// Redis databases: 0 application keys, 1 sessions, 2 page cache.
const (
	SessionDB = 1
	PageDB    = 2
)

// NewStorage returns a fiber.Storage on the given Redis database, or an
// in-memory one when Redis is not configured.
func NewStorage(database int) fiber.Storage {
	if client == nil {
		return memory.New()
	}

	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	if p := client.Options().Password; p != "" {
		password = p
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: database,
		Reset:    false,
	})
}

var (
	pageStorage fiber.Storage
	pageMu      sync.Mutex
)

// PageStorage is the shared storage behind the page cache middleware.
func PageStorage() fiber.Storage {
	pageMu.Lock()
	defer pageMu.Unlock()
	if pageStorage == nil {
		pageStorage = NewStorage(PageDB)
	}
	return pageStorage
}

// SetPageStorage swaps the page cache storage, mainly for tests.
func SetPageStorage(s fiber.Storage) {
	pageMu.Lock()
	defer pageMu.Unlock()
	pageStorage = s
}

// ResetPages drops every cached page. Writes never call this; cached feeds
// expire on their own after PAGE_CACHE_SECONDS.
func ResetPages() error {
	return PageStorage().Reset()
}
