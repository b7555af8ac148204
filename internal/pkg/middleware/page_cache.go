package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fibercache "github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/yatube/yatube/internal/pkg/cache"
	"github.com/yatube/yatube/internal/pkg/env"
	"github.com/yatube/yatube/internal/pkg/usercontext"
)

const DefaultPageCacheSeconds = 20

// PageCache caches whole rendered pages for PAGE_CACHE_SECONDS. Entries are
// keyed by URL and viewer, and nothing invalidates them early: a new post
// shows up on a cached page once the entry expires. Requests carrying a
// flash message bypass the cache; the rendered message is for one visitor.
func PageCache() fiber.Handler {
	seconds := env.GetEnvInt("PAGE_CACHE_SECONDS", DefaultPageCacheSeconds)

	return fibercache.New(fibercache.Config{
		Next: func(c *fiber.Ctx) bool {
			return seconds <= 0 || HasFlashCookie(c)
		},
		Expiration:   time.Duration(seconds) * time.Second,
		CacheHeader:  "X-Cache",
		KeyGenerator: PageCacheKey,
		Storage:      cache.PageStorage(),
	})
}

// PageCacheKey is the full URL plus the viewer id (0 for anonymous).
func PageCacheKey(c *fiber.Ctx) string {
	return utils.CopyString(c.OriginalURL()) + "|u" + strconv.FormatUint(uint64(usercontext.GetUserID(c)), 10)
}

// HasFlashCookie reports a pending flash message (sujit-baniya/flash keeps
// it in a "...-flash" cookie).
func HasFlashCookie(c *fiber.Ctx) bool {
	found := false
	c.Request().Header.VisitAllCookie(func(key, value []byte) {
		if len(value) > 0 && strings.Contains(strings.ToLower(string(key)), "flash") {
			found = true
		}
	})
	return found
}
