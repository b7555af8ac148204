package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/session"
	"github.com/yatube/yatube/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session user for every request.
func UserContextMiddleware(c *fiber.Ctx) error {
	// goth keeps its own session on the OAuth routes
	if strings.HasPrefix(c.Path(), "/auth/oauth/") {
		usercontext.SetUserContext(c, usercontext.Anonymous)
		return c.Next()
	}

	store := session.GetSessionStore()
	if store == nil {
		usercontext.SetUserContext(c, usercontext.Anonymous)
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		usercontext.SetUserContext(c, usercontext.Anonymous)
		return c.Next()
	}

	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || userID == 0 {
		usercontext.SetUserContext(c, usercontext.Anonymous)
		return c.Next()
	}

	// The account may have been deleted since the session was created
	user, err := repository.GetGlobalRepositories().User.GetByID(userID)
	if err != nil {
		log.Debugf("[UserContext] session user %d not found: %v", userID, err)
		_ = sess.Destroy()
		usercontext.SetUserContext(c, usercontext.Anonymous)
		return c.Next()
	}

	usercontext.SetUserContext(c, usercontext.UserContext{
		UserID:     user.ID,
		Username:   user.Username,
		IsLoggedIn: true,
		IsAdmin:    user.IsAdmin(),
	})

	return c.Next()
}
