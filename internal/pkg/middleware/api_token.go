package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/usercontext"
)

// APITokenMiddleware authenticates requests carrying an Authorization header.
// Requests without one keep the session user resolved earlier.
func APITokenMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, present := extractTokenFromHeader(c)
		if !present {
			return c.Next()
		}
		if key == "" {
			return invalidToken(c)
		}

		repo := repository.GetGlobalFactory().GetTokenRepository()
		token, err := repo.GetByHash(models.HashToken(key))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidToken(c)
			}
			log.Errorf("[APIToken] lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "A server error occurred."})
		}

		if err := repo.Touch(token); err != nil {
			log.Warnf("[APIToken] failed to update usage timestamp for user %d: %v", token.UserID, err)
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:     token.User.ID,
			Username:   token.User.Username,
			IsLoggedIn: true,
			IsAdmin:    token.User.IsAdmin(),
			ViaToken:   true,
		})

		return c.Next()
	}
}

func invalidToken(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Token")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token."})
}

// extractTokenFromHeader accepts "Token <key>" and "Bearer <key>". The
// second return value reports whether such a header was sent at all.
func extractTokenFromHeader(c *fiber.Ctx) (string, bool) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		return "", false
	}
	scheme, key, _ := strings.Cut(auth, " ")
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(key), true
	default:
		// Basic and friends are not ours
		return "", false
	}
}
