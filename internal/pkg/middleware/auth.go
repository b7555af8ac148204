package middleware

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/yatube/yatube/internal/pkg/usercontext"
)

// LoginURL is where anonymous visitors of protected pages are sent.
const LoginURL = "/auth/login/"

// LoginRedirect sends the visitor to the login page and back afterwards.
func LoginRedirect(c *fiber.Ctx) error {
	return c.Redirect(LoginURL+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
}

// RequireAuth ensures a logged-in web session; redirects to the login page
// with ?next= if missing.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return LoginRedirect(c)
	}
	return c.Next()
}

// RequireAPIAuth answers 401 JSON instead of redirecting.
func RequireAPIAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"detail": "Authentication credentials were not provided.",
		})
	}
	return c.Next()
}
