package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/yatube/yatube/app/controllers"
	"github.com/yatube/yatube/internal/pkg/env"
	"github.com/yatube/yatube/internal/pkg/middleware"
)

// PageRouter registers the HTML pages behind CSRF protection.
type PageRouter struct {
}

func NewPageRouter() *PageRouter {
	return &PageRouter{}
}

func (h PageRouter) InstallRouter(app *fiber.App) {
	csrfDisabled := env.GetEnvBool("CSRF_DISABLED", false)
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return csrfDisabled ||
				strings.HasPrefix(c.Path(), "/api/") ||
				strings.HasPrefix(c.Path(), "/api-token-auth")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))

	group.Get("/", middleware.PageCache(), controllers.HandleIndex)

	// Auth
	group.Get("/auth/login/", controllers.HandleAuthLogin)
	group.Post("/auth/login/", controllers.HandleAuthLogin)
	group.Get("/auth/signup/", controllers.HandleAuthSignup)
	group.Post("/auth/signup/", controllers.HandleAuthSignup)

	group.Get("/group/:slug/", controllers.HandleGroupPosts)
	group.Get("/new/", middleware.RequireAuth, controllers.HandleNewPost)
	group.Post("/new/", middleware.RequireAuth, controllers.HandleNewPost)
	group.Get("/follow/", middleware.RequireAuth, controllers.HandleFollowIndex)

	// Profiles and posts; keep these last, ":username" matches any segment
	group.Get("/:username/", controllers.HandleProfile)
	group.Get("/:username/follow/", middleware.RequireAuth, controllers.HandleProfileFollow)
	group.Get("/:username/unfollow/", middleware.RequireAuth, controllers.HandleProfileUnfollow)
	group.Get("/:username/:post_id/", controllers.HandlePostView)
	group.Post("/:username/:post_id/comment", middleware.RequireAuth, controllers.HandleAddComment)
	group.Get("/:username/:post_id/edit/", middleware.RequireAuth, controllers.HandlePostEdit)
	group.Post("/:username/:post_id/edit/", middleware.RequireAuth, controllers.HandlePostEdit)

	app.Use(controllers.HandleNotFound)
}
