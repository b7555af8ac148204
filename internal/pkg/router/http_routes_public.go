package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yatube/yatube/app/controllers"
)

// registerPublicRoutes holds routes that never render a form.
func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Social OAuth
	app.Get("/auth/oauth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/oauth/:provider/callback", controllers.HandleOAuthCallback)

	// A plain link so cached pages never carry a form
	app.Get("/auth/logout/", controllers.HandleAuthLogout)
	app.Post("/auth/logout/", controllers.HandleAuthLogout)
}
