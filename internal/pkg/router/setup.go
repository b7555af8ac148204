package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs one slice of the route table.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires every route. HttpRouter goes first to create the session
// store and the user context middleware the others depend on. The API comes
// before the page routes so "/:username/..." never shadows it.
func InstallRouter(app *fiber.App) {
	setup(app, NewHttpRouter(), NewApiRouter(), NewPageRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
