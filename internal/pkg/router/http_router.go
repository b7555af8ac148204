package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yatube/yatube/internal/pkg/middleware"
	"github.com/yatube/yatube/internal/pkg/oauth"
	"github.com/yatube/yatube/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session; tests may have installed one on memory storage already
	if session.GetSessionStore() == nil {
		session.NewSessionStore(nil)
	}

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
