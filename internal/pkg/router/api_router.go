package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/yatube/yatube/internal/api/v1"
	"github.com/yatube/yatube/internal/pkg/env"
	"github.com/yatube/yatube/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	limit := limiter.New(limiter.Config{
		Max:        env.GetEnvInt("API_RATE_LIMIT", 120),
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(apiv1.Detail{Detail: "Request was throttled."})
		},
	})

	// token issuance works without credentials
	app.Post("/api-token-auth/", limit, apiv1.ObtainToken)

	api := app.Group("/api", limit)
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"v1": ctx.BaseURL() + "/api/v1/",
		})
	})
	api.Post("/v1/api-token-auth/", apiv1.ObtainToken)

	// API v1 routes
	v1 := api.Group("/v1", middleware.APITokenMiddleware(), middleware.RequireAPIAuth)
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
