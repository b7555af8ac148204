package apiv1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ServerInterface lists every operation documented in public/docs/v1/openapi.yml.
type ServerInterface interface {
	// (GET /users/)
	ListUsers(c *fiber.Ctx) error
	// (POST /users/)
	CreateUser(c *fiber.Ctx) error
	// (GET /users/{id}/)
	GetUser(c *fiber.Ctx, id uint) error
	// (PUT /users/{id}/)
	ReplaceUser(c *fiber.Ctx, id uint) error
	// (PATCH /users/{id}/)
	PatchUser(c *fiber.Ctx, id uint) error
	// (DELETE /users/{id}/)
	DeleteUser(c *fiber.Ctx, id uint) error

	// (GET /groups/)
	ListGroups(c *fiber.Ctx) error
	// (POST /groups/)
	CreateGroup(c *fiber.Ctx) error
	// (GET /groups/{id}/)
	GetGroup(c *fiber.Ctx, id uint) error

	// (GET /posts/)
	ListPosts(c *fiber.Ctx) error
	// (GET /posts/{id}/)
	GetPost(c *fiber.Ctx, id uint) error
}

// ServerInterfaceWrapper converts path parameters before calling the server.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

type idHandler func(c *fiber.Ctx, id uint) error

func (w *ServerInterfaceWrapper) withID(h idHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || id == 0 {
			return fiber.ErrNotFound
		}
		return h(c, uint(id))
	}
}

// RegisterHandlers mounts every operation on router. Routes accept the path
// with and without trailing slash because the app runs with StrictRouting off.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.Get("/users/", si.ListUsers)
	router.Post("/users/", si.CreateUser)
	router.Get("/users/:id/", w.withID(si.GetUser))
	router.Put("/users/:id/", w.withID(si.ReplaceUser))
	router.Patch("/users/:id/", w.withID(si.PatchUser))
	router.Delete("/users/:id/", w.withID(si.DeleteUser))

	router.Get("/groups/", si.ListGroups)
	router.Post("/groups/", si.CreateGroup)
	router.Get("/groups/:id/", w.withID(si.GetGroup))

	router.Get("/posts/", si.ListPosts)
	router.Get("/posts/:id/", w.withID(si.GetPost))
}
