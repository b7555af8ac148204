package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// ErrorHandler is the app-wide fiber error handler. Server faults are logged
// and rendered without details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		fiberlog.Errorf("[HTTP] %s %s: %v", c.Method(), c.OriginalURL(), err)
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"detail": apiDetail(code, fe)})
	}

	c.Status(code)
	var renderErr error
	switch code {
	case fiber.StatusNotFound:
		renderErr = renderError(c, "misc/404", "Page not found", fiber.Map{"Path": c.Path()})
	case fiber.StatusInternalServerError:
		renderErr = renderError(c, "misc/500", "Server error", nil)
	default:
		return c.SendString(fe.Message)
	}
	if renderErr != nil {
		fiberlog.Errorf("[HTTP] rendering error page failed: %v", renderErr)
		return c.Status(code).SendString(fiber.ErrInternalServerError.Message)
	}
	return nil
}

func renderError(c *fiber.Ctx, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	layout := layoutFor(c)
	layout.IsError = true
	data["Title"] = title
	data["Layout"] = layout
	return c.Render(name, data, mainLayout)
}

func apiDetail(code int, fe *fiber.Error) string {
	switch code {
	case fiber.StatusNotFound:
		return "Not found."
	case fiber.StatusInternalServerError:
		return "A server error occurred."
	}
	if fe != nil {
		return fe.Message
	}
	return fiber.ErrInternalServerError.Message
}

// HandleNotFound is the catch-all route.
func HandleNotFound(c *fiber.Ctx) error {
	return fiber.ErrNotFound
}
