package session

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionValueRoundTrip(t *testing.T) {
	NewSessionStore(memory.New())

	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		return SetSessionValue(c, "oauth_next", "/leo/")
	})
	app.Get("/get", func(c *fiber.Ctx) error {
		return c.SendString(GetSessionValue(c, "oauth_next"))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/set", nil))
	require.NoError(t, err)
	var cookie string
	for _, v := range resp.Header.Values(fiber.HeaderSetCookie) {
		if strings.HasPrefix(v, "session_id=") {
			cookie = strings.SplitN(v, ";", 2)[0]
		}
	}
	require.NotEmpty(t, cookie)

	req := httptest.NewRequest(fiber.MethodGet, "/get", nil)
	req.Header.Set(fiber.HeaderCookie, cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "/leo/", string(body))

	// a fresh visitor has nothing stored
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/get", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Empty(t, string(body))
}
