package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/app/models"
)

func jsonRequest(method, target, payload, token string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	if payload != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Token "+token)
	}
	return req
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (ta *testApp) token(t *testing.T, username string) string {
	t.Helper()
	resp := ta.do(t, jsonRequest(fiber.MethodPost, "/api/v1/api-token-auth/",
		fmt.Sprintf(`{"username":%q,"password":%q}`, username, testPassword), ""), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]string
	decode(t, resp, &out)
	require.NotEmpty(t, out["token"])
	return out["token"]
}

func TestAPITokenAuth(t *testing.T) {
	ta := newTestApp(t)
	ta.user(t, "leo")

	resp := ta.do(t, jsonRequest(fiber.MethodPost, "/api/v1/api-token-auth/", `{"password":"x"}`, ""), "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var errs map[string][]string
	decode(t, resp, &errs)
	assert.Equal(t, []string{"This field is required."}, errs["username"])

	resp = ta.postForm(t, "/api/v1/api-token-auth/", url.Values{"username": {"leo"}, "password": {"wrong"}}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errs = nil
	decode(t, resp, &errs)
	assert.Equal(t, []string{"Unable to log in with provided credentials."}, errs["non_field_errors"])

	first := ta.token(t, "leo")
	assert.Equal(t, fiber.StatusOK, ta.do(t, jsonRequest(fiber.MethodGet, "/api/v1/posts/", "", first), "").StatusCode)

	// the short alias issues tokens too, and every issuance rotates
	resp = ta.postForm(t, "/api-token-auth/", url.Values{"username": {"leo"}, "password": {testPassword}}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]string
	decode(t, resp, &out)
	second := out["token"]
	assert.NotEqual(t, first, second)

	resp = ta.do(t, jsonRequest(fiber.MethodGet, "/api/v1/posts/", "", first), "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	var detail map[string]string
	decode(t, resp, &detail)
	assert.Equal(t, "Invalid token.", detail["detail"])

	req := jsonRequest(fiber.MethodGet, "/api/v1/posts/", "", "")
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+second)
	assert.Equal(t, fiber.StatusOK, ta.do(t, req, "").StatusCode)
}

func TestAPIRequiresAuthentication(t *testing.T) {
	ta := newTestApp(t)
	ta.user(t, "leo")

	resp := ta.get(t, "/api/v1/posts/", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	var detail map[string]string
	decode(t, resp, &detail)
	assert.Equal(t, "Authentication credentials were not provided.", detail["detail"])

	// a web session works as well
	cookie := ta.login(t, "leo")
	assert.Equal(t, fiber.StatusOK, ta.get(t, "/api/v1/posts/", cookie).StatusCode)
}

func TestAPIUsers(t *testing.T) {
	ta := newTestApp(t)
	ta.user(t, "leo")
	token := ta.token(t, "leo")

	resp := ta.do(t, jsonRequest(fiber.MethodPost, "/api/v1/users/",
		`{"username":"mia","email":"mia@example.com","first_name":"Mia","password":"s3cret-pass"}`, token), "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	decode(t, resp, &created)
	assert.Equal(t, "mia", created["username"])
	assert.NotContains(t, created, "password")
	id := uint(created["id"].(float64))

	resp = ta.do(t, jsonRequest(fiber.MethodPost, "/api/v1/users/", `{"username":"mia"}`, token), "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var errs map[string][]string
	decode(t, resp, &errs)
	assert.Equal(t, []string{"A user with that username already exists."}, errs["username"])

	resp = ta.do(t, jsonRequest(fiber.MethodGet, "/api/v1/users/", "", token), "")
	var users []map[string]interface{}
	decode(t, resp, &users)
	assert.Len(t, users, 2)

	resp = ta.do(t, jsonRequest(fiber.MethodPatch, fmt.Sprintf("/api/v1/users/%d/", id), `{"last_name":"Lee"}`, token), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var patched map[string]interface{}
	decode(t, resp, &patched)
	assert.Equal(t, "mia", patched["username"])
	assert.Equal(t, "Lee", patched["last_name"])

	resp = ta.do(t, jsonRequest(fiber.MethodPut, fmt.Sprintf("/api/v1/users/%d/", id), `{"email":"new@example.com"}`, token), "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	mia, err := ta.repos.User.GetByID(id)
	require.NoError(t, err)
	assert.True(t, mia.CheckPassword("s3cret-pass"))

	assert.Equal(t, fiber.StatusNoContent, ta.do(t, jsonRequest(fiber.MethodDelete, fmt.Sprintf("/api/v1/users/%d/", id), "", token), "").StatusCode)

	resp = ta.do(t, jsonRequest(fiber.MethodGet, fmt.Sprintf("/api/v1/users/%d/", id), "", token), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var detail map[string]string
	decode(t, resp, &detail)
	assert.Equal(t, "Not found.", detail["detail"])
}

func TestAPIGroups(t *testing.T) {
	ta := newTestApp(t)
	ta.user(t, "leo")
	admin := ta.user(t, "boss")
	admin.Role = models.ROLE_ADMIN
	require.NoError(t, ta.repos.User.Update(admin))
	ta.group(t, "Cats", "cats")

	token := ta.token(t, "leo")
	resp := ta.do(t, jsonRequest(fiber.MethodPost, "/api/v1/groups/", `{"title":"Dogs"}`, token), "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminToken := ta.token(t, "boss")
	resp = ta.do(t, jsonRequest(fiber.MethodPost, "/api/v1/groups/", `{"title":"Dogs and Puppies"}`, adminToken), "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var group map[string]interface{}
	decode(t, resp, &group)
	assert.Equal(t, "dogs-and-puppies", group["slug"])

	resp = ta.do(t, jsonRequest(fiber.MethodGet, "/api/v1/groups/", "", token), "")
	var groups []map[string]interface{}
	decode(t, resp, &groups)
	assert.Len(t, groups, 2)

	assert.Equal(t, fiber.StatusNotFound, ta.do(t, jsonRequest(fiber.MethodGet, "/api/v1/groups/999/", "", token), "").StatusCode)
}

func TestAPIPosts(t *testing.T) {
	ta := newTestApp(t)
	leo := ta.user(t, "leo")
	cats := ta.group(t, "Cats", "cats")
	plain := ta.post(t, leo, "no picture", nil)
	pictured := &models.Post{Text: "with picture", AuthorID: leo.ID, GroupID: &cats.ID, Image: "posts/2024/01/cat.png"}
	require.NoError(t, ta.repos.Post.Create(pictured))
	token := ta.token(t, "leo")

	resp := ta.do(t, jsonRequest(fiber.MethodGet, fmt.Sprintf("/api/v1/posts/%d/", plain.ID), "", token), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got map[string]interface{}
	decode(t, resp, &got)
	assert.Equal(t, "no picture", got["text"])
	assert.Equal(t, float64(leo.ID), got["author"])
	assert.Nil(t, got["group"])
	assert.Nil(t, got["image"])

	resp = ta.do(t, jsonRequest(fiber.MethodGet, fmt.Sprintf("/api/v1/posts/%d/", pictured.ID), "", token), "")
	got = nil
	decode(t, resp, &got)
	assert.Equal(t, float64(cats.ID), got["group"])
	assert.Equal(t, "http://example.com/media/posts/2024/01/cat.png", got["image"])

	resp = ta.do(t, jsonRequest(fiber.MethodGet, "/api/v1/posts/", "", token), "")
	var posts []map[string]interface{}
	decode(t, resp, &posts)
	require.Len(t, posts, 2)
	assert.Equal(t, "with picture", posts[0]["text"])

	// read-only resource
	resp = ta.do(t, jsonRequest(fiber.MethodPost, "/api/v1/posts/", `{"text":"x"}`, token), "")
	assert.NotEqual(t, fiber.StatusCreated, resp.StatusCode)
}
