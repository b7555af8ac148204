package router

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/cache"
	"github.com/yatube/yatube/internal/pkg/database"
	"github.com/yatube/yatube/internal/pkg/env"
	"github.com/yatube/yatube/internal/pkg/imageprocessor"
	"github.com/yatube/yatube/internal/pkg/session"
	"github.com/yatube/yatube/internal/pkg/storage"
)

const testPassword = "correct-horse-9"

type testApp struct {
	app   *fiber.App
	repos *repository.Repositories
	media string
}

// newTestApp builds the full application on an in-memory database, memory
// sessions and page cache, and a temporary media directory.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	env.Env = map[string]string{
		"APP_ENV":            "dev",
		"CSRF_DISABLED":      "true",
		"PAGE_CACHE_SECONDS": "20",
		"API_RATE_LIMIT":     "1000",
	}
	t.Cleanup(func() { env.Env = nil })

	db := database.SetupTestDatabase(t)
	repository.InitializeFactory(db)

	cache.SetClient(nil)
	cache.SetPageStorage(memory.New())
	session.NewSessionStore(memory.New())
	imageprocessor.SetProcessor(nil)

	media := t.TempDir()
	local, err := storage.NewLocalStorage(media, "/media/")
	require.NoError(t, err)
	storage.SetDefault(local)
	t.Cleanup(func() { storage.SetDefault(nil) })

	return &testApp{
		app:   NewApp(FindBasePath()),
		repos: repository.GetGlobalRepositories(),
		media: media,
	}
}

func (ta *testApp) do(t *testing.T, req *http.Request, cookie string) *http.Response {
	t.Helper()
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) get(t *testing.T, target, cookie string) *http.Response {
	t.Helper()
	return ta.do(t, httptest.NewRequest(fiber.MethodGet, target, nil), cookie)
}

func (ta *testApp) postForm(t *testing.T, target string, values url.Values, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return ta.do(t, req, cookie)
}

func (ta *testApp) user(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := models.CreateUser(username, username+"@example.com", testPassword)
	require.NoError(t, err)
	require.NoError(t, ta.repos.User.Create(user))
	return user
}

func (ta *testApp) group(t *testing.T, title, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, Slug: slug, Description: "About " + title}
	require.NoError(t, ta.repos.Group.Create(group))
	return group
}

func (ta *testApp) post(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, ta.repos.Post.Create(post))
	return post
}

// login signs in through the login form and returns the session cookie.
func (ta *testApp) login(t *testing.T, username string) string {
	t.Helper()
	resp := ta.postForm(t, "/auth/login/", url.Values{
		"username": {username},
		"password": {testPassword},
	}, "")
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			return c.Name + "=" + c.Value
		}
	}
	t.Fatalf("login for %s set no session cookie", username)
	return ""
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
