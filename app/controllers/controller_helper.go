package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/yatube/yatube/internal/pkg/env"
	"github.com/yatube/yatube/internal/pkg/forms"
	"github.com/yatube/yatube/internal/pkg/oauth"
	"github.com/yatube/yatube/internal/pkg/statistics"
	"github.com/yatube/yatube/internal/pkg/upload"
	"github.com/yatube/yatube/internal/pkg/usercontext"
	"github.com/yatube/yatube/internal/pkg/viewmodel"
)

const mainLayout = "layouts/main"

// Page sizes of the feeds
const (
	IndexPageSize   = 10
	GroupPageSize   = 5
	ProfilePageSize = 5
	FollowPageSize  = 10
)

// render fills in the layout data every page needs and renders name inside
// the main layout.
func render(c *fiber.Ctx, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	data["Layout"] = layoutFor(c)
	return c.Render(name, data, mainLayout)
}

func layoutFor(c *fiber.Ctx) viewmodel.Layout {
	userCtx := usercontext.GetUserContext(c)
	layout := viewmodel.Layout{
		Page:          c.Path(),
		FromProtected: userCtx.IsLoggedIn,
		Username:      userCtx.Username,
		UserID:        userCtx.UserID,
		IsAdmin:       userCtx.IsAdmin,
		Msg:           flash.Get(c),
		OAuth:         oauth.Enabled(),
	}
	if token, ok := c.Locals("csrf").(string); ok {
		layout.CSRF = token
	}
	if stats, ok := statistics.GetStatisticsData(); ok {
		layout.Stats = &stats
	}
	return layout
}

// notFoundOr maps a missing record to a 404 and wraps everything else.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}

// paramID parses a numeric route parameter; anything else is a 404.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

// postURL is the canonical post view path.
func postURL(username string, postID uint) string {
	return fmt.Sprintf("/%s/%d/", url.PathEscape(username), postID)
}

// safeNext only allows same-site absolute paths as login targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func maxImageBytes() int64 {
	return int64(env.GetEnvInt("MAX_IMAGE_BYTES", int(upload.DefaultMaxBytes)))
}

// readFormFile reads an optional multipart file. A missing file is not an
// error; the form reports oversize files itself.
func readFormFile(c *fiber.Ctx, field string, limit int64) (*forms.File, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil || fh.Filename == "" {
		return nil, nil
	}
	data, err := readMultipartFile(fh, limit)
	if err != nil {
		return nil, err
	}
	return &forms.File{Filename: fh.Filename, Data: data}, nil
}

func readMultipartFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// one byte over the limit is enough for the size check
	var r io.Reader = src
	if limit > 0 {
		r = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
