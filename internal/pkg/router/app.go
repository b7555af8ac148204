package router

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yatube/yatube/app/controllers"
	apiv1 "github.com/yatube/yatube/internal/api/v1"
	"github.com/yatube/yatube/internal/pkg/env"
	"github.com/yatube/yatube/internal/pkg/storage"
	"github.com/yatube/yatube/internal/pkg/upload"
	"github.com/yatube/yatube/views"
)

// FindBasePath locates the project root holding public/ from the usual
// working directories (repo root, cmd/yatube, package tests).
func FindBasePath() string {
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/yatube to project root
		"../../../", // From internal/pkg/<pkg>
	}
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); err == nil {
			return path
		}
	}
	return ""
}

// NewApp builds the fiber app with middleware, static files and all routes.
// Database, cache, repositories and media storage must be set up before.
func NewApp(basePath string) *fiber.App {
	// room for the largest image plus the other form fields
	bodyLimit := env.GetEnvInt("MAX_IMAGE_BYTES", int(upload.DefaultMaxBytes)) + 4<<20
	if bodyLimit < 16<<20 {
		bodyLimit = 16 << 20
	}

	app := fiber.New(fiber.Config{
		Views:        views.NewEngine(),
		ErrorHandler: controllers.ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	// ignore and cache favicon
	if fileExists(basePath + "public/assets/icons/favicon.ico") {
		app.Use(favicon.New(favicon.Config{
			File:         basePath + "public/assets/icons/favicon.ico",
			URL:          "/favicon.ico",
			CacheControl: "public, max-age=604800",
		}))
	}

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	if password := env.GetEnv("METRICS_PASSWORD", ""); password != "" {
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: map[string]string{
				env.GetEnv("METRICS_USER", "admin"): password,
			},
		}), monitor.New(monitor.Config{Title: "Yatube Metrics"}))
	}

	// static files
	if basePath != "" {
		app.Static("/", basePath+"public/assets", fiber.Static{
			CacheDuration: 15 * time.Second,
			Compress:      true,
		})
	}

	// local media; S3 media is served by the bucket
	if local, ok := storage.GetDefault().(*storage.LocalStorage); ok && strings.HasPrefix(local.BaseURL(), "/") {
		app.Static(strings.TrimSuffix(local.BaseURL(), "/"), local.Root(), fiber.Static{
			CacheDuration: 10 * time.Second,
			Compress:      false,
			MaxAge:        604800, // 7 days
		})
	}

	// SWAGGER / OPENAPI
	mountAPIDocs(app, basePath+apiv1.SpecPath)

	// ROUTER
	InstallRouter(app)

	return app
}

// mountAPIDocs serves the swagger UI for a document that loads and
// validates. A missing or broken document leaves the docs unmounted.
func mountAPIDocs(app *fiber.App, specPath string) bool {
	if !fileExists(specPath) {
		log.Warnf("[Router] %s not found, API docs disabled", specPath)
		return false
	}
	doc, err := apiv1.LoadSpec(context.Background(), specPath)
	if err != nil {
		log.Errorf("[Router] API docs disabled: %v", err)
		return false
	}

	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: specPath,
		Path:     "v1",
		Title:    "Yatube API",
	}))
	log.Infof("[Router] API docs for %d operations at /docs/api/v1", len(apiv1.Operations(doc)))
	return true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
