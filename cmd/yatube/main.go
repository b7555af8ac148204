package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/yatube/yatube/app/repository"
	"github.com/yatube/yatube/internal/pkg/cache"
	"github.com/yatube/yatube/internal/pkg/database"
	"github.com/yatube/yatube/internal/pkg/env"
	"github.com/yatube/yatube/internal/pkg/imageprocessor"
	"github.com/yatube/yatube/internal/pkg/router"
	"github.com/yatube/yatube/internal/pkg/statistics"
	"github.com/yatube/yatube/internal/pkg/storage"
)

func main() {
	app := NewApplication()

	go func() {
		err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
		if err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fiberlog.Info("[Main] shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		fiberlog.Errorf("[Main] shutdown: %v", err)
	}
	statistics.StopScheduler()
	if p := imageprocessor.GetProcessor(); p != nil {
		p.Stop()
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	basePath := router.FindBasePath()
	if basePath == "" {
		panic("Could not find project root directory")
	}

	// media storage
	cfg, err := storage.LoadConfig()
	if err != nil {
		panic(err)
	}
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	storage.SetDefault(store)
	fiberlog.Infof("[Storage] media backend: %s", store.Name())

	// thumbnails
	if env.GetEnvBool("IMAGE_PROCESSING_ENABLED", true) {
		processor := imageprocessor.New(store, repository.GetGlobalRepositories().Post, imageprocessor.MaxWorkers)
		processor.Start()
		imageprocessor.SetProcessor(processor)
	}

	// footer statistics
	if err := statistics.StartScheduler(database.GetDB(), env.GetEnv("STATS_CRON", statistics.DefaultSchedule)); err != nil {
		fiberlog.Warnf("[Statistics] scheduler not started: %v", err)
	}

	return router.NewApp(basePath)
}
