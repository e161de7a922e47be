package main

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/codescope/backend/internal/api"
	"github.com/codescope/backend/internal/cache"
	"github.com/codescope/backend/internal/config"
	"github.com/codescope/backend/internal/project"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logger.WithField("service", "codescope")

	queries, err := cache.New(cfg.QueryCacheTTL)
	if err != nil {
		log.WithError(err).Fatal("initializing query cache")
	}
	defer queries.Close()

	registry := project.NewRegistry(cfg, log)
	defer registry.Close()

	app := fiber.New(fiber.Config{
		AppName:   "CodeScope API",
		BodyLimit: int(cfg.MaxUploadBytes),
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "codescope-backend",
		})
	})

	api.SetupRoutes(app, api.NewHandler(cfg, registry, queries, log))

	log.WithField("port", cfg.Port).Info("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
