// Package main provides the recapd API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/recapd/recapd/pkg/artifacts"
	"github.com/recapd/recapd/pkg/eventbus"
	"github.com/recapd/recapd/pkg/persistence"
	"github.com/recapd/recapd/pkg/pipeline"
	"github.com/recapd/recapd/pkg/providers/summarization"
	"github.com/recapd/recapd/pkg/services"
	"github.com/recapd/recapd/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	artifacts   artifacts.Store
	eventBus    eventbus.EventBus
	transcriber pipeline.Transcriber
	summarizer  summarization.Client
	validate    *validator.Validate
}

func NewAPI(
	log *slog.Logger,
	p persistence.Persistence,
	store artifacts.Store,
	eventBus eventbus.EventBus,
	transcriber pipeline.Transcriber,
	summarizer summarization.Client,
) *API {
	return &API{
		logger:      log,
		persistence: p,
		artifacts:   store,
		eventBus:    eventBus,
		transcriber: transcriber,
		summarizer:  summarizer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	recordingService := services.NewRecording(a.persistence, a.eventBus, a.logger)
	actionService := services.NewAction(a.persistence, a.eventBus, a.logger)
	pl := pipeline.New(a.persistence, a.artifacts, a.transcriber, a.summarizer, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(recordingService, actionService, pl, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("recapd API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
