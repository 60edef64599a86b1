package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/switchyardhq/switchyard/pkg/credentials"
	"github.com/switchyardhq/switchyard/pkg/dispatcher"
	"github.com/switchyardhq/switchyard/pkg/eventbus"
	"github.com/switchyardhq/switchyard/pkg/persistence"
	"github.com/switchyardhq/switchyard/pkg/registry"
	"github.com/switchyardhq/switchyard/pkg/web"
	"github.com/switchyardhq/switchyard/pkg/webhook"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	db persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: db,
		registry:    reg,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	resolver := credentials.NewPersistenceResolver(a.persistence)
	capabilityDispatcher := dispatcher.NewDispatcher(a.registry, a.persistence, resolver, a.logger, a.tracer).
		WithAuditPublisher(a.eventBus)
	pipeline := webhook.NewPipeline(a.registry, a.persistence, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(capabilityDispatcher, pipeline, a.registry, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Switchyard API")
	})

	app.Post("/invoke", handlers.Invoke)
	app.Get("/providers", handlers.GetProviders)
	app.Get("/capabilities", handlers.GetCapabilities)

	// Providers with a single webhook accept the short form without an id.
	app.Post("/webhooks/:providerID", handlers.ReceiveWebhook)
	app.Post("/webhooks/:providerID/:webhookID", handlers.ReceiveWebhook)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
