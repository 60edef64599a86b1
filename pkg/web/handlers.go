package web

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/switchyardhq/switchyard/pkg/dispatcher"
	"github.com/switchyardhq/switchyard/pkg/persistence"
	"github.com/switchyardhq/switchyard/pkg/provider"
	"github.com/switchyardhq/switchyard/pkg/registry"
	"github.com/switchyardhq/switchyard/pkg/webhook"
)

type APIHandlers struct {
	dispatcher *dispatcher.Dispatcher
	pipeline   *webhook.Pipeline
	registry   *registry.Registry
	db         persistence.Persistence
	validator  *validator.Validate
}

func NewAPIHandlers(
	capabilityDispatcher *dispatcher.Dispatcher,
	pipeline *webhook.Pipeline,
	reg *registry.Registry,
	db persistence.Persistence,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		dispatcher: capabilityDispatcher,
		pipeline:   pipeline,
		registry:   reg,
		db:         db,
		validator:  validate,
	}
}

// Invoke executes one capability synchronously and returns its result.
func (h *APIHandlers) Invoke(c fiber.Ctx) error {
	var request InvokeRequest

	if err := c.Bind().Body(&request); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&request); err != nil {
		return badRequest(c, "Invalid request: "+err.Error())
	}

	result, err := h.dispatcher.Invoke(c.Context(), dispatcher.Request{
		ProviderID:   request.ProviderID,
		CapabilityID: request.CapabilityID,
		OrgID:        request.OrgID,
		UserID:       request.UserID,
		Params:       request.Params,
	})
	if err != nil {
		return handleInvokeError(c, err)
	}

	return c.JSON(InvokeResponse{Result: result})
}

// GetProviders lists all registered providers.
func (h *APIHandlers) GetProviders(c fiber.Ctx) error {
	runtimes := h.registry.Providers()

	providers := make([]ProviderResponse, 0, len(runtimes))
	for _, runtime := range runtimes {
		providers = append(providers, TransformProviderResponse(runtime))
	}

	return c.JSON(providers)
}

// GetCapabilities exports the full catalog: every provider with its
// capability descriptors and scope mapping.
func (h *APIHandlers) GetCapabilities(c fiber.Ctx) error {
	return c.JSON(TransformCatalogResponse(h.registry.Catalog()))
}

// ReceiveWebhook hands an inbound provider call to the webhook pipeline and
// relays whatever reply the pipeline decided on.
func (h *APIHandlers) ReceiveWebhook(c fiber.Ctx) error {
	providerID := c.Params("providerID")
	webhookID := c.Params("webhookID")

	body := append([]byte(nil), c.Body()...)

	request := &provider.WebhookRequest{
		Method:  c.Method(),
		Path:    c.Path(),
		Headers: http.Header(c.GetReqHeaders()),
		Body:    body,
	}

	response := h.pipeline.Handle(c.Context(), providerID, webhookID, request)

	c.Set(fiber.HeaderContentType, response.ContentType)

	return c.Status(response.Status).Send(response.Body)
}

// HealthCheck verifies persistence connectivity.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.db.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}
