// Package webhook turns inbound provider events into outbound agent events:
// authenticate the request, evaluate the webhook's triggers in declaration
// order, fan out to matching registrations, publish the produced events in
// one batch, and reply.
package webhook

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/switchyardhq/switchyard/pkg/eventbus"
	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
	"github.com/switchyardhq/switchyard/pkg/provider"
	"github.com/switchyardhq/switchyard/pkg/registry"
)

type Pipeline struct {
	registry *registry.Registry
	db       persistence.Persistence
	eventBus eventbus.EventPublisher
	logger   *slog.Logger
}

func NewPipeline(reg *registry.Registry, db persistence.Persistence, bus eventbus.EventPublisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		registry: reg,
		db:       db,
		eventBus: bus,
		logger:   logger.With("module", "webhook_pipeline"),
	}
}

// keyedEvent pins an event to its partition key so the collected batch
// publishes in evaluation order.
type keyedEvent struct {
	key   string
	event eventbus.Event
}

// Handle processes one inbound webhook call. Replies carry only
// {200, 401, 404, 5xx}; internal detail never reaches the provider, since
// repeated non-200 replies get webhook subscriptions disabled upstream.
func (p *Pipeline) Handle(ctx context.Context, providerID, webhookID string, request *provider.WebhookRequest) *provider.WebhookResponse {
	logger := p.logger.With("provider_id", providerID, "webhook_id", webhookID)

	runtime, err := p.registry.Provider(providerID)
	if err != nil {
		logger.Warn("Webhook call for unknown provider")

		return &provider.WebhookResponse{Status: http.StatusNotFound}
	}

	hook, err := runtime.Webhook(webhookID)
	if err != nil {
		logger.Warn("Webhook call for unknown webhook")

		return &provider.WebhookResponse{Status: http.StatusNotFound}
	}

	// Authenticity first. An unvalidated request must cause no trigger
	// evaluation and no event emission.
	if !hook.ValidateRequest(request) {
		logger.Warn("Webhook request failed validation")

		return &provider.WebhookResponse{Status: http.StatusUnauthorized}
	}

	batch, err := p.evaluate(ctx, runtime, hook, request, logger)
	if err != nil {
		return &provider.WebhookResponse{Status: http.StatusInternalServerError}
	}

	for _, item := range batch {
		if err := p.eventBus.Publish(ctx, item.key, item.event); err != nil {
			logger.Error("Failed to publish trigger events", "error", err)

			// The provider retries delivery on 5xx per its own contract.
			return &provider.WebhookResponse{Status: http.StatusInternalServerError}
		}
	}

	if replier, ok := hook.(provider.Replier); ok {
		if response := replier.Reply(request); response != nil {
			return response
		}
	}

	return provider.OKResponse()
}

// evaluate walks the webhook's triggers in declaration order and collects
// every produced event. An empty result from CreateEvents is a routine
// outcome, not an error.
func (p *Pipeline) evaluate(ctx context.Context, runtime *provider.Runtime, hook provider.Webhook, request *provider.WebhookRequest, logger *slog.Logger) ([]keyedEvent, error) {
	payload := request.Payload()
	payload = withHeaders(payload, request.Headers)

	batch := make([]keyedEvent, 0)

	for _, triggerID := range hook.TriggerIDs() {
		trigger, err := runtime.Trigger(triggerID)
		if err != nil {
			logger.Error("Webhook declares unknown trigger", "trigger_id", triggerID, "error", err)

			return nil, err
		}

		if !trigger.EventSatisfies(payload) {
			continue
		}

		registrations, err := trigger.Registrations(ctx, p.db, payload)
		if err != nil {
			logger.Error("Failed to look up trigger registrations", "trigger_id", triggerID, "error", err)

			return nil, err
		}

		for _, registration := range registrations {
			created, err := trigger.CreateEvents(payload, registration)
			if err != nil {
				logger.Error("Failed to create events",
					"trigger_id", triggerID,
					"registration_id", registration.ID,
					"error", err)

				return nil, err
			}

			for _, event := range created {
				batch = append(batch, keyedEvent{key: partitionKey(event, registration), event: event})
			}
		}
	}

	return batch, nil
}

func partitionKey(event eventbus.Event, registration *models.TriggerRegistration) string {
	type keyed interface{ PartitionKey() string }

	if k, ok := event.(keyed); ok && k.PartitionKey() != "" {
		return k.PartitionKey()
	}

	return registration.ID
}

// withHeaders exposes inbound headers to triggers under a reserved key, so
// header-only webhook formats can be matched without a body.
func withHeaders(payload map[string]any, headers http.Header) map[string]any {
	flattened := make(map[string]any, len(headers))
	for name := range headers {
		flattened[name] = headers.Get(name)
	}

	payload["_headers"] = flattened

	return payload
}
