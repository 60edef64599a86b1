// Package dispatcher implements the synchronous capability invocation path:
// resolve provider, resolve credential, build a fresh execution context,
// validate parameters, execute under a bounded timeout.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/google/uuid"

	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/credentials"
	"github.com/switchyardhq/switchyard/pkg/eventbus"
	"github.com/switchyardhq/switchyard/pkg/events"
	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/otelhelper"
	"github.com/switchyardhq/switchyard/pkg/persistence"
	"github.com/switchyardhq/switchyard/pkg/registry"
)

const defaultExecuteTimeout = 30 * time.Second

// Request identifies one capability invocation on behalf of an organization.
type Request struct {
	ProviderID   string
	CapabilityID string
	OrgID        string
	UserID       string
	Params       map[string]any
}

type Dispatcher struct {
	registry       *registry.Registry
	db             persistence.Persistence
	credentials    credentials.Resolver
	logger         *slog.Logger
	tracer         trace.Tracer
	executeTimeout time.Duration

	// audit, when set, receives one CapabilityInvoked event per execution.
	audit eventbus.EventPublisher
}

func NewDispatcher(
	reg *registry.Registry,
	db persistence.Persistence,
	resolver credentials.Resolver,
	logger *slog.Logger,
	tracer trace.Tracer,
) *Dispatcher {
	return &Dispatcher{
		registry:       reg,
		db:             db,
		credentials:    resolver,
		logger:         logger,
		tracer:         tracer,
		executeTimeout: defaultExecuteTimeout,
	}
}

// WithExecuteTimeout overrides the bounded per-invocation timeout.
func (d *Dispatcher) WithExecuteTimeout(timeout time.Duration) *Dispatcher {
	d.executeTimeout = timeout

	return d
}

// WithAuditPublisher enables the capability invocation audit trail.
func (d *Dispatcher) WithAuditPublisher(bus eventbus.EventPublisher) *Dispatcher {
	d.audit = bus

	return d
}

// Invoke resolves and executes one capability, returning its result
// verbatim. Credential resolution happens before the capability is touched:
// a missing credential must fail without any network call to the provider.
func (d *Dispatcher) Invoke(ctx context.Context, request Request) (any, error) {
	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "dispatcher.invoke",
		attribute.String(otelhelper.ProviderIDKey, request.ProviderID),
		attribute.String(otelhelper.CapabilityIDKey, request.CapabilityID),
		attribute.String(otelhelper.OrgIDKey, request.OrgID),
	)
	defer span.End()

	runtime, err := d.registry.Provider(request.ProviderID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	var token *models.Token

	if runtime.Metadata().RequiresAuth() {
		token, err = d.credentials.ActiveToken(ctx, request.OrgID, request.ProviderID)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}
	}

	execCtx := capability.ExecutionContext{
		DB:         d.db,
		OrgID:      request.OrgID,
		UserID:     request.UserID,
		Token:      token,
		RetryCount: 0,
		Logger: d.logger.With(
			"provider_id", request.ProviderID,
			"capability_id", request.CapabilityID,
			"org_id", request.OrgID,
		),
	}

	target, err := runtime.Capability(request.CapabilityID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if err := capability.ValidateParams(target.Meta(), request.Params); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	started := time.Now()

	result, err := d.execute(ctx, target, execCtx, request.Params)

	d.publishAudit(ctx, request, time.Since(started), err)

	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return result, nil
}

// publishAudit emits the invocation audit record. Best effort: a bus outage
// must never fail the invocation itself.
func (d *Dispatcher) publishAudit(ctx context.Context, request Request, duration time.Duration, execErr error) {
	if d.audit == nil {
		return
	}

	event := events.CapabilityInvoked{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.CapabilityInvokedEvent,
			Timestamp:  time.Now().UTC(),
			ProviderID: request.ProviderID,
			OrgID:      request.OrgID,
		},
		CapabilityID: request.CapabilityID,
		UserID:       request.UserID,
		Duration:     duration,
		Success:      execErr == nil,
	}

	if execErr != nil {
		event.Error = execErr.Error()
	}

	if err := d.audit.Publish(ctx, request.OrgID, event); err != nil {
		d.logger.Warn("Failed to publish invocation audit event", "error", err)
	}
}

// execute runs the capability under the bounded timeout. A deadline hit is
// reported as an upstream timeout, distinguishable from provider failures.
func (d *Dispatcher) execute(ctx context.Context, target capability.Capability, execCtx capability.ExecutionContext, params map[string]any) (any, error) {
	execContext, cancel := context.WithTimeout(ctx, d.executeTimeout)
	defer cancel()

	result, err := target.Execute(execContext, execCtx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &capability.TimeoutError{
				CapabilityID: target.Meta().ID,
				Timeout:      d.executeTimeout,
			}
		}

		return nil, err
	}

	return result, nil
}
