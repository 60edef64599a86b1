// Package persistence provides the data storage abstraction for trigger
// registrations, provider connections and resolved tokens.
package persistence

import (
	"context"
	"time"

	"github.com/switchyardhq/switchyard/pkg/models"
)

type Persistence interface {
	// Trigger registration operations. Saves are single-row upserts keyed by
	// registration id; concurrent updates resolve last-writer-wins, which is
	// safe because subscription renewal is idempotent per registration.
	TriggerRegistrationByID(ctx context.Context, id string) (*models.TriggerRegistration, error)
	SaveTriggerRegistration(ctx context.Context, registration *models.TriggerRegistration) error
	TriggerRegistrationsByTrigger(ctx context.Context, providerID, triggerID string) ([]*models.TriggerRegistration, error)

	// ExpiringTriggerRegistrations returns registrations whose subscription
	// expiry falls before the given instant. Rows without an expiry are never
	// returned; their triggers have no provider-side subscription to renew.
	ExpiringTriggerRegistrations(ctx context.Context, before time.Time) ([]*models.TriggerRegistration, error)

	ConnectionByID(ctx context.Context, id string) (*models.Connection, error)

	// ActiveToken resolves the single active token for an (org, provider)
	// pair. Exactly zero or one active token is expected per pair.
	ActiveToken(ctx context.Context, orgID, providerID string) (*models.Token, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
