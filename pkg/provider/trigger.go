package provider

import (
	"context"
	"time"

	"github.com/switchyardhq/switchyard/pkg/eventbus"
	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

// Trigger converts an inbound provider event into zero or more outbound,
// agent-directed events. The three phases are deliberately split: whether
// this trigger cares about the payload (EventSatisfies, a pure predicate),
// who is subscribed (Registrations, which may use provider-specific
// subscription metadata embedded in the payload), and what events result
// (CreateEvents, where an empty result is valid and common).
type Trigger interface {
	ID() string
	Description() string

	EventSatisfies(payload map[string]any) bool

	Registrations(ctx context.Context, db persistence.Persistence, payload map[string]any) ([]*models.TriggerRegistration, error)

	CreateEvents(payload map[string]any, registration *models.TriggerRegistration) ([]eventbus.Event, error)
}

// Subscription is the provider-side state returned by a successful
// subscription registration or renewal.
type Subscription struct {
	Metadata  map[string]any
	ExpiresAt time.Time
}

// SubscribingTrigger is implemented by push-style triggers whose provider
// subscriptions have a finite lifetime and must be re-issued before expiry.
// Triggers without provider-side subscription state (e.g. cron) do not
// implement it and are skipped by the renewal scheduler.
type SubscribingTrigger interface {
	Trigger

	RegisterSubscription(ctx context.Context, db persistence.Persistence, connectionMetadata map[string]any, registration *models.TriggerRegistration) (*Subscription, error)
}
