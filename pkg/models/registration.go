package models

import (
	"errors"
	"time"
)

// LastRenewalErrorKey is the subscription metadata key under which the renewal
// scheduler records the most recent failed renewal attempt.
const LastRenewalErrorKey = "lastRenewalError"

// TriggerRegistration binds an agent to a provider trigger. Push-style triggers
// additionally carry provider-side subscription state (channel ids, verification
// tokens) plus the provider-granted expiry for that subscription.
type TriggerRegistration struct {
	ID           string  `json:"id"            validate:"required"`
	OrgID        string  `json:"org_id"        validate:"required"`
	AgentID      string  `json:"agent_id"      validate:"required"`
	ProviderID   string  `json:"provider_id"   validate:"required"`
	TriggerID    string  `json:"trigger_id"    validate:"required"`
	ConnectionID *string `json:"connection_id,omitempty"`

	// Params holds trigger-specific configuration, e.g. a cron schedule or a
	// channel filter. Interpreted only by the owning trigger.
	Params map[string]any `json:"params,omitempty"`

	// SubscriptionMetadata is provider-specific opaque state written by
	// RegisterSubscription and by the renewal scheduler on failure.
	SubscriptionMetadata map[string]any `json:"subscription_metadata,omitempty"`

	// ExpiresAt is the provider-granted subscription expiry. Nil for triggers
	// without a provider-side subscription (e.g. cron). A value in the past
	// means the subscription is stale and delivery cannot be relied upon.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTriggerRegistration creates a registration with timestamps initialized.
func NewTriggerRegistration(id, orgID, agentID, providerID, triggerID string) *TriggerRegistration {
	now := time.Now().UTC()

	return &TriggerRegistration{
		ID:         id,
		OrgID:      orgID,
		AgentID:    agentID,
		ProviderID: providerID,
		TriggerID:  triggerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ApplyRenewal records a successful subscription renewal: new provider-side
// metadata, a fresh expiry, and a cleared renewal error.
func (r *TriggerRegistration) ApplyRenewal(metadata map[string]any, expiresAt time.Time) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	delete(metadata, LastRenewalErrorKey)

	r.SubscriptionMetadata = metadata
	r.ExpiresAt = &expiresAt
	r.UpdatedAt = time.Now().UTC()
}

// RecordRenewalError merges a failed renewal attempt into the subscription
// metadata. ExpiresAt is deliberately left untouched so the registration stays
// eligible for retry on the next pass until it lapses.
func (r *TriggerRegistration) RecordRenewalError(message string, at time.Time) {
	if r.SubscriptionMetadata == nil {
		r.SubscriptionMetadata = map[string]any{}
	}

	r.SubscriptionMetadata[LastRenewalErrorKey] = map[string]any{
		"message": message,
		"at":      at.UTC().Format(time.RFC3339),
	}
	r.UpdatedAt = time.Now().UTC()
}

// Expired reports whether the subscription expiry has lapsed at the given time.
// Registrations without an expiry never expire.
func (r *TriggerRegistration) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// Validate performs validation on the registration fields.
func (r *TriggerRegistration) Validate() error {
	if r.ID == "" || r.OrgID == "" || r.AgentID == "" || r.ProviderID == "" || r.TriggerID == "" {
		return ErrInvalidRegistration
	}

	return nil
}

// ErrInvalidRegistration is returned when registration validation fails.
var ErrInvalidRegistration = errors.New("invalid trigger registration")
