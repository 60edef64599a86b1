// Package events defines the outbound event types the gateway publishes when
// provider triggers fire.
package events

import (
	"time"
)

type EventType string

// Kafka topics.
const Topic = "switchyard.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// TriggerFiredEvent is emitted once per matched registration when an
	// inbound provider event passes a trigger.
	TriggerFiredEvent EventType = "trigger.fired"

	// CapabilityInvokedEvent is the audit record of a synchronous capability
	// invocation dispatched through the proxy path.
	CapabilityInvokedEvent EventType = "capability.invoked"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	ProviderID string         `json:"provider_id"`
	OrgID      string         `json:"org_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// TriggerFired wakes up the agent bound to a trigger registration. The
// partition key is the registration id, so events for one registration keep
// their within-request order on the bus.
type TriggerFired struct {
	BaseEvent

	TriggerID      string         `json:"trigger_id"`
	RegistrationID string         `json:"registration_id"`
	AgentID        string         `json:"agent_id"`
	ConnectionID   string         `json:"connection_id,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

func (t TriggerFired) GetType() EventType {
	return TriggerFiredEvent
}

// PartitionKey groups events per registration on the bus.
func (t TriggerFired) PartitionKey() string {
	return t.RegistrationID
}

// CapabilityInvoked is published by the dispatcher after a capability
// execution completes, successfully or not.
type CapabilityInvoked struct {
	BaseEvent

	CapabilityID string        `json:"capability_id"`
	UserID       string        `json:"user_id,omitempty"`
	Duration     time.Duration `json:"duration"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

func (c CapabilityInvoked) GetType() EventType {
	return CapabilityInvokedEvent
}
