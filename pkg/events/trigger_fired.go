package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/switchyardhq/switchyard/pkg/models"
)

// NewTriggerFired builds the standard outbound event for one matched
// registration of a provider trigger.
func NewTriggerFired(providerID string, registration *models.TriggerRegistration, data map[string]any) TriggerFired {
	connectionID := ""
	if registration.ConnectionID != nil {
		connectionID = *registration.ConnectionID
	}

	return TriggerFired{
		BaseEvent: BaseEvent{
			ID:         uuid.New().String(),
			Type:       TriggerFiredEvent,
			Timestamp:  time.Now().UTC(),
			ProviderID: providerID,
			OrgID:      registration.OrgID,
		},
		TriggerID:      registration.TriggerID,
		RegistrationID: registration.ID,
		AgentID:        registration.AgentID,
		ConnectionID:   connectionID,
		Data:           data,
	}
}
