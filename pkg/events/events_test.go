package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyardhq/switchyard/pkg/models"
)

func TestNewTriggerFired(t *testing.T) {
	registration := models.NewTriggerRegistration("reg-1", "org-1", "agent-1", "slack", "message_posted")
	connectionID := "conn-1"
	registration.ConnectionID = &connectionID

	fired := NewTriggerFired("slack", registration, map[string]any{"channel": "C1"})

	assert.NotEmpty(t, fired.ID)
	assert.Equal(t, TriggerFiredEvent, fired.GetType())
	assert.Equal(t, "slack", fired.ProviderID)
	assert.Equal(t, "org-1", fired.OrgID)
	assert.Equal(t, "agent-1", fired.AgentID)
	assert.Equal(t, "conn-1", fired.ConnectionID)
	assert.Equal(t, "reg-1", fired.PartitionKey())
	assert.False(t, fired.Timestamp.IsZero())
}

func TestNewTriggerFired_NoConnection(t *testing.T) {
	registration := models.NewTriggerRegistration("reg-2", "org-1", "agent-1", "clock", "cron_tick")

	fired := NewTriggerFired("clock", registration, nil)

	require.Empty(t, fired.ConnectionID)
	assert.Equal(t, "cron_tick", fired.TriggerID)
}
