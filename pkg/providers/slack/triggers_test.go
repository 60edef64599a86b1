package slack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyardhq/switchyard/pkg/events"
	"github.com/switchyardhq/switchyard/pkg/mocks"
	"github.com/switchyardhq/switchyard/pkg/models"
)

func messagePayload(channel string, extra map[string]any) map[string]any {
	inner := map[string]any{"type": "message", "channel": channel, "text": "hello"}
	for k, v := range extra {
		inner[k] = v
	}

	return map[string]any{
		"type":    "event_callback",
		"team_id": "T123",
		"event":   inner,
	}
}

func slackRegistration(id, triggerID string, params map[string]any) *models.TriggerRegistration {
	registration := models.NewTriggerRegistration(id, "org-1", "agent-1", ProviderID, triggerID)
	registration.Params = params

	return registration
}

func TestMessagePostedTrigger_EventSatisfies(t *testing.T) {
	trigger := NewMessagePostedTrigger()

	assert.True(t, trigger.EventSatisfies(messagePayload("C1", nil)))
	assert.False(t, trigger.EventSatisfies(map[string]any{"type": "url_verification"}))
	assert.False(t, trigger.EventSatisfies(map[string]any{
		"type":  "event_callback",
		"event": map[string]any{"type": "reaction_added"},
	}))
}

func TestMessagePostedTrigger_ExcludesBotMessages(t *testing.T) {
	trigger := NewMessagePostedTrigger()

	payload := messagePayload("C1", map[string]any{"bot_id": "B999"})
	assert.False(t, trigger.EventSatisfies(payload), "bot messages must not re-trigger agents")
}

func TestMessagePostedTrigger_ChannelFilter(t *testing.T) {
	trigger := NewMessagePostedTrigger()
	payload := messagePayload("C1", nil)

	created, err := trigger.CreateEvents(payload, slackRegistration("reg-1", MessagePostedTriggerID, map[string]any{"channel": "C1"}))
	require.NoError(t, err)
	require.Len(t, created, 1)

	fired := created[0].(events.TriggerFired)
	assert.Equal(t, "T123", fired.Data["team_id"])

	created, err = trigger.CreateEvents(payload, slackRegistration("reg-2", MessagePostedTriggerID, map[string]any{"channel": "C2"}))
	require.NoError(t, err)
	assert.Empty(t, created)

	// No filter fans out everything.
	created, err = trigger.CreateEvents(payload, slackRegistration("reg-3", MessagePostedTriggerID, nil))
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestReactionAddedTrigger_ReactionFilter(t *testing.T) {
	trigger := NewReactionAddedTrigger()

	payload := map[string]any{
		"type":    "event_callback",
		"team_id": "T123",
		"event":   map[string]any{"type": "reaction_added", "reaction": "eyes"},
	}

	require.True(t, trigger.EventSatisfies(payload))

	created, err := trigger.CreateEvents(payload, slackRegistration("reg-1", ReactionAddedTriggerID, map[string]any{"reaction": "eyes"}))
	require.NoError(t, err)
	assert.Len(t, created, 1)

	created, err = trigger.CreateEvents(payload, slackRegistration("reg-2", ReactionAddedTriggerID, map[string]any{"reaction": "thumbsup"}))
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestTriggerRegistrations_TeamFilter(t *testing.T) {
	trigger := NewMessagePostedTrigger()
	payload := messagePayload("C1", nil)

	matching := slackRegistration("reg-1", MessagePostedTriggerID, map[string]any{"team_id": "T123"})
	otherTeam := slackRegistration("reg-2", MessagePostedTriggerID, map[string]any{"team_id": "T999"})
	unfiltered := slackRegistration("reg-3", MessagePostedTriggerID, nil)

	db := &mocks.MockPersistence{}
	db.On("TriggerRegistrationsByTrigger", context.Background(), ProviderID, MessagePostedTriggerID).
		Return([]*models.TriggerRegistration{matching, otherTeam, unfiltered}, nil)

	matched, err := trigger.Registrations(context.Background(), db, payload)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "reg-1", matched[0].ID)
	assert.Equal(t, "reg-3", matched[1].ID)
}
