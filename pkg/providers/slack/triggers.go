package slack

import (
	"context"

	"github.com/switchyardhq/switchyard/pkg/eventbus"
	"github.com/switchyardhq/switchyard/pkg/events"
	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

const (
	MessagePostedTriggerID = "message_posted"
	ReactionAddedTriggerID = "reaction_added"
)

// eventCallbackType extracts the inner event type of an Events API delivery.
func eventCallbackType(payload map[string]any) string {
	if payload["type"] != "event_callback" {
		return ""
	}

	inner, ok := payload["event"].(map[string]any)
	if !ok {
		return ""
	}

	innerType, _ := inner["type"].(string)

	return innerType
}

// teamID extracts the workspace id of a delivery, empty when absent.
func teamID(payload map[string]any) string {
	id, _ := payload["team_id"].(string)

	return id
}

// matchesTeam keeps registrations bound to the delivery's workspace. A
// registration without a team filter matches everything; several agents in
// one org registered against the same connection all fan out independently.
func matchesTeam(registration *models.TriggerRegistration, payload map[string]any) bool {
	wanted, _ := registration.Params["team_id"].(string)

	return wanted == "" || wanted == teamID(payload)
}

func triggerRegistrations(ctx context.Context, db persistence.Persistence, triggerID string, payload map[string]any) ([]*models.TriggerRegistration, error) {
	all, err := db.TriggerRegistrationsByTrigger(ctx, ProviderID, triggerID)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.TriggerRegistration, 0, len(all))

	for _, registration := range all {
		if matchesTeam(registration, payload) {
			matched = append(matched, registration)
		}
	}

	return matched, nil
}

// MessagePostedTrigger fires on channel messages. Bot-authored messages are
// excluded so an agent that posts through send_message cannot wake itself up.
type MessagePostedTrigger struct{}

func NewMessagePostedTrigger() *MessagePostedTrigger {
	return &MessagePostedTrigger{}
}

func (t *MessagePostedTrigger) ID() string {
	return MessagePostedTriggerID
}

func (t *MessagePostedTrigger) Description() string {
	return "Fires when a message is posted in a channel the workspace bot can see"
}

func (t *MessagePostedTrigger) EventSatisfies(payload map[string]any) bool {
	if eventCallbackType(payload) != "message" {
		return false
	}

	inner, _ := payload["event"].(map[string]any)
	if botID, ok := inner["bot_id"].(string); ok && botID != "" {
		return false
	}

	return true
}

func (t *MessagePostedTrigger) Registrations(ctx context.Context, db persistence.Persistence, payload map[string]any) ([]*models.TriggerRegistration, error) {
	return triggerRegistrations(ctx, db, MessagePostedTriggerID, payload)
}

func (t *MessagePostedTrigger) CreateEvents(payload map[string]any, registration *models.TriggerRegistration) ([]eventbus.Event, error) {
	inner, _ := payload["event"].(map[string]any)

	// A channel filter on the registration narrows the fan-out.
	if wanted, ok := registration.Params["channel"].(string); ok && wanted != "" {
		if channel, _ := inner["channel"].(string); channel != wanted {
			return []eventbus.Event{}, nil
		}
	}

	event := events.NewTriggerFired(ProviderID, registration, map[string]any{
		"team_id": teamID(payload),
		"event":   inner,
	})

	return []eventbus.Event{event}, nil
}

// ReactionAddedTrigger fires when a reaction is added to a message.
type ReactionAddedTrigger struct{}

func NewReactionAddedTrigger() *ReactionAddedTrigger {
	return &ReactionAddedTrigger{}
}

func (t *ReactionAddedTrigger) ID() string {
	return ReactionAddedTriggerID
}

func (t *ReactionAddedTrigger) Description() string {
	return "Fires when a reaction is added to a message"
}

func (t *ReactionAddedTrigger) EventSatisfies(payload map[string]any) bool {
	return eventCallbackType(payload) == "reaction_added"
}

func (t *ReactionAddedTrigger) Registrations(ctx context.Context, db persistence.Persistence, payload map[string]any) ([]*models.TriggerRegistration, error) {
	return triggerRegistrations(ctx, db, ReactionAddedTriggerID, payload)
}

func (t *ReactionAddedTrigger) CreateEvents(payload map[string]any, registration *models.TriggerRegistration) ([]eventbus.Event, error) {
	inner, _ := payload["event"].(map[string]any)

	if wanted, ok := registration.Params["reaction"].(string); ok && wanted != "" {
		if reaction, _ := inner["reaction"].(string); reaction != wanted {
			return []eventbus.Event{}, nil
		}
	}

	event := events.NewTriggerFired(ProviderID, registration, map[string]any{
		"team_id": teamID(payload),
		"event":   inner,
	})

	return []eventbus.Event{event}, nil
}
