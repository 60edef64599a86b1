package clock

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/switchyardhq/switchyard/pkg/eventbus"
	"github.com/switchyardhq/switchyard/pkg/events"
	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

const CronTriggerID = "cron_tick"

// CronTrigger matches periodic tick payloads against each registration's own
// cron schedule. It has no provider-side subscription: nothing to renew, so
// the renewal scheduler skips its registrations.
type CronTrigger struct{}

func NewCronTrigger() *CronTrigger {
	return &CronTrigger{}
}

func (t *CronTrigger) ID() string {
	return CronTriggerID
}

func (t *CronTrigger) Description() string {
	return "Fires for registrations whose cron schedule matches the tick minute"
}

// EventSatisfies accepts payloads carrying a parseable tick timestamp.
func (t *CronTrigger) EventSatisfies(payload map[string]any) bool {
	_, ok := tickAt(payload)

	return ok
}

func (t *CronTrigger) Registrations(ctx context.Context, db persistence.Persistence, _ map[string]any) ([]*models.TriggerRegistration, error) {
	return db.TriggerRegistrationsByTrigger(ctx, ProviderID, CronTriggerID)
}

// CreateEvents emits one event when the registration's schedule covers the
// tick minute, and nothing otherwise. An empty result is the common case.
func (t *CronTrigger) CreateEvents(payload map[string]any, registration *models.TriggerRegistration) ([]eventbus.Event, error) {
	at, ok := tickAt(payload)
	if !ok {
		return []eventbus.Event{}, nil
	}

	expression, ok := registration.Params["schedule"].(string)
	if !ok || expression == "" {
		return []eventbus.Event{}, nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	schedule, err := parser.Parse(expression)
	if err != nil {
		// A malformed schedule silences this registration, it does not fail
		// the shared webhook call.
		return []eventbus.Event{}, nil
	}

	minute := at.Truncate(time.Minute)
	if !schedule.Next(minute.Add(-time.Second)).Equal(minute) {
		return []eventbus.Event{}, nil
	}

	event := events.NewTriggerFired(ProviderID, registration, map[string]any{
		"tick_at":  at.Format(time.RFC3339),
		"schedule": expression,
	})

	return []eventbus.Event{event}, nil
}

func tickAt(payload map[string]any) (time.Time, bool) {
	raw, ok := payload["tick_at"].(string)
	if !ok {
		return time.Time{}, false
	}

	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}

	return at.UTC(), true
}
