package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/events"
	"github.com/switchyardhq/switchyard/pkg/models"
)

func TestCurrentTime_DefaultsToUTC(t *testing.T) {
	fixed := time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC)
	c := &CurrentTimeCapability{now: func() time.Time { return fixed }}

	result, err := c.Execute(context.Background(), capability.ExecutionContext{}, map[string]any{})
	require.NoError(t, err)

	resolved, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2026-05-10T14:30:00Z", resolved["time"])
	assert.Equal(t, "UTC", resolved["timezone"])
	assert.Equal(t, fixed.Unix(), resolved["unix"])
}

func TestCurrentTime_ConvertsTimezone(t *testing.T) {
	fixed := time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC)
	c := &CurrentTimeCapability{now: func() time.Time { return fixed }}

	result, err := c.Execute(context.Background(), capability.ExecutionContext{}, map[string]any{
		"timezone": "America/Sao_Paulo",
	})
	require.NoError(t, err)

	resolved := result.(map[string]any)
	assert.Equal(t, "America/Sao_Paulo", resolved["timezone"])
	assert.Equal(t, fixed.Unix(), resolved["unix"])
}

func TestCurrentTime_UnknownTimezone(t *testing.T) {
	c := NewCurrentTimeCapability()

	_, err := c.Execute(context.Background(), capability.ExecutionContext{}, map[string]any{
		"timezone": "Atlantis/Lost",
	})

	assert.True(t, capability.IsValidationError(err))
}

func tickPayload(at time.Time) map[string]any {
	return map[string]any{"tick_at": at.Format(time.RFC3339)}
}

func cronRegistration(schedule string) *models.TriggerRegistration {
	registration := models.NewTriggerRegistration("reg-1", "org-1", "agent-1", ProviderID, CronTriggerID)
	registration.Params = map[string]any{"schedule": schedule}

	return registration
}

func TestCronTrigger_EventSatisfies(t *testing.T) {
	trigger := NewCronTrigger()

	assert.True(t, trigger.EventSatisfies(tickPayload(time.Now())))
	assert.False(t, trigger.EventSatisfies(map[string]any{}))
	assert.False(t, trigger.EventSatisfies(map[string]any{"tick_at": "not-a-time"}))
}

func TestCronTrigger_CreateEvents_MatchingMinute(t *testing.T) {
	trigger := NewCronTrigger()

	// Every 15 minutes; the tick lands exactly on a quarter hour.
	at := time.Date(2026, 5, 10, 14, 45, 12, 0, time.UTC)
	created, err := trigger.CreateEvents(tickPayload(at), cronRegistration("*/15 * * * *"))
	require.NoError(t, err)
	require.Len(t, created, 1)

	fired, ok := created[0].(events.TriggerFired)
	require.True(t, ok)
	assert.Equal(t, ProviderID, fired.ProviderID)
	assert.Equal(t, CronTriggerID, fired.TriggerID)
	assert.Equal(t, "reg-1", fired.RegistrationID)
	assert.Equal(t, "*/15 * * * *", fired.Data["schedule"])
}

func TestCronTrigger_CreateEvents_NonMatchingMinute(t *testing.T) {
	trigger := NewCronTrigger()

	at := time.Date(2026, 5, 10, 14, 44, 0, 0, time.UTC)
	created, err := trigger.CreateEvents(tickPayload(at), cronRegistration("*/15 * * * *"))
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestCronTrigger_CreateEvents_MalformedScheduleIsSilent(t *testing.T) {
	trigger := NewCronTrigger()

	created, err := trigger.CreateEvents(tickPayload(time.Now()), cronRegistration("not a cron"))
	require.NoError(t, err)
	assert.Empty(t, created)

	missing := models.NewTriggerRegistration("reg-2", "org-1", "agent-1", ProviderID, CronTriggerID)
	created, err = trigger.CreateEvents(tickPayload(time.Now()), missing)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestClockRuntime(t *testing.T) {
	runtime := NewRuntime()

	metas := runtime.Capabilities()
	require.Len(t, metas, 1)
	assert.Equal(t, "current_time", metas[0].ID)
	assert.Empty(t, runtime.ScopeMapping()["current_time"])

	triggers := runtime.Triggers()
	require.Len(t, triggers, 1)
	assert.Equal(t, CronTriggerID, triggers[0].ID())
}
