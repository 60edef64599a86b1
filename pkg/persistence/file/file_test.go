package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

func newRegistration(id string, createdAt time.Time) *models.TriggerRegistration {
	registration := models.NewTriggerRegistration(id, "org-1", "agent-1", "slack", "message_posted")
	registration.CreatedAt = createdAt
	registration.UpdatedAt = createdAt

	return registration
}

func TestFilePersistence_SaveAndLoadRegistration(t *testing.T) {
	db := NewPersistence(t.TempDir())
	ctx := context.Background()

	registration := newRegistration("reg-1", time.Now().UTC())
	registration.Params = map[string]any{"team_id": "T123"}
	expiry := time.Now().UTC().Add(time.Hour)
	registration.ExpiresAt = &expiry

	require.NoError(t, db.SaveTriggerRegistration(ctx, registration))

	loaded, err := db.TriggerRegistrationByID(ctx, "reg-1")
	require.NoError(t, err)
	assert.Equal(t, "org-1", loaded.OrgID)
	assert.Equal(t, "message_posted", loaded.TriggerID)
	assert.Equal(t, "T123", loaded.Params["team_id"])
	require.NotNil(t, loaded.ExpiresAt)
	assert.True(t, loaded.ExpiresAt.Equal(expiry))
}

func TestFilePersistence_RegistrationNotFound(t *testing.T) {
	db := NewPersistence(t.TempDir())

	_, err := db.TriggerRegistrationByID(context.Background(), "ghost")
	assert.True(t, persistence.IsRegistrationNotFound(err))
}

func TestFilePersistence_SaveRejectsInvalidRegistration(t *testing.T) {
	db := NewPersistence(t.TempDir())

	registration := newRegistration("reg-1", time.Now().UTC())
	registration.ProviderID = ""

	err := db.SaveTriggerRegistration(context.Background(), registration)
	assert.ErrorIs(t, err, models.ErrInvalidRegistration)
}

func TestFilePersistence_RegistrationsByTrigger(t *testing.T) {
	db := NewPersistence(t.TempDir())
	ctx := context.Background()

	base := time.Now().UTC()

	// Saved newest-first to prove ordering comes from CreatedAt, not from
	// write order.
	second := newRegistration("reg-b", base.Add(time.Minute))
	first := newRegistration("reg-a", base)
	other := newRegistration("reg-c", base)
	other.TriggerID = "reaction_added"

	require.NoError(t, db.SaveTriggerRegistration(ctx, second))
	require.NoError(t, db.SaveTriggerRegistration(ctx, first))
	require.NoError(t, db.SaveTriggerRegistration(ctx, other))

	matched, err := db.TriggerRegistrationsByTrigger(ctx, "slack", "message_posted")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "reg-a", matched[0].ID)
	assert.Equal(t, "reg-b", matched[1].ID)
}

func TestFilePersistence_ExpiringTriggerRegistrations(t *testing.T) {
	db := NewPersistence(t.TempDir())
	ctx := context.Background()

	now := time.Now().UTC()

	soon := newRegistration("reg-soon", now)
	soonExpiry := now.Add(time.Hour)
	soon.ExpiresAt = &soonExpiry

	later := newRegistration("reg-later", now)
	laterExpiry := now.Add(72 * time.Hour)
	later.ExpiresAt = &laterExpiry

	// No expiry at all, e.g. a cron registration.
	eternal := newRegistration("reg-eternal", now)

	for _, registration := range []*models.TriggerRegistration{soon, later, eternal} {
		require.NoError(t, db.SaveTriggerRegistration(ctx, registration))
	}

	expiring, err := db.ExpiringTriggerRegistrations(ctx, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "reg-soon", expiring[0].ID)
}

func TestFilePersistence_Connections(t *testing.T) {
	root := t.TempDir()
	db := NewPersistence(root).(*Persistence)
	ctx := context.Background()

	connection := &models.Connection{
		ID:         "conn-1",
		OrgID:      "org-1",
		ProviderID: "google",
		ExternalAccountMetadata: map[string]any{
			"account_email": "ops@example.com",
		},
	}

	require.NoError(t, db.SaveConnection(ctx, connection))

	loaded, err := db.ConnectionByID(ctx, "conn-1")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", loaded.ExternalAccountMetadata["account_email"])

	_, err = db.ConnectionByID(ctx, "ghost")
	assert.True(t, persistence.IsConnectionNotFound(err))
}

func TestFilePersistence_ActiveToken(t *testing.T) {
	root := t.TempDir()
	db := NewPersistence(root).(*Persistence)
	ctx := context.Background()

	inactive := &models.Token{ID: "tok-old", OrgID: "org-1", ProviderID: "slack", Active: false}
	active := &models.Token{
		ID:         "tok-new",
		OrgID:      "org-1",
		ProviderID: "slack",
		Active:     true,
		Payload:    map[string]any{"access_token": "xoxb-1"},
	}
	otherOrg := &models.Token{ID: "tok-other", OrgID: "org-2", ProviderID: "slack", Active: true}

	for _, token := range []*models.Token{inactive, active, otherOrg} {
		require.NoError(t, db.SaveToken(ctx, token))
	}

	resolved, err := db.ActiveToken(ctx, "org-1", "slack")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", resolved.ID)
	assert.Equal(t, "xoxb-1", resolved.BearerToken())

	_, err = db.ActiveToken(ctx, "org-1", "google")
	assert.True(t, persistence.IsTokenNotFound(err))
}

func TestFilePersistence_HealthCheck(t *testing.T) {
	root := t.TempDir()
	db := NewPersistence(root)

	assert.NoError(t, db.HealthCheck(context.Background()))

	missing := NewPersistence(root + "/does-not-exist")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
