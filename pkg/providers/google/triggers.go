package google

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/switchyardhq/switchyard/pkg/eventbus"
	"github.com/switchyardhq/switchyard/pkg/events"
	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
	"github.com/switchyardhq/switchyard/pkg/provider"
)

const (
	DriveChangedTriggerID    = "drive_changed"
	CalendarChangedTriggerID = "calendar_changed"

	channelIDKey  = "channel_id"
	resourceIDKey = "resource_id"

	// defaultWatchTTL applies when Google omits the channel expiration.
	defaultWatchTTL = 7 * 24 * time.Hour
)

// headerValue reads an inbound header exposed to triggers through the
// reserved payload key.
func headerValue(payload map[string]any, name string) string {
	headers, ok := payload["_headers"].(map[string]any)
	if !ok {
		return ""
	}

	value, _ := headers[name].(string)

	return value
}

// notificationMatches reports whether a push notification is a content change
// for the given resource path. Channel-creation "sync" messages carry no
// change and are dropped here.
func notificationMatches(payload map[string]any, resourcePath string) bool {
	state := headerValue(payload, "X-Goog-Resource-State")
	if state == "" || state == "sync" {
		return false
	}

	return strings.Contains(headerValue(payload, "X-Goog-Resource-Uri"), resourcePath)
}

// channelRegistrations returns the registrations whose watch channel matches
// the notification's channel id. Google delivers one notification per
// channel, so at most the registrations that share that channel fan out.
func channelRegistrations(ctx context.Context, db persistence.Persistence, triggerID string, payload map[string]any) ([]*models.TriggerRegistration, error) {
	channelID := headerValue(payload, "X-Goog-Channel-Id")
	if channelID == "" {
		return nil, nil
	}

	all, err := db.TriggerRegistrationsByTrigger(ctx, ProviderID, triggerID)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.TriggerRegistration, 0, 1)

	for _, registration := range all {
		if id, _ := registration.SubscriptionMetadata[channelIDKey].(string); id == channelID {
			matched = append(matched, registration)
		}
	}

	return matched, nil
}

func notificationEvents(payload map[string]any, registration *models.TriggerRegistration) ([]eventbus.Event, error) {
	fired := events.NewTriggerFired(ProviderID, registration, map[string]any{
		"resource_state": headerValue(payload, "X-Goog-Resource-State"),
		"resource_id":    headerValue(payload, "X-Goog-Resource-Id"),
		"resource_uri":   headerValue(payload, "X-Goog-Resource-Uri"),
		"message_number": headerValue(payload, "X-Goog-Message-Number"),
	})

	return []eventbus.Event{fired}, nil
}

// registerWatch creates a push channel for the given watch endpoint and
// returns its provider-side state. The gateway's webhook secret travels as
// the channel token and comes back on every notification.
func registerWatch(ctx context.Context, config Config, db persistence.Persistence, registration *models.TriggerRegistration, watchURL string) (map[string]any, time.Time, error) {
	token, err := db.ActiveToken(ctx, registration.OrgID, ProviderID)
	if err != nil {
		return nil, time.Time{}, err
	}

	if config.CallbackURL == "" {
		return nil, time.Time{}, errors.New("google watch channels need a configured callback url")
	}

	channelID := uuid.New().String()

	decoded, err := doJSON(ctx, config.HTTPClient, registration.TriggerID, "POST", watchURL, token.BearerToken(), map[string]any{
		"id":      channelID,
		"type":    "web_hook",
		"address": config.CallbackURL,
		"token":   config.WebhookSecret,
	})
	if err != nil {
		return nil, time.Time{}, err
	}

	metadata := map[string]any{channelIDKey: channelID}
	if resourceID, ok := decoded["resourceId"].(string); ok {
		metadata[resourceIDKey] = resourceID
	}

	return metadata, watchExpiry(decoded), nil
}

// watchExpiry parses the channel expiration, a millisecond epoch that Google
// returns as a JSON string.
func watchExpiry(decoded map[string]any) time.Time {
	raw, _ := decoded["expiration"].(string)

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || millis <= 0 {
		return time.Now().UTC().Add(defaultWatchTTL)
	}

	return time.UnixMilli(millis).UTC()
}

// DriveChangedTrigger fires when anything in the org's Drive changes.
type DriveChangedTrigger struct {
	config Config
}

func NewDriveChangedTrigger(config Config) *DriveChangedTrigger {
	return &DriveChangedTrigger{config: config}
}

func (t *DriveChangedTrigger) ID() string {
	return DriveChangedTriggerID
}

func (t *DriveChangedTrigger) Description() string {
	return "Fires when files in Google Drive change"
}

func (t *DriveChangedTrigger) EventSatisfies(payload map[string]any) bool {
	return notificationMatches(payload, "/drive/")
}

func (t *DriveChangedTrigger) Registrations(ctx context.Context, db persistence.Persistence, payload map[string]any) ([]*models.TriggerRegistration, error) {
	return channelRegistrations(ctx, db, DriveChangedTriggerID, payload)
}

func (t *DriveChangedTrigger) CreateEvents(payload map[string]any, registration *models.TriggerRegistration) ([]eventbus.Event, error) {
	return notificationEvents(payload, registration)
}

func (t *DriveChangedTrigger) RegisterSubscription(ctx context.Context, db persistence.Persistence, connectionMetadata map[string]any, registration *models.TriggerRegistration) (*provider.Subscription, error) {
	metadata, expiresAt, err := registerWatch(ctx, t.config, db, registration, t.config.DriveBaseURL+"/drive/v3/changes/watch?pageToken=1")
	if err != nil {
		return nil, err
	}

	return &provider.Subscription{Metadata: metadata, ExpiresAt: expiresAt}, nil
}

// CalendarChangedTrigger fires when events on the primary calendar change.
type CalendarChangedTrigger struct {
	config Config
}

func NewCalendarChangedTrigger(config Config) *CalendarChangedTrigger {
	return &CalendarChangedTrigger{config: config}
}

func (t *CalendarChangedTrigger) ID() string {
	return CalendarChangedTriggerID
}

func (t *CalendarChangedTrigger) Description() string {
	return "Fires when events on the primary Google Calendar change"
}

func (t *CalendarChangedTrigger) EventSatisfies(payload map[string]any) bool {
	return notificationMatches(payload, "/calendar/")
}

func (t *CalendarChangedTrigger) Registrations(ctx context.Context, db persistence.Persistence, payload map[string]any) ([]*models.TriggerRegistration, error) {
	return channelRegistrations(ctx, db, CalendarChangedTriggerID, payload)
}

func (t *CalendarChangedTrigger) CreateEvents(payload map[string]any, registration *models.TriggerRegistration) ([]eventbus.Event, error) {
	return notificationEvents(payload, registration)
}

func (t *CalendarChangedTrigger) RegisterSubscription(ctx context.Context, db persistence.Persistence, connectionMetadata map[string]any, registration *models.TriggerRegistration) (*provider.Subscription, error) {
	metadata, expiresAt, err := registerWatch(ctx, t.config, db, registration, t.config.CalendarBaseURL+"/calendar/v3/calendars/primary/events/watch")
	if err != nil {
		return nil, err
	}

	return &provider.Subscription{Metadata: metadata, ExpiresAt: expiresAt}, nil
}
