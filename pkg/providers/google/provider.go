// Package google integrates Google Drive and Calendar: bearer-token REST
// capabilities, a shared push-notification webhook serving the drive and
// calendar triggers, and watch-channel subscriptions that the renewal
// scheduler keeps alive.
package google

import (
	"net/http"
	"time"

	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/provider"
)

const ProviderID = "google"

// Config carries the deployment-specific pieces of the Google integration.
type Config struct {
	// DriveBaseURL and CalendarBaseURL default to the public Google API
	// hosts; overridable for tests.
	DriveBaseURL    string
	CalendarBaseURL string

	// WebhookSecret is embedded as the channel token on every watch channel
	// the gateway creates, and checked on every inbound notification.
	WebhookSecret string

	// CallbackURL is the public address Google delivers notifications to.
	CallbackURL string

	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	if c.DriveBaseURL == "" {
		c.DriveBaseURL = "https://www.googleapis.com"
	}

	if c.CalendarBaseURL == "" {
		c.CalendarBaseURL = "https://www.googleapis.com"
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return c
}

// NewRuntime builds the Google provider runtime.
func NewRuntime(config Config) *provider.Runtime {
	config = config.withDefaults()

	return provider.MustNewRuntime(
		provider.Metadata{
			ID:          ProviderID,
			DisplayName: "Google Workspace",
			Description: "Google Drive and Calendar capabilities and push notifications",
			Kind:        provider.KindExternal,
			Auth:        provider.AuthOAuth2,
		},
		map[string]capability.Factory{
			"drive_list_files": func() capability.Capability {
				return NewDriveListFilesCapability(config)
			},
			"calendar_list_events": func() capability.Capability {
				return NewCalendarListEventsCapability(config)
			},
		},
		[]provider.Webhook{
			NewNotificationsWebhook(config.WebhookSecret),
		},
		[]provider.Trigger{
			NewDriveChangedTrigger(config),
			NewCalendarChangedTrigger(config),
		},
	)
}
