package google

import (
	"crypto/subtle"

	"github.com/switchyardhq/switchyard/pkg/provider"
)

const NotificationsWebhookID = "notifications"

// NotificationsWebhook is the single push-notification endpoint shared by the
// drive and calendar triggers. Google identifies the watched resource through
// X-Goog-* headers; bodies are empty or ignorable.
type NotificationsWebhook struct {
	secret string
}

// NewNotificationsWebhook validates notifications against the channel token
// the gateway embedded when the watch channel was created.
func NewNotificationsWebhook(secret string) *NotificationsWebhook {
	return &NotificationsWebhook{secret: secret}
}

func (w *NotificationsWebhook) ID() string {
	return NotificationsWebhookID
}

// ValidateRequest checks the echoed channel token. A deployment without a
// configured secret refuses everything rather than accepting everything.
func (w *NotificationsWebhook) ValidateRequest(request *provider.WebhookRequest) bool {
	if w.secret == "" {
		return false
	}

	token := request.Headers.Get("X-Goog-Channel-Token")

	return subtle.ConstantTimeCompare([]byte(token), []byte(w.secret)) == 1
}

func (w *NotificationsWebhook) TriggerIDs() []string {
	return []string{DriveChangedTriggerID, CalendarChangedTriggerID}
}
