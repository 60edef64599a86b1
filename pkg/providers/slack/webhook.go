package slack

import (
	"encoding/json"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/switchyardhq/switchyard/pkg/provider"
)

const EventsWebhookID = "events"

// EventsWebhook receives Slack Events API deliveries. Authenticity is the
// signed-request scheme: an HMAC of the timestamp and body under the app's
// signing secret, carried in X-Slack-Signature.
type EventsWebhook struct {
	signingSecret string
}

func NewEventsWebhook(signingSecret string) *EventsWebhook {
	return &EventsWebhook{signingSecret: signingSecret}
}

func (w *EventsWebhook) ID() string {
	return EventsWebhookID
}

func (w *EventsWebhook) ValidateRequest(request *provider.WebhookRequest) bool {
	verifier, err := slack.NewSecretsVerifier(request.Headers, w.signingSecret)
	if err != nil {
		return false
	}

	if _, err := verifier.Write(request.Body); err != nil {
		return false
	}

	return verifier.Ensure() == nil
}

func (w *EventsWebhook) TriggerIDs() []string {
	return []string{MessagePostedTriggerID, ReactionAddedTriggerID}
}

// Reply echoes the challenge on Events API URL verification handshakes;
// everything else gets the default reply.
func (w *EventsWebhook) Reply(request *provider.WebhookRequest) *provider.WebhookResponse {
	payload := request.Payload()

	if payload["type"] != "url_verification" {
		return nil
	}

	challenge, _ := payload["challenge"].(string)

	body, err := json.Marshal(map[string]string{"challenge": challenge})
	if err != nil {
		return nil
	}

	return &provider.WebhookResponse{
		Status:      http.StatusOK,
		ContentType: "application/json",
		Body:        body,
	}
}
