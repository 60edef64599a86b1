// Package slack integrates the Slack Web and Events APIs: messaging
// capabilities executed with per-org bot tokens, and an events webhook
// validated with the app's signing secret.
package slack

import (
	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/provider"
)

const ProviderID = "slack"

// NewRuntime builds the Slack provider runtime. The signing secret belongs
// to the gateway's Slack app and authenticates inbound event deliveries.
func NewRuntime(signingSecret string) *provider.Runtime {
	return provider.MustNewRuntime(
		provider.Metadata{
			ID:          ProviderID,
			DisplayName: "Slack",
			Description: "Slack messaging and workspace events",
			Kind:        provider.KindExternal,
			Auth:        provider.AuthOAuth2,
		},
		map[string]capability.Factory{
			"send_message":  NewSendMessageCapability,
			"list_channels": NewListChannelsCapability,
		},
		[]provider.Webhook{
			NewEventsWebhook(signingSecret),
		},
		[]provider.Trigger{
			NewMessagePostedTrigger(),
			NewReactionAddedTrigger(),
		},
	)
}
