package slack

import (
	"context"
	"errors"
	"time"

	"github.com/slack-go/slack"

	"github.com/switchyardhq/switchyard/pkg/capability"
)

// clientFactory builds the Slack client from the resolved bot token.
// Injectable so capability tests run against a fake workspace.
type clientFactory func(token string) slackClient

// slackClient is the slice of the Slack Web API the capabilities use.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
}

func defaultClientFactory(token string) slackClient {
	return slack.New(token)
}

// SendMessageCapability posts a message to a channel as the org's bot.
type SendMessageCapability struct {
	newClient clientFactory
}

func NewSendMessageCapability() capability.Capability {
	return &SendMessageCapability{newClient: defaultClientFactory}
}

func (c *SendMessageCapability) Meta() capability.Meta {
	return capability.Meta{
		ID:          "send_message",
		DisplayName: "Send Message",
		Description: "Posts a message to a Slack channel",
		ParamsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"channel": map[string]any{
					"type":        "string",
					"description": "Channel ID or name to post to",
				},
				"text": map[string]any{
					"type":        "string",
					"description": "Message text",
				},
				"thread_ts": map[string]any{
					"type":        "string",
					"description": "Optional thread timestamp to reply into",
				},
			},
			"required":             []any{"channel", "text"},
			"additionalProperties": false,
		},
		ResultSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"channel": map[string]any{"type": "string"},
				"ts":      map[string]any{"type": "string"},
			},
		},
		RequiredScopes: []string{"chat:write"},
		Risk:           capability.RiskMedium,
	}
}

func (c *SendMessageCapability) Execute(ctx context.Context, execCtx capability.ExecutionContext, params map[string]any) (any, error) {
	client := c.newClient(execCtx.Token.BearerToken())

	channel, _ := params["channel"].(string)
	text, _ := params["text"].(string)

	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS, ok := params["thread_ts"].(string); ok && threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}

	postedChannel, ts, err := client.PostMessageContext(ctx, channel, options...)
	if err != nil {
		return nil, mapSlackError("send_message", err)
	}

	return map[string]any{
		"channel": postedChannel,
		"ts":      ts,
	}, nil
}

// mapSlackError translates Slack client failures into the gateway's
// execution error taxonomy.
func mapSlackError(capabilityID string, err error) error {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) {
		retryAfter := rateLimited.RetryAfter
		if retryAfter <= 0 {
			retryAfter = time.Minute
		}

		return &capability.RateLimitedError{CapabilityID: capabilityID, RetryAfter: retryAfter}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr slack.StatusCodeError
	if errors.As(err, &apiErr) {
		return &capability.UpstreamError{CapabilityID: capabilityID, Status: apiErr.Code, Message: apiErr.Error()}
	}

	return &capability.UpstreamError{CapabilityID: capabilityID, Message: err.Error()}
}
