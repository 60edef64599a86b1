package slack

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/switchyardhq/switchyard/pkg/capability"
)

const listChannelsPageSize = 200

// ListChannelsCapability enumerates the channels visible to the org's bot.
type ListChannelsCapability struct {
	newClient clientFactory
}

func NewListChannelsCapability() capability.Capability {
	return &ListChannelsCapability{newClient: defaultClientFactory}
}

func (c *ListChannelsCapability) Meta() capability.Meta {
	return capability.Meta{
		ID:          "list_channels",
		DisplayName: "List Channels",
		Description: "Lists the Slack channels visible to the connected workspace bot",
		ParamsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cursor": map[string]any{
					"type":        "string",
					"description": "Pagination cursor from a previous call",
				},
			},
			"additionalProperties": false,
		},
		ResultSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"channels":    map[string]any{"type": "array"},
				"next_cursor": map[string]any{"type": "string"},
			},
		},
		RequiredScopes: []string{"channels:read"},
		Risk:           capability.RiskLow,
	}
}

func (c *ListChannelsCapability) Execute(ctx context.Context, execCtx capability.ExecutionContext, params map[string]any) (any, error) {
	client := c.newClient(execCtx.Token.BearerToken())

	request := &slack.GetConversationsParameters{Limit: listChannelsPageSize}
	if cursor, ok := params["cursor"].(string); ok {
		request.Cursor = cursor
	}

	channels, nextCursor, err := client.GetConversationsContext(ctx, request)
	if err != nil {
		return nil, mapSlackError("list_channels", err)
	}

	listed := make([]map[string]any, 0, len(channels))
	for _, channel := range channels {
		listed = append(listed, map[string]any{
			"id":         channel.ID,
			"name":       channel.Name,
			"is_private": channel.IsPrivate,
		})
	}

	return map[string]any{
		"channels":    listed,
		"next_cursor": nextCursor,
	}, nil
}
