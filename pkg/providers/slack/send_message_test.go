package slack

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/models"
)

type fakeSlackClient struct {
	token string

	postChannel string
	postErr     error

	channels []slackapi.Channel
	cursor   string
	listErr  error
}

func (c *fakeSlackClient) PostMessageContext(_ context.Context, channelID string, _ ...slackapi.MsgOption) (string, string, error) {
	if c.postErr != nil {
		return "", "", c.postErr
	}

	c.postChannel = channelID

	return channelID, "1700000000.000100", nil
}

func (c *fakeSlackClient) GetConversationsContext(_ context.Context, _ *slackapi.GetConversationsParameters) ([]slackapi.Channel, string, error) {
	return c.channels, c.cursor, c.listErr
}

func execContext() capability.ExecutionContext {
	return capability.ExecutionContext{
		OrgID: "org-1",
		Token: &models.Token{Payload: map[string]any{"access_token": "xoxb-test"}},
	}
}

func TestSendMessage_Success(t *testing.T) {
	client := &fakeSlackClient{}
	c := &SendMessageCapability{newClient: func(token string) slackClient {
		client.token = token

		return client
	}}

	result, err := c.Execute(context.Background(), execContext(), map[string]any{
		"channel": "C123",
		"text":    "deploy finished",
	})

	require.NoError(t, err)
	assert.Equal(t, "xoxb-test", client.token, "client must use the resolved bot token")

	resolved := result.(map[string]any)
	assert.Equal(t, "C123", resolved["channel"])
	assert.NotEmpty(t, resolved["ts"])
}

func TestSendMessage_RateLimited(t *testing.T) {
	client := &fakeSlackClient{postErr: &slackapi.RateLimitedError{RetryAfter: 30 * time.Second}}
	c := &SendMessageCapability{newClient: func(string) slackClient { return client }}

	_, err := c.Execute(context.Background(), execContext(), map[string]any{
		"channel": "C123",
		"text":    "x",
	})

	require.Error(t, err)

	var rateLimited *capability.RateLimitedError
	require.ErrorAs(t, err, &rateLimited)
	assert.Equal(t, 30*time.Second, rateLimited.RetryAfter)
}

func TestSendMessage_UpstreamStatusError(t *testing.T) {
	client := &fakeSlackClient{postErr: slackapi.StatusCodeError{Code: http.StatusServiceUnavailable, Status: "503"}}
	c := &SendMessageCapability{newClient: func(string) slackClient { return client }}

	_, err := c.Execute(context.Background(), execContext(), map[string]any{
		"channel": "C123",
		"text":    "x",
	})

	var upstream *capability.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.Status)
}

func TestSendMessage_GenericErrorIsUpstream(t *testing.T) {
	client := &fakeSlackClient{postErr: errors.New("channel_not_found")}
	c := &SendMessageCapability{newClient: func(string) slackClient { return client }}

	_, err := c.Execute(context.Background(), execContext(), map[string]any{
		"channel": "C123",
		"text":    "x",
	})

	assert.True(t, capability.IsUpstreamError(err))
}

func TestListChannels(t *testing.T) {
	client := &fakeSlackClient{
		channels: []slackapi.Channel{{}, {}},
		cursor:   "next-page",
	}
	c := &ListChannelsCapability{newClient: func(string) slackClient { return client }}

	result, err := c.Execute(context.Background(), execContext(), map[string]any{})
	require.NoError(t, err)

	resolved := result.(map[string]any)
	assert.Equal(t, "next-page", resolved["next_cursor"])
	assert.Len(t, resolved["channels"], 2)
}

func TestSlackRuntime_ScopeMapping(t *testing.T) {
	runtime := NewRuntime("secret")

	mapping := runtime.ScopeMapping()
	assert.Equal(t, []string{"chat:write"}, mapping["send_message"])
	assert.Equal(t, []string{"channels:read"}, mapping["list_channels"])
}
