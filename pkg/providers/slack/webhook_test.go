package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyardhq/switchyard/pkg/provider"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func signedRequest(t *testing.T, secret, body string) *provider.WebhookRequest {
	t.Helper()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	mac := hmac.New(sha256.New, []byte(secret))
	_, err := fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("X-Slack-Request-Timestamp", timestamp)
	headers.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))

	return &provider.WebhookRequest{
		Method:  http.MethodPost,
		Path:    "/webhooks/slack",
		Headers: headers,
		Body:    []byte(body),
	}
}

func TestEventsWebhook_ValidSignature(t *testing.T) {
	hook := NewEventsWebhook(testSigningSecret)

	request := signedRequest(t, testSigningSecret, `{"type":"event_callback"}`)
	assert.True(t, hook.ValidateRequest(request))
}

func TestEventsWebhook_WrongSecret(t *testing.T) {
	hook := NewEventsWebhook(testSigningSecret)

	request := signedRequest(t, "some-other-secret", `{"type":"event_callback"}`)
	assert.False(t, hook.ValidateRequest(request))
}

func TestEventsWebhook_TamperedBody(t *testing.T) {
	hook := NewEventsWebhook(testSigningSecret)

	request := signedRequest(t, testSigningSecret, `{"type":"event_callback"}`)
	request.Body = []byte(`{"type":"event_callback","injected":true}`)

	assert.False(t, hook.ValidateRequest(request))
}

func TestEventsWebhook_MissingHeaders(t *testing.T) {
	hook := NewEventsWebhook(testSigningSecret)

	request := &provider.WebhookRequest{
		Method:  http.MethodPost,
		Headers: http.Header{},
		Body:    []byte("{}"),
	}

	assert.False(t, hook.ValidateRequest(request))
}

func TestEventsWebhook_ChallengeReply(t *testing.T) {
	hook := NewEventsWebhook(testSigningSecret)

	request := signedRequest(t, testSigningSecret, `{"type":"url_verification","challenge":"Xy12AbC"}`)

	response := hook.Reply(request)
	require.NotNil(t, response)
	assert.Equal(t, http.StatusOK, response.Status)
	assert.JSONEq(t, `{"challenge":"Xy12AbC"}`, string(response.Body))
}

func TestEventsWebhook_NoReplyForRegularEvents(t *testing.T) {
	hook := NewEventsWebhook(testSigningSecret)

	request := signedRequest(t, testSigningSecret, `{"type":"event_callback"}`)
	assert.Nil(t, hook.Reply(request))
}

func TestEventsWebhook_TriggerOrder(t *testing.T) {
	hook := NewEventsWebhook(testSigningSecret)

	assert.Equal(t, []string{MessagePostedTriggerID, ReactionAddedTriggerID}, hook.TriggerIDs())
}
