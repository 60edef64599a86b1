package provider

import (
	"encoding/json"
	"net/http"
)

// WebhookRequest is the transport-neutral view of an inbound provider
// webhook call handed to validation and trigger evaluation.
type WebhookRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte

	payload map[string]any
	parsed  bool
}

// Payload returns the request body decoded as a JSON object. Non-JSON or
// non-object bodies yield an empty map; header-only webhook formats (e.g.
// Google push notifications) are served by Headers instead.
func (r *WebhookRequest) Payload() map[string]any {
	if r.parsed {
		return r.payload
	}

	r.parsed = true
	r.payload = map[string]any{}

	if len(r.Body) > 0 {
		_ = json.Unmarshal(r.Body, &r.payload)
	}

	return r.payload
}

// WebhookResponse is what the gateway replies to the provider. Bodies never
// carry internal error detail; many providers disable a subscription after
// repeated non-200 replies.
type WebhookResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// OKResponse is the default webhook reply.
func OKResponse() *WebhookResponse {
	return &WebhookResponse{Status: http.StatusOK, ContentType: "text/plain", Body: []byte("ok")}
}

// Webhook is a provider's inbound HTTP-event adapter. ValidateRequest must
// establish authenticity before any trigger evaluation; TriggerIDs lists the
// triggers served by this endpoint in declaration order, which fixes the
// within-request event ordering.
type Webhook interface {
	ID() string
	ValidateRequest(request *WebhookRequest) bool
	TriggerIDs() []string
}

// Replier is implemented by webhooks that need a non-default reply, e.g. an
// echoed verification challenge. Called only after a request validates and
// the pipeline completes.
type Replier interface {
	Reply(request *WebhookRequest) *WebhookResponse
}
