package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/eventbus"
	"github.com/switchyardhq/switchyard/pkg/events"
	"github.com/switchyardhq/switchyard/pkg/mocks"
	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
	"github.com/switchyardhq/switchyard/pkg/provider"
	"github.com/switchyardhq/switchyard/pkg/registry"
)

type publishedEvent struct {
	key   string
	event eventbus.Event
}

type recordingPublisher struct {
	published []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, key string, event eventbus.Event) error {
	p.published = append(p.published, publishedEvent{key: key, event: event})

	return nil
}

type fakeWebhook struct {
	id         string
	valid      bool
	triggerIDs []string
	reply      *provider.WebhookResponse
}

func (w *fakeWebhook) ID() string { return w.id }

func (w *fakeWebhook) ValidateRequest(_ *provider.WebhookRequest) bool { return w.valid }

func (w *fakeWebhook) TriggerIDs() []string { return w.triggerIDs }

func (w *fakeWebhook) Reply(_ *provider.WebhookRequest) *provider.WebhookResponse { return w.reply }

type fakeTrigger struct {
	id            string
	satisfies     func(payload map[string]any) bool
	registrations []*models.TriggerRegistration
	lookupErr     error
	createErr     error
	evaluated     int
}

func (t *fakeTrigger) ID() string          { return t.id }
func (t *fakeTrigger) Description() string { return "fake" }

func (t *fakeTrigger) EventSatisfies(payload map[string]any) bool {
	if t.satisfies == nil {
		return true
	}

	return t.satisfies(payload)
}

func (t *fakeTrigger) Registrations(_ context.Context, _ persistence.Persistence, _ map[string]any) ([]*models.TriggerRegistration, error) {
	return t.registrations, t.lookupErr
}

func (t *fakeTrigger) CreateEvents(payload map[string]any, registration *models.TriggerRegistration) ([]eventbus.Event, error) {
	t.evaluated++

	if t.createErr != nil {
		return nil, t.createErr
	}

	return []eventbus.Event{events.NewTriggerFired("fakeprov", registration, map[string]any{"trigger": t.id})}, nil
}

func registration(id string) *models.TriggerRegistration {
	return models.NewTriggerRegistration(id, "org-1", "agent-1", "fakeprov", "t")
}

func testPipeline(t *testing.T, bus eventbus.EventPublisher, hook provider.Webhook, triggers ...provider.Trigger) *Pipeline {
	t.Helper()

	var webhooks []provider.Webhook
	if hook != nil {
		webhooks = []provider.Webhook{hook}
	}

	runtime := provider.MustNewRuntime(provider.Metadata{
		ID:   "fakeprov",
		Kind: provider.KindExternal,
		Auth: provider.AuthNone,
	}, map[string]capability.Factory{}, webhooks, triggers)

	reg := registry.NewRegistry(slog.Default())
	require.NoError(t, reg.Register(runtime))

	return NewPipeline(reg, nil, bus, slog.Default())
}

func request(body string) *provider.WebhookRequest {
	return &provider.WebhookRequest{
		Method:  http.MethodPost,
		Path:    "/webhooks/fakeprov",
		Headers: http.Header{"X-Test": []string{"yes"}},
		Body:    []byte(body),
	}
}

func TestPipeline_UnknownProviderAndWebhook(t *testing.T) {
	bus := &recordingPublisher{}
	p := testPipeline(t, bus, &fakeWebhook{id: "hook", valid: true})

	response := p.Handle(context.Background(), "ghost", "", request("{}"))
	assert.Equal(t, http.StatusNotFound, response.Status)

	response = p.Handle(context.Background(), "fakeprov", "other", request("{}"))
	assert.Equal(t, http.StatusNotFound, response.Status)

	assert.Empty(t, bus.published)
}

func TestPipeline_InvalidRequestHasZeroSideEffects(t *testing.T) {
	trigger := &fakeTrigger{id: "t", registrations: []*models.TriggerRegistration{registration("reg-1")}}
	bus := &recordingPublisher{}
	p := testPipeline(t, bus, &fakeWebhook{id: "hook", valid: false, triggerIDs: []string{"t"}}, trigger)

	// Same rejected request twice: still no trigger evaluation, no events.
	for range 2 {
		response := p.Handle(context.Background(), "fakeprov", "hook", request(`{"x":1}`))
		assert.Equal(t, http.StatusUnauthorized, response.Status)
	}

	assert.Zero(t, trigger.evaluated)
	assert.Empty(t, bus.published)
}

func TestPipeline_DisjointTriggersEvaluateIndependently(t *testing.T) {
	matching := &fakeTrigger{
		id:            "match",
		satisfies:     func(payload map[string]any) bool { return payload["kind"] == "a" },
		registrations: []*models.TriggerRegistration{registration("reg-1"), registration("reg-2")},
	}
	other := &fakeTrigger{
		id:        "other",
		satisfies: func(payload map[string]any) bool { return payload["kind"] == "b" },
	}

	bus := &recordingPublisher{}
	p := testPipeline(t, bus, &fakeWebhook{id: "hook", valid: true, triggerIDs: []string{"match", "other"}}, matching, other)

	response := p.Handle(context.Background(), "fakeprov", "hook", request(`{"kind":"a"}`))

	assert.Equal(t, http.StatusOK, response.Status)
	assert.Equal(t, "ok", string(response.Body))
	require.Len(t, bus.published, 2)
	assert.Equal(t, 2, matching.evaluated)
	assert.Zero(t, other.evaluated)
}

func TestPipeline_EventsPublishInEvaluationOrder(t *testing.T) {
	first := &fakeTrigger{id: "first", registrations: []*models.TriggerRegistration{registration("reg-a")}}
	second := &fakeTrigger{id: "second", registrations: []*models.TriggerRegistration{registration("reg-b")}}

	bus := &recordingPublisher{}
	p := testPipeline(t, bus, &fakeWebhook{id: "hook", valid: true, triggerIDs: []string{"first", "second"}}, first, second)

	response := p.Handle(context.Background(), "fakeprov", "hook", request("{}"))
	require.Equal(t, http.StatusOK, response.Status)

	require.Len(t, bus.published, 2)
	assert.Equal(t, "reg-a", bus.published[0].key)
	assert.Equal(t, "reg-b", bus.published[1].key)
}

func TestPipeline_EmptyCreateEventsIsRoutine(t *testing.T) {
	silent := &fakeTrigger{id: "t", registrations: nil}
	bus := &recordingPublisher{}
	p := testPipeline(t, bus, &fakeWebhook{id: "hook", valid: true, triggerIDs: []string{"t"}}, silent)

	response := p.Handle(context.Background(), "fakeprov", "hook", request("{}"))

	assert.Equal(t, http.StatusOK, response.Status)
	assert.Empty(t, bus.published)
}

func TestPipeline_PublishFailureReturnsServerError(t *testing.T) {
	trigger := &fakeTrigger{id: "t", registrations: []*models.TriggerRegistration{registration("reg-1"), registration("reg-2")}}

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, "reg-1", mock.Anything).Return(nil)
	bus.On("Publish", mock.Anything, "reg-2", mock.Anything).Return(errors.New("broker down"))

	p := testPipeline(t, bus, &fakeWebhook{id: "hook", valid: true, triggerIDs: []string{"t"}}, trigger)

	response := p.Handle(context.Background(), "fakeprov", "hook", request("{}"))

	assert.Equal(t, http.StatusInternalServerError, response.Status)
	assert.Empty(t, response.Body, "internal detail must not reach the provider")
	bus.AssertExpectations(t)
}

func TestPipeline_CreateEventsErrorReturnsServerError(t *testing.T) {
	trigger := &fakeTrigger{
		id:            "t",
		registrations: []*models.TriggerRegistration{registration("reg-1")},
		createErr:     errors.New("bad payload"),
	}

	bus := &recordingPublisher{}
	p := testPipeline(t, bus, &fakeWebhook{id: "hook", valid: true, triggerIDs: []string{"t"}}, trigger)

	response := p.Handle(context.Background(), "fakeprov", "hook", request("{}"))

	assert.Equal(t, http.StatusInternalServerError, response.Status)
	assert.Empty(t, bus.published)
}

func TestPipeline_ReplierOverridesDefaultResponse(t *testing.T) {
	challenge := &provider.WebhookResponse{
		Status:      http.StatusOK,
		ContentType: "application/json",
		Body:        []byte(`{"challenge":"abc"}`),
	}

	bus := &recordingPublisher{}
	p := testPipeline(t, bus, &fakeWebhook{id: "hook", valid: true, reply: challenge})

	response := p.Handle(context.Background(), "fakeprov", "hook", request(`{"type":"url_verification"}`))

	assert.Equal(t, http.StatusOK, response.Status)
	assert.JSONEq(t, `{"challenge":"abc"}`, string(response.Body))
}

func TestPipeline_HeadersExposedToTriggers(t *testing.T) {
	var seen map[string]any

	trigger := &fakeTrigger{
		id: "t",
		satisfies: func(payload map[string]any) bool {
			seen, _ = payload["_headers"].(map[string]any)

			return false
		},
	}

	bus := &recordingPublisher{}
	p := testPipeline(t, bus, &fakeWebhook{id: "hook", valid: true, triggerIDs: []string{"t"}}, trigger)

	p.Handle(context.Background(), "fakeprov", "hook", request("{}"))

	require.NotNil(t, seen)
	assert.Equal(t, "yes", seen["X-Test"])
}
