package provider

import (
	"fmt"
	"sort"

	"github.com/switchyardhq/switchyard/pkg/capability"
)

// Runtime is one provider's long-lived runtime state: metadata, the
// capability dispatch table, the scope mapping derived from it, and the
// provider's webhooks and triggers. Constructed once at process start and
// never mutated afterwards.
type Runtime struct {
	metadata      Metadata
	dispatchTable map[string]capability.Capability
	webhooks      []Webhook
	triggers      map[string]Trigger
	triggerOrder  []string
}

// NewRuntime builds a provider runtime. Each capability factory is invoked
// exactly once; duplicate capability or trigger ids are construction errors
// since they would make dispatch ambiguous.
func NewRuntime(metadata Metadata, factories map[string]capability.Factory, webhooks []Webhook, triggers []Trigger) (*Runtime, error) {
	runtime := &Runtime{
		metadata:      metadata,
		dispatchTable: make(map[string]capability.Capability, len(factories)),
		webhooks:      webhooks,
		triggers:      make(map[string]Trigger, len(triggers)),
		triggerOrder:  make([]string, 0, len(triggers)),
	}

	for capabilityID, factory := range factories {
		built := factory()
		if built.Meta().ID != capabilityID {
			return nil, fmt.Errorf("provider %s: capability registered as %q reports id %q", metadata.ID, capabilityID, built.Meta().ID)
		}

		runtime.dispatchTable[capabilityID] = built
	}

	for _, trigger := range triggers {
		if _, exists := runtime.triggers[trigger.ID()]; exists {
			return nil, fmt.Errorf("provider %s: duplicate trigger id %q", metadata.ID, trigger.ID())
		}

		runtime.triggers[trigger.ID()] = trigger
		runtime.triggerOrder = append(runtime.triggerOrder, trigger.ID())
	}

	return runtime, nil
}

// MustNewRuntime is the startup variant of NewRuntime; the provider set is
// compiled in, so a construction failure is a programming error.
func MustNewRuntime(metadata Metadata, factories map[string]capability.Factory, webhooks []Webhook, triggers []Trigger) *Runtime {
	runtime, err := NewRuntime(metadata, factories, webhooks, triggers)
	if err != nil {
		panic(err)
	}

	return runtime
}

// Metadata returns the provider's catalog identity.
func (r *Runtime) Metadata() Metadata {
	return r.metadata
}

// Capability resolves an executable capability by id.
func (r *Runtime) Capability(id string) (capability.Capability, error) {
	built, ok := r.dispatchTable[id]
	if !ok {
		return nil, fmt.Errorf("provider %s has no capability %q: %w", r.metadata.ID, id, ErrCapabilityNotImplemented)
	}

	return built, nil
}

// Capabilities returns descriptor metadata only, sorted by id. The
// executables stay private to the runtime.
func (r *Runtime) Capabilities() []capability.Meta {
	metas := make([]capability.Meta, 0, len(r.dispatchTable))
	for _, built := range r.dispatchTable {
		metas = append(metas, built.Meta())
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })

	return metas
}

// ScopeMapping computes capability id → required scopes from the dispatch
// table. It is derived on every call rather than stored, so it can never
// drift from the capabilities' own declarations.
func (r *Runtime) ScopeMapping() map[string][]string {
	mapping := make(map[string][]string, len(r.dispatchTable))
	for id, built := range r.dispatchTable {
		scopes := built.Meta().RequiredScopes
		mapping[id] = append([]string(nil), scopes...)
	}

	return mapping
}

// Trigger resolves a trigger by id.
func (r *Runtime) Trigger(id string) (Trigger, error) {
	trigger, ok := r.triggers[id]
	if !ok {
		return nil, fmt.Errorf("provider %s has no trigger %q: %w", r.metadata.ID, id, ErrTriggerNotFound)
	}

	return trigger, nil
}

// Triggers returns the provider's triggers in declaration order.
func (r *Runtime) Triggers() []Trigger {
	triggers := make([]Trigger, 0, len(r.triggerOrder))
	for _, id := range r.triggerOrder {
		triggers = append(triggers, r.triggers[id])
	}

	return triggers
}

// Webhooks returns the provider's webhooks in declaration order.
func (r *Runtime) Webhooks() []Webhook {
	return r.webhooks
}

// Webhook resolves a webhook by id. An empty id resolves when the provider
// declares exactly one webhook.
func (r *Runtime) Webhook(id string) (Webhook, error) {
	if id == "" && len(r.webhooks) == 1 {
		return r.webhooks[0], nil
	}

	for _, webhook := range r.webhooks {
		if webhook.ID() == id {
			return webhook, nil
		}
	}

	return nil, fmt.Errorf("provider %s has no webhook %q: %w", r.metadata.ID, id, ErrWebhookNotFound)
}
