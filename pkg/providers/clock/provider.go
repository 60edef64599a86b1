// Package clock is the gateway-internal time provider: a no-auth capability
// for reading the current time and a cron trigger that turns periodic ticks
// into agent events according to each registration's schedule.
package clock

import (
	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/provider"
)

const ProviderID = "clock"

// NewRuntime builds the clock provider runtime.
func NewRuntime() *provider.Runtime {
	return provider.MustNewRuntime(
		provider.Metadata{
			ID:          ProviderID,
			DisplayName: "Clock",
			Description: "Gateway-internal time and scheduling provider",
			Kind:        provider.KindInternal,
			Auth:        provider.AuthNone,
		},
		map[string]capability.Factory{
			"current_time": NewCurrentTimeCapability,
		},
		nil,
		[]provider.Trigger{
			NewCronTrigger(),
		},
	)
}
