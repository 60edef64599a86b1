// Package cmd provides common initialization for the gateway binaries.
package cmd

import (
	"log/slog"
	"os"

	"github.com/switchyardhq/switchyard/pkg/providers/clock"
	"github.com/switchyardhq/switchyard/pkg/providers/google"
	"github.com/switchyardhq/switchyard/pkg/providers/slack"
	"github.com/switchyardhq/switchyard/pkg/registry"
)

// NewRegistry builds the provider registry with every compiled-in provider.
// Provider secrets come from the environment; a provider with no configured
// secret is still registered so its catalog entry stays visible, its webhook
// simply refuses every request.
func NewRegistry(logger *slog.Logger) (*registry.Registry, error) {
	reg := registry.NewRegistry(logger)

	runtimes := []func() error{
		func() error { return reg.Register(clock.NewRuntime()) },
		func() error { return reg.Register(slack.NewRuntime(os.Getenv("SLACK_SIGNING_SECRET"))) },
		func() error {
			return reg.Register(google.NewRuntime(google.Config{
				WebhookSecret: os.Getenv("GOOGLE_WEBHOOK_SECRET"),
				CallbackURL:   os.Getenv("GOOGLE_WEBHOOK_CALLBACK_URL"),
			}))
		},
	}

	for _, register := range runtimes {
		if err := register(); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
