package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/switchyardhq/switchyard/pkg/channels/gochannel"
	"github.com/switchyardhq/switchyard/pkg/channels/kafka"
	"github.com/switchyardhq/switchyard/pkg/eventbus"
)

// NewEventBus creates an event bus on the named channel. The gochannel bus
// is in-process only and meant for single-node and development deployments.
func NewEventBus(channel, serviceName string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch channel {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermillLogger, serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "gochannel":
		pub, sub, err := gochannel.CreateChannel(watermillLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gochannel pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus channel: %q", channel)
	}
}
