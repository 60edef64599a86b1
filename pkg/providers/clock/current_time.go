package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/switchyardhq/switchyard/pkg/capability"
)

// CurrentTimeCapability reports the gateway's current time, optionally
// converted to a requested IANA timezone.
type CurrentTimeCapability struct {
	now func() time.Time
}

// NewCurrentTimeCapability creates the capability instance for the dispatch table.
func NewCurrentTimeCapability() capability.Capability {
	return &CurrentTimeCapability{now: func() time.Time { return time.Now().UTC() }}
}

func (c *CurrentTimeCapability) Meta() capability.Meta {
	return capability.Meta{
		ID:          "current_time",
		DisplayName: "Current Time",
		Description: "Returns the current time, optionally in a given IANA timezone",
		ParamsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"timezone": map[string]any{
					"type":        "string",
					"description": "IANA timezone name, e.g. America/Sao_Paulo",
				},
			},
			"additionalProperties": false,
		},
		ResultSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"time":     map[string]any{"type": "string"},
				"timezone": map[string]any{"type": "string"},
				"unix":     map[string]any{"type": "integer"},
			},
		},
		Risk: capability.RiskLow,
	}
}

func (c *CurrentTimeCapability) Execute(_ context.Context, _ capability.ExecutionContext, params map[string]any) (any, error) {
	location := time.UTC

	if name, ok := params["timezone"].(string); ok && name != "" {
		loaded, err := time.LoadLocation(name)
		if err != nil {
			return nil, &capability.ValidationError{
				CapabilityID: "current_time",
				Causes:       []string{fmt.Sprintf("unknown timezone %q", name)},
			}
		}

		location = loaded
	}

	now := c.now().In(location)

	return map[string]any{
		"time":     now.Format(time.RFC3339),
		"timezone": location.String(),
		"unix":     now.Unix(),
	}, nil
}
