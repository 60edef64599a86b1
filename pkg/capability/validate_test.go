package capability

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringParamSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"channel": map[string]any{"type": "string"},
			"limit":   map[string]any{"type": "integer", "minimum": float64(1)},
		},
		"required":             []any{"channel"},
		"additionalProperties": false,
	}
}

func TestValidateParams_Valid(t *testing.T) {
	meta := Meta{ID: "send_message", ParamsSchema: stringParamSchema()}

	err := ValidateParams(meta, map[string]any{"channel": "C123", "limit": float64(10)})
	require.NoError(t, err)
}

func TestValidateParams_EmptySchemaAcceptsAnything(t *testing.T) {
	meta := Meta{ID: "current_time"}

	assert.NoError(t, ValidateParams(meta, nil))
	assert.NoError(t, ValidateParams(meta, map[string]any{"whatever": true}))
}

func TestValidateParams_CollectsEveryViolation(t *testing.T) {
	meta := Meta{ID: "send_message", ParamsSchema: stringParamSchema()}

	err := ValidateParams(meta, map[string]any{"limit": float64(0), "extra": "nope"})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "send_message", validationErr.CapabilityID)
	assert.GreaterOrEqual(t, len(validationErr.Causes), 2)
}

func TestValidateParams_NilParamsAgainstRequiredSchema(t *testing.T) {
	meta := Meta{ID: "send_message", ParamsSchema: stringParamSchema()}

	err := ValidateParams(meta, nil)
	assert.True(t, IsValidationError(err))
}

func TestErrorTaxonomyHelpers(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", &RateLimitedError{CapabilityID: "c", RetryAfter: time.Minute})

	assert.True(t, IsRateLimited(wrapped))
	assert.False(t, IsRateLimited(errors.New("other")))

	assert.True(t, IsTimeout(fmt.Errorf("x: %w", &TimeoutError{CapabilityID: "c", Timeout: time.Second})))
	assert.True(t, IsUpstreamError(fmt.Errorf("x: %w", &UpstreamError{CapabilityID: "c", Status: 502})))
	assert.True(t, IsValidationError(fmt.Errorf("x: %w", &ValidationError{CapabilityID: "c"})))

	assert.False(t, IsTimeout(nil))
	assert.False(t, IsUpstreamError(&RateLimitedError{}))
}
