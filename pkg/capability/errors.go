package capability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError reports parameters that failed schema validation. Raised
// before any network call so malformed input never reaches a provider.
type ValidationError struct {
	CapabilityID string
	Causes       []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameters for capability %s: %s", e.CapabilityID, strings.Join(e.Causes, "; "))
}

// RateLimitedError indicates the provider signaled a rate limit (HTTP 429).
// RetryAfter carries the provider's hint; the gateway never retries on its
// own, retry policy belongs to the caller.
type RateLimitedError struct {
	CapabilityID string
	RetryAfter   time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("capability %s rate limited by provider, retry after %s", e.CapabilityID, e.RetryAfter)
}

// TimeoutError indicates the provider did not respond within the bounded
// execution timeout.
type TimeoutError struct {
	CapabilityID string
	Timeout      time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("capability %s timed out after %s waiting for provider", e.CapabilityID, e.Timeout)
}

// UpstreamError indicates the provider returned a non-rate-limit failure.
type UpstreamError struct {
	CapabilityID string
	Status       int
	Message      string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("capability %s failed upstream with status %d: %s", e.CapabilityID, e.Status, e.Message)
	}

	return fmt.Sprintf("capability %s failed upstream: %s", e.CapabilityID, e.Message)
}

// IsValidationError reports whether err is a parameter validation failure.
func IsValidationError(err error) bool {
	var target *ValidationError

	return errors.As(err, &target)
}

// IsRateLimited reports whether err carries a provider rate-limit signal.
func IsRateLimited(err error) bool {
	var target *RateLimitedError

	return errors.As(err, &target)
}

// IsTimeout reports whether err is a bounded-execution timeout.
func IsTimeout(err error) bool {
	var target *TimeoutError

	return errors.As(err, &target)
}

// IsUpstreamError reports whether err is a non-rate-limit provider failure.
func IsUpstreamError(err error) bool {
	var target *UpstreamError

	return errors.As(err, &target)
}
