package provider

import "errors"

// ErrCapabilityNotImplemented indicates the provider does not expose the
// requested capability. A routine outcome when a caller asks for an action a
// provider does not support; distinguishable from transport failures.
var ErrCapabilityNotImplemented = errors.New("capability not implemented")

// ErrTriggerNotFound indicates the provider declares no trigger with the
// requested id.
var ErrTriggerNotFound = errors.New("trigger not found")

// ErrWebhookNotFound indicates the provider declares no webhook with the
// requested id.
var ErrWebhookNotFound = errors.New("webhook not found")

// IsCapabilityNotImplemented checks whether err indicates a missing capability.
func IsCapabilityNotImplemented(err error) bool {
	return errors.Is(err, ErrCapabilityNotImplemented)
}
