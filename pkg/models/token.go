package models

import "time"

// Token is the resolved credential material for an (org, provider) pair. The
// gateway treats the payload as opaque and hands it to capabilities unchanged;
// refresh and encryption are the token service's concern.
type Token struct {
	ID           string `json:"id"            validate:"required"`
	OrgID        string `json:"org_id"        validate:"required"`
	ProviderID   string `json:"provider_id"   validate:"required"`
	ConnectionID string `json:"connection_id"`

	// Payload is the opaque credential material, e.g. {"access_token": "..."}.
	Payload map[string]any `json:"payload"`

	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// BearerToken extracts the access token string from the payload, empty when
// the payload carries none.
func (t *Token) BearerToken() string {
	if t == nil || t.Payload == nil {
		return ""
	}

	if v, ok := t.Payload["access_token"].(string); ok {
		return v
	}

	return ""
}
