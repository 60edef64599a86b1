// Package models defines the persisted entities shared across the gateway:
// trigger registrations, provider connections and their resolved tokens.
package models

import "time"

// Connection is an organization's authorized link to a provider. Token
// material and lifecycle belong to the connection management subsystem; the
// gateway only reads the external account metadata (workspace ids, account
// emails, webhook secrets) that providers need during subscription setup.
type Connection struct {
	ID         string `json:"id"          validate:"required"`
	OrgID      string `json:"org_id"      validate:"required"`
	ProviderID string `json:"provider_id" validate:"required"`

	ExternalAccountMetadata map[string]any `json:"external_account_metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
