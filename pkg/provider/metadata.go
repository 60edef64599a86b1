// Package provider models an external or internal system as a runtime: a
// fixed dispatch table of capabilities, a derived scope mapping, and the
// webhooks and triggers the system pushes events through.
package provider

// Kind distinguishes systems the gateway calls out to from gateway-internal
// ones (e.g. the cron provider).
type Kind string

const (
	KindInternal Kind = "internal"
	KindExternal Kind = "external"
)

// AuthKind is the credential model a provider requires. The dispatcher only
// resolves tokens for providers whose auth kind is not AuthNone.
type AuthKind string

const (
	AuthNone   AuthKind = "none"
	AuthOAuth2 AuthKind = "oauth2"
	AuthAPIKey AuthKind = "api_key"
	AuthBasic  AuthKind = "basic"
)

// Metadata identifies a provider in the catalog.
type Metadata struct {
	ID          string   `json:"id"           validate:"required"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description,omitempty"`
	Kind        Kind     `json:"kind"`
	Auth        AuthKind `json:"auth"`
}

// RequiresAuth reports whether invocations against this provider need a
// resolved credential.
func (m Metadata) RequiresAuth() bool {
	return m.Auth != AuthNone && m.Auth != ""
}
