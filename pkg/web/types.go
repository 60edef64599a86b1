// Package web provides HTTP request and response types for the gateway API.
package web

import (
	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/provider"
	"github.com/switchyardhq/switchyard/pkg/registry"
)

// InvokeRequest represents the request body for a capability invocation.
type InvokeRequest struct {
	ProviderID   string         `json:"provider_id"   validate:"required"`
	CapabilityID string         `json:"capability_id" validate:"required"`
	OrgID        string         `json:"org_id"        validate:"required"`
	UserID       string         `json:"user_id"       validate:"required"`
	Params       map[string]any `json:"params"`
}

// InvokeResponse wraps a successful capability result.
type InvokeResponse struct {
	Result any `json:"result"`
}

// ProviderResponse is the catalog view of one provider runtime.
type ProviderResponse struct {
	ID           string              `json:"id"`
	DisplayName  string              `json:"display_name"`
	Description  string              `json:"description,omitempty"`
	Kind         string              `json:"kind"`
	Auth         string              `json:"auth"`
	ScopeMapping map[string][]string `json:"scope_mapping,omitempty"`
}

// CatalogEntryResponse pairs a provider with its capability descriptors.
type CatalogEntryResponse struct {
	Provider     ProviderResponse  `json:"provider"`
	Capabilities []capability.Meta `json:"capabilities"`
}

// TransformProviderResponse flattens a runtime into its catalog view. The
// scope mapping is derived from the dispatch table on every call.
func TransformProviderResponse(runtime *provider.Runtime) ProviderResponse {
	return buildProviderResponse(runtime.Metadata(), runtime.ScopeMapping())
}

func buildProviderResponse(metadata provider.Metadata, scopeMapping map[string][]string) ProviderResponse {
	return ProviderResponse{
		ID:           metadata.ID,
		DisplayName:  metadata.DisplayName,
		Description:  metadata.Description,
		Kind:         string(metadata.Kind),
		Auth:         string(metadata.Auth),
		ScopeMapping: scopeMapping,
	}
}

// TransformCatalogResponse converts registry catalog entries into their API
// representation.
func TransformCatalogResponse(entries []registry.CatalogEntry) []CatalogEntryResponse {
	responses := make([]CatalogEntryResponse, 0, len(entries))

	for _, entry := range entries {
		responses = append(responses, CatalogEntryResponse{
			Provider:     buildProviderResponse(entry.Provider, entry.ScopeMapping),
			Capabilities: entry.Capabilities,
		})
	}

	return responses
}
