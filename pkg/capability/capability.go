// Package capability defines the contract every provider action satisfies: a
// declarative descriptor (schemas, scopes, risk) plus an executable function
// invoked with a per-call execution context.
package capability

import (
	"context"
	"log/slog"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

// RiskLevel classifies the blast radius of a capability for authorization
// review. It is part of the catalog export and never changes at runtime.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Meta is the immutable descriptor of a single callable action. ParamsSchema
// and ResultSchema are JSON Schema documents; RequiredScopes feed the
// provider-level scope mapping used for authorization decisions.
type Meta struct {
	ID             string         `json:"id"`
	DisplayName    string         `json:"display_name"`
	Description    string         `json:"description"`
	ParamsSchema   map[string]any `json:"params_schema,omitempty"`
	ResultSchema   map[string]any `json:"result_schema,omitempty"`
	RequiredScopes []string       `json:"required_scopes,omitempty"`
	Risk           RiskLevel      `json:"risk"`
}

// ExecutionContext is the per-invocation bundle of dependencies handed to a
// capability. It must never outlive the single execution it was built for.
type ExecutionContext struct {
	DB     persistence.Persistence
	OrgID  string
	UserID string

	// Token is the resolved credential for the (org, provider) pair, nil for
	// providers whose auth kind is none.
	Token *models.Token

	RetryCount int
	Logger     *slog.Logger
}

// Capability pairs a Meta with its executable. Implementations are created
// once at process start via a Factory and stored in the provider's dispatch
// table; Execute may be called concurrently and must not retain execCtx.
type Capability interface {
	Meta() Meta
	Execute(ctx context.Context, execCtx ExecutionContext, params map[string]any) (any, error)
}

// Factory produces a single Capability instance. Factories take no arguments
// so that the full catalog is constructible without any runtime state.
type Factory func() Capability
