// Package credentials resolves live credential material for an (org,
// provider) pair from the connection/token subsystem. The gateway never
// refreshes or decrypts tokens itself; it only looks up the single active
// payload and hands it to capabilities opaquely.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

// ErrCredentialMissing indicates no active credential exists for the (org,
// provider) pair. Distinct from a provider-side 401: the remediation is to
// connect the integration, not to re-authenticate an existing connection.
var ErrCredentialMissing = errors.New("no active credential for organization and provider")

// IsCredentialMissing checks whether err indicates a missing credential.
func IsCredentialMissing(err error) bool {
	return errors.Is(err, ErrCredentialMissing)
}

// Resolver hands back the active token for an organization's provider link.
type Resolver interface {
	ActiveToken(ctx context.Context, orgID, providerID string) (*models.Token, error)
}

// PersistenceResolver resolves tokens straight from the data store.
type PersistenceResolver struct {
	db persistence.Persistence
}

func NewPersistenceResolver(db persistence.Persistence) *PersistenceResolver {
	return &PersistenceResolver{db: db}
}

func (r *PersistenceResolver) ActiveToken(ctx context.Context, orgID, providerID string) (*models.Token, error) {
	token, err := r.db.ActiveToken(ctx, orgID, providerID)
	if err != nil {
		if persistence.IsTokenNotFound(err) {
			return nil, fmt.Errorf("org %s provider %s: %w", orgID, providerID, ErrCredentialMissing)
		}

		return nil, fmt.Errorf("failed to resolve token for org %s provider %s: %w", orgID, providerID, err)
	}

	return token, nil
}
