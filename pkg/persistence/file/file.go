// Package file provides file-based persistence for trigger registrations,
// connections and tokens. Each row is one JSON document, which keeps local
// development and tests free of external dependencies.
package file

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root             string
	registrationRepo *RegistrationRepository
	connectionRepo   *ConnectionRepository
	tokenRepo        *TokenRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:             cleanRoot,
		registrationRepo: NewRegistrationRepository(cleanRoot),
		connectionRepo:   NewConnectionRepository(cleanRoot),
		tokenRepo:        NewTokenRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) TriggerRegistrationByID(ctx context.Context, id string) (*models.TriggerRegistration, error) {
	return fp.registrationRepo.GetByID(ctx, id)
}

func (fp *Persistence) SaveTriggerRegistration(ctx context.Context, registration *models.TriggerRegistration) error {
	return fp.registrationRepo.Save(ctx, registration)
}

func (fp *Persistence) TriggerRegistrationsByTrigger(ctx context.Context, providerID, triggerID string) ([]*models.TriggerRegistration, error) {
	return fp.registrationRepo.GetByTrigger(ctx, providerID, triggerID)
}

func (fp *Persistence) ExpiringTriggerRegistrations(ctx context.Context, before time.Time) ([]*models.TriggerRegistration, error) {
	return fp.registrationRepo.GetExpiring(ctx, before)
}

func (fp *Persistence) ConnectionByID(ctx context.Context, id string) (*models.Connection, error) {
	return fp.connectionRepo.GetByID(ctx, id)
}

func (fp *Persistence) ActiveToken(ctx context.Context, orgID, providerID string) (*models.Token, error) {
	return fp.tokenRepo.GetActive(ctx, orgID, providerID)
}

// SaveConnection stores a connection row; seeding helper for local setups and tests.
func (fp *Persistence) SaveConnection(ctx context.Context, connection *models.Connection) error {
	return fp.connectionRepo.Save(ctx, connection)
}

// SaveToken stores a token row; seeding helper for local setups and tests.
func (fp *Persistence) SaveToken(ctx context.Context, token *models.Token) error {
	return fp.tokenRepo.Save(ctx, token)
}
