// Package postgresql provides PostgreSQL persistence for trigger
// registrations, connections and tokens.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db               *sql.DB
	logger           *slog.Logger
	registrationRepo *RegistrationRepository
	connectionRepo   *ConnectionRepository
	tokenRepo        *TokenRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs pending
// schema migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:               database,
		logger:           logger,
		registrationRepo: NewRegistrationRepository(database, logger),
		connectionRepo:   NewConnectionRepository(database, logger),
		tokenRepo:        NewTokenRepository(database, logger),
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) TriggerRegistrationByID(ctx context.Context, id string) (*models.TriggerRegistration, error) {
	return p.registrationRepo.GetByID(ctx, id)
}

func (p *Persistence) SaveTriggerRegistration(ctx context.Context, registration *models.TriggerRegistration) error {
	return p.registrationRepo.Save(ctx, registration)
}

func (p *Persistence) TriggerRegistrationsByTrigger(ctx context.Context, providerID, triggerID string) ([]*models.TriggerRegistration, error) {
	return p.registrationRepo.GetByTrigger(ctx, providerID, triggerID)
}

func (p *Persistence) ExpiringTriggerRegistrations(ctx context.Context, before time.Time) ([]*models.TriggerRegistration, error) {
	return p.registrationRepo.GetExpiring(ctx, before)
}

func (p *Persistence) ConnectionByID(ctx context.Context, id string) (*models.Connection, error) {
	return p.connectionRepo.GetByID(ctx, id)
}

func (p *Persistence) ActiveToken(ctx context.Context, orgID, providerID string) (*models.Token, error) {
	return p.tokenRepo.GetActive(ctx, orgID, providerID)
}
