package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

// RegistrationRepository handles trigger registration database operations.
type RegistrationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRegistrationRepository creates a new registration repository.
func NewRegistrationRepository(db *sql.DB, logger *slog.Logger) *RegistrationRepository {
	return &RegistrationRepository{db: db, logger: logger}
}

const registrationColumns = `id, org_id, agent_id, provider_id, trigger_id, connection_id,
	params, subscription_metadata, expires_at, created_at, updated_at`

// GetByID retrieves a registration by its identifier.
func (rr *RegistrationRepository) GetByID(ctx context.Context, id string) (*models.TriggerRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM trigger_registrations WHERE id = $1`

	registration, err := scanRegistration(rr.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRegistrationError("GetByID", id, persistence.ErrRegistrationNotFound)
		}

		return nil, persistence.NewRegistrationError("GetByID", id, err)
	}

	return registration, nil
}

// Save upserts a registration keyed by id. Updates are whole-row writes; the
// renewal path accepts last-writer-wins on concurrent saves.
func (rr *RegistrationRepository) Save(ctx context.Context, registration *models.TriggerRegistration) error {
	if err := registration.Validate(); err != nil {
		return persistence.NewRegistrationError("Save", registration.ID, err)
	}

	params, err := json.Marshal(orEmpty(registration.Params))
	if err != nil {
		return persistence.NewRegistrationError("Save", registration.ID, err)
	}

	metadata, err := json.Marshal(orEmpty(registration.SubscriptionMetadata))
	if err != nil {
		return persistence.NewRegistrationError("Save", registration.ID, err)
	}

	query := `
		INSERT INTO trigger_registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			org_id = EXCLUDED.org_id,
			agent_id = EXCLUDED.agent_id,
			provider_id = EXCLUDED.provider_id,
			trigger_id = EXCLUDED.trigger_id,
			connection_id = EXCLUDED.connection_id,
			params = EXCLUDED.params,
			subscription_metadata = EXCLUDED.subscription_metadata,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err = rr.db.ExecContext(ctx, query,
		registration.ID,
		registration.OrgID,
		registration.AgentID,
		registration.ProviderID,
		registration.TriggerID,
		registration.ConnectionID,
		params,
		metadata,
		registration.ExpiresAt,
		registration.CreatedAt,
		registration.UpdatedAt,
	)
	if err != nil {
		return persistence.NewRegistrationError("Save", registration.ID, err)
	}

	return nil
}

// GetByTrigger retrieves registrations bound to a provider trigger, ordered
// by creation time for deterministic fan-out.
func (rr *RegistrationRepository) GetByTrigger(ctx context.Context, providerID, triggerID string) ([]*models.TriggerRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM trigger_registrations
		WHERE provider_id = $1 AND trigger_id = $2
		ORDER BY created_at, id
	`

	return rr.queryRegistrations(ctx, query, providerID, triggerID)
}

// GetExpiring retrieves registrations whose subscription expiry falls before
// the given instant.
func (rr *RegistrationRepository) GetExpiring(ctx context.Context, before time.Time) ([]*models.TriggerRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM trigger_registrations
		WHERE expires_at IS NOT NULL AND expires_at < $1
		ORDER BY created_at, id
	`

	return rr.queryRegistrations(ctx, query, before)
}

func (rr *RegistrationRepository) queryRegistrations(ctx context.Context, query string, args ...any) ([]*models.TriggerRegistration, error) {
	rows, err := rr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trigger registrations: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			rr.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	registrations := make([]*models.TriggerRegistration, 0)

	for rows.Next() {
		registration, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trigger registration: %w", err)
		}

		registrations = append(registrations, registration)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trigger registrations: %w", err)
	}

	return registrations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.TriggerRegistration, error) {
	var (
		registration models.TriggerRegistration
		params       []byte
		metadata     []byte
	)

	err := row.Scan(
		&registration.ID,
		&registration.OrgID,
		&registration.AgentID,
		&registration.ProviderID,
		&registration.TriggerID,
		&registration.ConnectionID,
		&params,
		&metadata,
		&registration.ExpiresAt,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(params, &registration.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}

	if err := json.Unmarshal(metadata, &registration.SubscriptionMetadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription metadata: %w", err)
	}

	return &registration, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}
