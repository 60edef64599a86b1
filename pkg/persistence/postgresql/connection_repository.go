package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

// ConnectionRepository handles connection database operations.
type ConnectionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewConnectionRepository creates a new connection repository.
func NewConnectionRepository(db *sql.DB, logger *slog.Logger) *ConnectionRepository {
	return &ConnectionRepository{db: db, logger: logger}
}

// GetByID retrieves a connection by its identifier.
func (cr *ConnectionRepository) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	query := `
		SELECT id, org_id, provider_id, external_account_metadata, created_at, updated_at
		FROM connections
		WHERE id = $1
	`

	var (
		connection models.Connection
		metadata   []byte
	)

	err := cr.db.QueryRowContext(ctx, query, id).Scan(
		&connection.ID,
		&connection.OrgID,
		&connection.ProviderID,
		&metadata,
		&connection.CreatedAt,
		&connection.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrConnectionNotFound
		}

		return nil, fmt.Errorf("failed to query connection %s: %w", id, err)
	}

	if err := json.Unmarshal(metadata, &connection.ExternalAccountMetadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal external account metadata: %w", err)
	}

	return &connection, nil
}

// Save upserts a connection keyed by id.
func (cr *ConnectionRepository) Save(ctx context.Context, connection *models.Connection) error {
	metadata, err := json.Marshal(orEmpty(connection.ExternalAccountMetadata))
	if err != nil {
		return fmt.Errorf("failed to marshal external account metadata: %w", err)
	}

	query := `
		INSERT INTO connections (id, org_id, provider_id, external_account_metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			external_account_metadata = EXCLUDED.external_account_metadata,
			updated_at = EXCLUDED.updated_at
	`

	_, err = cr.db.ExecContext(ctx, query,
		connection.ID,
		connection.OrgID,
		connection.ProviderID,
		metadata,
		connection.CreatedAt,
		connection.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save connection %s: %w", connection.ID, err)
	}

	return nil
}
