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

// TokenRepository handles token database operations.
type TokenRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTokenRepository creates a new token repository.
func NewTokenRepository(db *sql.DB, logger *slog.Logger) *TokenRepository {
	return &TokenRepository{db: db, logger: logger}
}

// GetActive retrieves the single active token for an (org, provider) pair.
func (tr *TokenRepository) GetActive(ctx context.Context, orgID, providerID string) (*models.Token, error) {
	query := `
		SELECT id, org_id, provider_id, connection_id, payload, active, expires_at, created_at
		FROM tokens
		WHERE org_id = $1 AND provider_id = $2 AND active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		token        models.Token
		connectionID sql.NullString
		payload      []byte
	)

	err := tr.db.QueryRowContext(ctx, query, orgID, providerID).Scan(
		&token.ID,
		&token.OrgID,
		&token.ProviderID,
		&connectionID,
		&payload,
		&token.Active,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrTokenNotFound
		}

		return nil, fmt.Errorf("failed to query active token for org %s provider %s: %w", orgID, providerID, err)
	}

	token.ConnectionID = connectionID.String

	if err := json.Unmarshal(payload, &token.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token payload: %w", err)
	}

	return &token, nil
}
