package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

const tokensDir = "tokens"

// TokenRepository handles token file operations.
type TokenRepository struct {
	root string
}

// NewTokenRepository creates a new token repository.
func NewTokenRepository(root string) *TokenRepository {
	return &TokenRepository{root: root}
}

// GetActive returns the single active token for an (org, provider) pair.
func (tr *TokenRepository) GetActive(_ context.Context, orgID, providerID string) (*models.Token, error) {
	dir := path.Join(tr.root, tokensDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, persistence.ErrTokenNotFound
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list token files: %w", err)
	}

	for _, file := range jsonFiles {
		data, err := os.ReadFile(path.Join(dir, file))
		if err != nil {
			return nil, err
		}

		var token models.Token
		if err := json.Unmarshal(data, &token); err != nil {
			return nil, err
		}

		if token.Active && token.OrgID == orgID && token.ProviderID == providerID {
			return &token, nil
		}
	}

	return nil, persistence.ErrTokenNotFound
}

// Save writes a token as a single JSON document.
func (tr *TokenRepository) Save(_ context.Context, token *models.Token) error {
	dir := path.Join(tr.root, tokensDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path.Join(dir, token.ID+".json"), data, 0o644)
}
