package file

import (
	"context"
	"encoding/json"
	"os"
	"path"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

const connectionsDir = "connections"

// ConnectionRepository handles connection file operations.
type ConnectionRepository struct {
	root string
}

// NewConnectionRepository creates a new connection repository.
func NewConnectionRepository(root string) *ConnectionRepository {
	return &ConnectionRepository{root: root}
}

// GetByID loads a single connection by its identifier.
func (cr *ConnectionRepository) GetByID(_ context.Context, id string) (*models.Connection, error) {
	data, err := os.ReadFile(path.Join(cr.root, connectionsDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrConnectionNotFound
		}

		return nil, err
	}

	var connection models.Connection
	if err := json.Unmarshal(data, &connection); err != nil {
		return nil, err
	}

	return &connection, nil
}

// Save writes a connection as a single JSON document.
func (cr *ConnectionRepository) Save(_ context.Context, connection *models.Connection) error {
	dir := path.Join(cr.root, connectionsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(connection, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path.Join(dir, connection.ID+".json"), data, 0o644)
}
