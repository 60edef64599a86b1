package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/switchyardhq/switchyard/pkg/persistence"
	"github.com/switchyardhq/switchyard/pkg/persistence/file"
	"github.com/switchyardhq/switchyard/pkg/persistence/postgresql"
)

// NewPersistence selects a backend from the database URL scheme. Anything
// that is not postgres falls back to the file backend, treating the URL as a
// directory path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}
