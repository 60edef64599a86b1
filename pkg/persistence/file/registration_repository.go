package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"time"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
)

const registrationsDir = "trigger_registrations"

// RegistrationRepository handles trigger registration file operations.
type RegistrationRepository struct {
	root string
}

// NewRegistrationRepository creates a new registration repository.
func NewRegistrationRepository(root string) *RegistrationRepository {
	return &RegistrationRepository{root: root}
}

// GetByID loads a single registration by its identifier.
func (rr *RegistrationRepository) GetByID(_ context.Context, id string) (*models.TriggerRegistration, error) {
	filePath := path.Join(rr.root, registrationsDir, id+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewRegistrationError("GetByID", id, persistence.ErrRegistrationNotFound)
		}

		return nil, persistence.NewRegistrationError("GetByID", id, err)
	}

	var registration models.TriggerRegistration
	if err := json.Unmarshal(data, &registration); err != nil {
		return nil, persistence.NewRegistrationError("GetByID", id, err)
	}

	return &registration, nil
}

// Save writes a registration as a single JSON document, creating the
// directory tree on first use.
func (rr *RegistrationRepository) Save(_ context.Context, registration *models.TriggerRegistration) error {
	if err := registration.Validate(); err != nil {
		return persistence.NewRegistrationError("Save", registration.ID, err)
	}

	dir := path.Join(rr.root, registrationsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistence.NewRegistrationError("Save", registration.ID, err)
	}

	data, err := json.MarshalIndent(registration, "", "  ")
	if err != nil {
		return persistence.NewRegistrationError("Save", registration.ID, err)
	}

	if err := os.WriteFile(path.Join(dir, registration.ID+".json"), data, 0o644); err != nil {
		return persistence.NewRegistrationError("Save", registration.ID, err)
	}

	return nil
}

// GetByTrigger returns all registrations bound to the given provider trigger,
// ordered by creation time then id for deterministic fan-out.
func (rr *RegistrationRepository) GetByTrigger(ctx context.Context, providerID, triggerID string) ([]*models.TriggerRegistration, error) {
	all, err := rr.getAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.TriggerRegistration, 0)

	for _, registration := range all {
		if registration.ProviderID == providerID && registration.TriggerID == triggerID {
			matched = append(matched, registration)
		}
	}

	sortRegistrations(matched)

	return matched, nil
}

// GetExpiring returns registrations whose subscription expiry falls before
// the given instant. Rows without an expiry are skipped.
func (rr *RegistrationRepository) GetExpiring(ctx context.Context, before time.Time) ([]*models.TriggerRegistration, error) {
	all, err := rr.getAll(ctx)
	if err != nil {
		return nil, err
	}

	expiring := make([]*models.TriggerRegistration, 0)

	for _, registration := range all {
		if registration.ExpiresAt != nil && registration.ExpiresAt.Before(before) {
			expiring = append(expiring, registration)
		}
	}

	sortRegistrations(expiring)

	return expiring, nil
}

func (rr *RegistrationRepository) getAll(ctx context.Context) ([]*models.TriggerRegistration, error) {
	dir := path.Join(rr.root, registrationsDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.TriggerRegistration{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list registration files: %w", err)
	}

	registrations := make([]*models.TriggerRegistration, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		registration, err := rr.GetByID(ctx, file[:len(file)-5])
		if err != nil {
			return nil, err
		}

		registrations = append(registrations, registration)
	}

	return registrations, nil
}

func sortRegistrations(registrations []*models.TriggerRegistration) {
	sort.Slice(registrations, func(i, j int) bool {
		if registrations[i].CreatedAt.Equal(registrations[j].CreatedAt) {
			return registrations[i].ID < registrations[j].ID
		}

		return registrations[i].CreatedAt.Before(registrations[j].CreatedAt)
	})
}
