// Package mocks provides shared test doubles for the gateway's interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/switchyardhq/switchyard/pkg/models"
)

// MockPersistence is a mock implementation of persistence.Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) TriggerRegistrationByID(ctx context.Context, id string) (*models.TriggerRegistration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.TriggerRegistration), args.Error(1)
}

func (m *MockPersistence) SaveTriggerRegistration(ctx context.Context, registration *models.TriggerRegistration) error {
	args := m.Called(ctx, registration)

	return args.Error(0)
}

func (m *MockPersistence) TriggerRegistrationsByTrigger(ctx context.Context, providerID, triggerID string) ([]*models.TriggerRegistration, error) {
	args := m.Called(ctx, providerID, triggerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.TriggerRegistration), args.Error(1)
}

func (m *MockPersistence) ExpiringTriggerRegistrations(ctx context.Context, before time.Time) ([]*models.TriggerRegistration, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.TriggerRegistration), args.Error(1)
}

func (m *MockPersistence) ConnectionByID(ctx context.Context, id string) (*models.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Connection), args.Error(1)
}

func (m *MockPersistence) ActiveToken(ctx context.Context, orgID, providerID string) (*models.Token, error) {
	args := m.Called(ctx, orgID, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Token), args.Error(1)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
