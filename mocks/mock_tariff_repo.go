package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gridbill/internal/domain"
)

// MockTariffRepo is a mock implementation of port.TariffRepository.
type MockTariffRepo struct {
	mock.Mock
}

func (m *MockTariffRepo) Create(ctx context.Context, tariff *domain.Tariff) error {
	args := m.Called(ctx, tariff)
	return args.Error(0)
}

func (m *MockTariffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tariff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tariff), args.Error(1)
}

func (m *MockTariffRepo) List(ctx context.Context, offset, limit int) ([]domain.Tariff, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Tariff), args.Int(1), args.Error(2)
}

func (m *MockTariffRepo) FindForDate(ctx context.Context, category domain.CustomerCategory, asOf time.Time) ([]domain.Tariff, error) {
	args := m.Called(ctx, category, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tariff), args.Error(1)
}
