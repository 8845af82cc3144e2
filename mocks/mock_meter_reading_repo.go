package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gridbill/internal/domain"
)

// MockMeterReadingRepo is a mock implementation of port.MeterReadingRepository.
type MockMeterReadingRepo struct {
	mock.Mock
}

func (m *MockMeterReadingRepo) Create(ctx context.Context, reading *domain.MeterReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockMeterReadingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MeterReading, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeterReading), args.Error(1)
}

func (m *MockMeterReadingRepo) LatestBefore(ctx context.Context, customerID uuid.UUID, before time.Time) (*domain.MeterReading, error) {
	args := m.Called(ctx, customerID, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeterReading), args.Error(1)
}

func (m *MockMeterReadingRepo) LatestInRange(ctx context.Context, customerID uuid.UUID, from, to time.Time) (*domain.MeterReading, error) {
	args := m.Called(ctx, customerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeterReading), args.Error(1)
}

func (m *MockMeterReadingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error) {
	args := m.Called(ctx, customerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.MeterReading), args.Int(1), args.Error(2)
}
