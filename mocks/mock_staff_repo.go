package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gridbill/internal/domain"
)

// MockStaffRepo is a mock implementation of port.StaffRepository.
type MockStaffRepo struct {
	mock.Mock
}

func (m *MockStaffRepo) Create(ctx context.Context, user *domain.StaffUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStaffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffUser), args.Error(1)
}

func (m *MockStaffRepo) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffUser), args.Error(1)
}
