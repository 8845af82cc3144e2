package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gridbill/internal/domain"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BillGenerated(ctx context.Context, customer *domain.Customer, bill *domain.Bill) error {
	args := m.Called(ctx, customer, bill)
	return args.Error(0)
}

func (m *MockNotifier) PaymentReceived(ctx context.Context, customer *domain.Customer, bill *domain.Bill, payment *domain.Payment) error {
	args := m.Called(ctx, customer, bill, payment)
	return args.Error(0)
}
