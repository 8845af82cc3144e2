package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gridbill/internal/domain"
	"gridbill/internal/service"
	"gridbill/mocks"
)

type reconcileFixture struct {
	customerRepo *mocks.MockCustomerRepo
	billRepo     *mocks.MockBillRepo
	paymentRepo  *mocks.MockPaymentRepo
	svc          service.ReconcileService
}

func newReconcileFixture() *reconcileFixture {
	f := &reconcileFixture{
		customerRepo: new(mocks.MockCustomerRepo),
		billRepo:     new(mocks.MockBillRepo),
		paymentRepo:  new(mocks.MockPaymentRepo),
	}
	f.svc = service.NewReconcileService(f.customerRepo, f.billRepo, f.paymentRepo, zap.NewNop())
	return f
}

func histBill(amount string, units int64, status domain.BillStatus, issue, due time.Time) domain.Bill {
	return domain.Bill{
		ID:            uuid.New(),
		TotalAmount:   decimal.RequireFromString(amount),
		UnitsConsumed: decimal.NewFromInt(units),
		Status:        status,
		IssueDate:     issue,
		DueDate:       due,
	}
}

func TestReconcileService_MixedHistory(t *testing.T) {
	f := newReconcileFixture()
	customerID := uuid.New()
	now := time.Now().UTC()
	future := now.AddDate(0, 0, 10)
	past := now.AddDate(0, 0, -10)

	bills := []domain.Bill{
		histBill("100.00", 80, domain.BillPaid, now.AddDate(0, -3, 0), past.AddDate(0, -2, 0)),
		histBill("200.00", 120, domain.BillIssued, now.AddDate(0, -1, 0), future),
		histBill("50.00", 40, domain.BillOverdue, now.AddDate(0, -2, 0), past),
	}
	paymentDate := now.AddDate(0, -2, -5)
	payments := []domain.Payment{
		{ID: uuid.New(), Amount: decimal.RequireFromString("100.00"), PaymentDate: paymentDate},
	}

	f.billRepo.On("ListByCustomer", mock.Anything, customerID).Return(bills, nil)
	f.paymentRepo.On("ListByCustomer", mock.Anything, customerID).Return(payments, nil)

	var captured *domain.BalanceSnapshot
	f.customerRepo.On("UpdateDerived", mock.Anything, mock.AnythingOfType("*domain.BalanceSnapshot")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.BalanceSnapshot)
		}).Return(nil)

	snapshot, err := f.svc.ReconcileCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, snapshot, captured)

	// Paid bills do not owe; 200 issued + 50 overdue remain open.
	assert.Equal(t, "250", snapshot.OutstandingBalance.String())
	assert.Equal(t, domain.PaymentStatusOverdue, snapshot.PaymentStatus)
	// Latest issue date wins, regardless of slice order.
	assert.Equal(t, "200", snapshot.LastBillAmount.String())
	require.NotNil(t, snapshot.LastPaymentDate)
	assert.True(t, snapshot.LastPaymentDate.Equal(paymentDate))
	// (80 + 120 + 40) / 3.
	assert.Equal(t, "80", snapshot.AverageMonthlyUsage.String())
}

func TestReconcileService_EmptyHistory(t *testing.T) {
	f := newReconcileFixture()
	customerID := uuid.New()

	f.billRepo.On("ListByCustomer", mock.Anything, customerID).Return([]domain.Bill{}, nil)
	f.paymentRepo.On("ListByCustomer", mock.Anything, customerID).Return([]domain.Payment{}, nil)
	f.customerRepo.On("UpdateDerived", mock.Anything, mock.Anything).Return(nil)

	snapshot, err := f.svc.ReconcileCustomer(context.Background(), customerID)
	require.NoError(t, err)

	assert.True(t, snapshot.OutstandingBalance.IsZero())
	assert.True(t, snapshot.AverageMonthlyUsage.IsZero())
	assert.Nil(t, snapshot.LastPaymentDate)
	assert.Equal(t, domain.PaymentStatusPaid, snapshot.PaymentStatus)
}

func TestReconcileService_GeneratedAndCancelledExcluded(t *testing.T) {
	f := newReconcileFixture()
	customerID := uuid.New()
	now := time.Now().UTC()
	future := now.AddDate(0, 0, 10)

	bills := []domain.Bill{
		histBill("300.00", 150, domain.BillGenerated, now, future),
		histBill("400.00", 200, domain.BillCancelled, now.AddDate(0, -1, 0), future),
	}

	f.billRepo.On("ListByCustomer", mock.Anything, customerID).Return(bills, nil)
	f.paymentRepo.On("ListByCustomer", mock.Anything, customerID).Return([]domain.Payment{}, nil)
	f.customerRepo.On("UpdateDerived", mock.Anything, mock.Anything).Return(nil)

	snapshot, err := f.svc.ReconcileCustomer(context.Background(), customerID)
	require.NoError(t, err)

	// Drafts and cancelled bills owe nothing. Cancelled usage is also
	// excluded from the average, so only the draft's units count.
	assert.True(t, snapshot.OutstandingBalance.IsZero())
	assert.Equal(t, domain.PaymentStatusPaid, snapshot.PaymentStatus)
	assert.Equal(t, "150", snapshot.AverageMonthlyUsage.String())
}

func TestReconcileService_IssuedPastDueCountsAsOverdue(t *testing.T) {
	f := newReconcileFixture()
	customerID := uuid.New()
	now := time.Now().UTC()

	// Stored as issued, but the due date has passed. The status sweep
	// may not have run yet; the projection must not wait for it.
	bills := []domain.Bill{
		histBill("120.00", 60, domain.BillIssued, now.AddDate(0, -1, 0), now.AddDate(0, 0, -1)),
	}

	f.billRepo.On("ListByCustomer", mock.Anything, customerID).Return(bills, nil)
	f.paymentRepo.On("ListByCustomer", mock.Anything, customerID).Return([]domain.Payment{}, nil)
	f.customerRepo.On("UpdateDerived", mock.Anything, mock.Anything).Return(nil)

	snapshot, err := f.svc.ReconcileCustomer(context.Background(), customerID)
	require.NoError(t, err)

	assert.Equal(t, "120", snapshot.OutstandingBalance.String())
	assert.Equal(t, domain.PaymentStatusOverdue, snapshot.PaymentStatus)
}
