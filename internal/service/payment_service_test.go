package service_test

import (
	"context"
	"fmt"
	"strings"
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

type paymentFixture struct {
	billRepo     *mocks.MockBillRepo
	paymentRepo  *mocks.MockPaymentRepo
	customerRepo *mocks.MockCustomerRepo
	notifier     *mocks.MockNotifier
	svc          service.PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		billRepo:     new(mocks.MockBillRepo),
		paymentRepo:  new(mocks.MockPaymentRepo),
		customerRepo: new(mocks.MockCustomerRepo),
		notifier:     new(mocks.MockNotifier),
	}
	logger := zap.NewNop()
	reconciler := service.NewReconcileService(f.customerRepo, f.billRepo, f.paymentRepo, logger)
	f.svc = service.NewPaymentService(f.billRepo, f.paymentRepo, f.customerRepo, reconciler, f.notifier, logger)
	return f
}

func (f *paymentFixture) expectReconcile() {
	f.billRepo.On("ListByCustomer", mock.Anything, mock.Anything).Return([]domain.Bill{}, nil).Maybe()
	f.paymentRepo.On("ListByCustomer", mock.Anything, mock.Anything).Return([]domain.Payment{}, nil).Maybe()
	f.customerRepo.On("UpdateDerived", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.customerRepo.On("GetByID", mock.Anything, mock.Anything).Return(activeCustomer(domain.CategoryResidential), nil).Maybe()
	f.notifier.On("PaymentReceived", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func issuedBill() *domain.Bill {
	return &domain.Bill{
		ID:           uuid.New(),
		CustomerID:   uuid.New(),
		BillNumber:   "BILL-2025-A1B2C3D4",
		BillingMonth: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:  decimal.RequireFromString("997.10"),
		Status:       domain.BillIssued,
		IssueDate:    time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC),
		DueDate:      time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestPaymentService_RecordPayment_Success(t *testing.T) {
	f := newPaymentFixture()
	bill := issuedBill()

	f.billRepo.On("GetByID", mock.Anything, bill.ID).Return(bill, nil)
	paid := *bill
	paid.Status = domain.BillPaid
	f.billRepo.On("MarkPaid", mock.Anything, bill.ID, mock.AnythingOfType("*domain.Payment")).
		Return(&paid, nil)
	f.expectReconcile()

	payment, err := f.svc.RecordPayment(context.Background(), service.RecordPaymentInput{
		BillID:        bill.ID,
		Amount:        decimal.RequireFromString("997.10"),
		Method:        domain.MethodUPI,
		TransactionID: "TXN-0001",
	})
	require.NoError(t, err)
	assert.Equal(t, bill.ID, payment.BillID)
	assert.Equal(t, bill.CustomerID, payment.CustomerID)
	assert.True(t, strings.HasPrefix(payment.ReceiptNumber,
		fmt.Sprintf("RCPT-%d-", time.Now().UTC().Year())))
	assert.Len(t, payment.ReceiptNumber, 18)
	f.billRepo.AssertExpectations(t)
}

func TestPaymentService_RecordPayment_AmountMismatch(t *testing.T) {
	f := newPaymentFixture()
	bill := issuedBill()

	f.billRepo.On("GetByID", mock.Anything, bill.ID).Return(bill, nil)

	payment, err := f.svc.RecordPayment(context.Background(), service.RecordPaymentInput{
		BillID:        bill.ID,
		Amount:        decimal.RequireFromString("500.00"),
		Method:        domain.MethodCash,
		TransactionID: "TXN-0002",
	})
	assert.Nil(t, payment)
	assert.ErrorIs(t, err, domain.ErrAmountMismatch)
	f.billRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_InvalidMethod(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.RecordPayment(context.Background(), service.RecordPaymentInput{
		BillID:        uuid.New(),
		Amount:        decimal.NewFromInt(100),
		Method:        domain.PaymentMethod("barter"),
		TransactionID: "TXN-0003",
	})
	assert.Nil(t, payment)
	assert.Error(t, err)
	f.billRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_AlreadyPaid(t *testing.T) {
	f := newPaymentFixture()
	bill := issuedBill()

	// The concurrent winner flipped the bill between the read and the
	// conditional update.
	f.billRepo.On("GetByID", mock.Anything, bill.ID).Return(bill, nil)
	f.billRepo.On("MarkPaid", mock.Anything, bill.ID, mock.Anything).
		Return(nil, domain.ErrAlreadyPaid)

	payment, err := f.svc.RecordPayment(context.Background(), service.RecordPaymentInput{
		BillID:        bill.ID,
		Amount:        decimal.RequireFromString("997.10"),
		Method:        domain.MethodCreditCard,
		TransactionID: "TXN-0004",
	})
	assert.Nil(t, payment)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	f.customerRepo.AssertNotCalled(t, "UpdateDerived", mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_DuplicateTransaction(t *testing.T) {
	f := newPaymentFixture()
	bill := issuedBill()

	f.billRepo.On("GetByID", mock.Anything, bill.ID).Return(bill, nil)
	f.billRepo.On("MarkPaid", mock.Anything, bill.ID, mock.Anything).
		Return(nil, domain.ErrDuplicateTransaction)

	_, err := f.svc.RecordPayment(context.Background(), service.RecordPaymentInput{
		BillID:        bill.ID,
		Amount:        decimal.RequireFromString("997.10"),
		Method:        domain.MethodBankTransfer,
		TransactionID: "TXN-0001",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateTransaction)
}

func TestPaymentService_TransitionBillStatus_Success(t *testing.T) {
	f := newPaymentFixture()
	bill := issuedBill()
	bill.Status = domain.BillOverdue

	f.billRepo.On("UpdateStatus", mock.Anything, bill.ID, domain.BillOverdue).Return(bill, nil)
	f.expectReconcile()

	got, err := f.svc.TransitionBillStatus(context.Background(), bill.ID, domain.BillOverdue)
	require.NoError(t, err)
	assert.Equal(t, domain.BillOverdue, got.Status)
}

func TestPaymentService_TransitionBillStatus_PaidRejected(t *testing.T) {
	f := newPaymentFixture()

	got, err := f.svc.TransitionBillStatus(context.Background(), uuid.New(), domain.BillPaid)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.billRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_TransitionBillStatus_UnknownStatus(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.TransitionBillStatus(context.Background(), uuid.New(), domain.BillStatus("archived"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
