package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gridbill/internal/domain"
	"gridbill/internal/port"
)

// RecordPaymentInput is the DTO for settling a bill. Bills are settled
// in full; the amount must match the bill total exactly.
type RecordPaymentInput struct {
	BillID        uuid.UUID            `json:"bill_id" binding:"required"`
	Amount        decimal.Decimal      `json:"amount" binding:"required"`
	Method        domain.PaymentMethod `json:"method" binding:"required"`
	TransactionID string               `json:"transaction_id" binding:"required"`
	Notes         string               `json:"notes"`
}

// TransitionInput is the DTO for moving a bill through its lifecycle.
type TransitionInput struct {
	Status domain.BillStatus `json:"status" binding:"required"`
}

// PaymentService defines the payment and bill lifecycle contract.
type PaymentService interface {
	// RecordPayment settles a bill in full. The paid flip and the
	// payment insert commit in one transaction; of two concurrent
	// attempts exactly one succeeds and the other gets ErrAlreadyPaid.
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error)
	// TransitionBillStatus handles issue, overdue and cancel moves.
	// Paid is reachable only through RecordPayment.
	TransitionBillStatus(ctx context.Context, billID uuid.UUID, next domain.BillStatus) (*domain.Bill, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ListCustomerPayments(ctx context.Context, customerID uuid.UUID) ([]domain.Payment, error)
}

type paymentService struct {
	billRepo     port.BillRepository
	paymentRepo  port.PaymentRepository
	customerRepo port.CustomerRepository
	reconciler   ReconcileService
	notifier     port.Notifier
	logger       *zap.Logger
}

// NewPaymentService creates a new PaymentService implementation.
func NewPaymentService(
	billRepo port.BillRepository,
	paymentRepo port.PaymentRepository,
	customerRepo port.CustomerRepository,
	reconciler ReconcileService,
	notifier port.Notifier,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		billRepo:     billRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		reconciler:   reconciler,
		notifier:     notifier,
		logger:       logger,
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error) {
	if !input.Method.IsValid() {
		return nil, fmt.Errorf("payment.RecordPayment: invalid method %q", input.Method)
	}

	bill, err := s.billRepo.GetByID(ctx, input.BillID)
	if err != nil {
		return nil, err
	}

	if !input.Amount.Equal(bill.TotalAmount) {
		return nil, fmt.Errorf("%w: got %s, bill total is %s",
			domain.ErrAmountMismatch, input.Amount, bill.TotalAmount)
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:            uuid.New(),
		CustomerID:    bill.CustomerID,
		BillID:        bill.ID,
		Amount:        input.Amount,
		Method:        input.Method,
		PaymentDate:   now,
		TransactionID: input.TransactionID,
		ReceiptNumber: receiptNumber(),
		Notes:         input.Notes,
	}

	// The conditional paid flip and the ledger insert share one
	// transaction; the repo reports which invariant broke on conflict.
	paidBill, err := s.billRepo.MarkPaid(ctx, bill.ID, payment)
	if err != nil {
		return nil, err
	}

	if _, err := s.reconciler.ReconcileCustomer(ctx, bill.CustomerID); err != nil {
		s.logger.Error("post-payment reconcile failed",
			zap.String("customer_id", bill.CustomerID.String()),
			zap.Error(err))
	}

	s.notifyPaymentReceived(paidBill, payment)

	s.logger.Info("payment recorded",
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.String("bill_number", paidBill.BillNumber),
		zap.String("amount", payment.Amount.String()))
	return payment, nil
}

func (s *paymentService) TransitionBillStatus(ctx context.Context, billID uuid.UUID, next domain.BillStatus) (*domain.Bill, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, next)
	}
	if next == domain.BillPaid {
		return nil, fmt.Errorf("%w: paid requires a recorded payment", domain.ErrInvalidTransition)
	}

	bill, err := s.billRepo.UpdateStatus(ctx, billID, next)
	if err != nil {
		return nil, err
	}

	if _, err := s.reconciler.ReconcileCustomer(ctx, bill.CustomerID); err != nil {
		s.logger.Error("post-transition reconcile failed",
			zap.String("customer_id", bill.CustomerID.String()),
			zap.Error(err))
	}
	return bill, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *paymentService) ListCustomerPayments(ctx context.Context, customerID uuid.UUID) ([]domain.Payment, error) {
	return s.paymentRepo.ListByCustomer(ctx, customerID)
}

func (s *paymentService) notifyPaymentReceived(bill *domain.Bill, payment *domain.Payment) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		customer, err := s.customerRepo.GetByID(ctx, bill.CustomerID)
		if err != nil {
			s.logger.Warn("payment notification skipped",
				zap.String("bill_number", bill.BillNumber),
				zap.Error(err))
			return
		}
		if err := s.notifier.PaymentReceived(ctx, customer, bill, payment); err != nil {
			s.logger.Warn("payment notification failed",
				zap.String("receipt_number", payment.ReceiptNumber),
				zap.Error(err))
		}
	}()
}

func receiptNumber() string {
	return fmt.Sprintf("RCPT-%d-%s", time.Now().UTC().Year(), strings.ToUpper(uuid.New().String()[:8]))
}
