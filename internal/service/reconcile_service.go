package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gridbill/internal/domain"
	"gridbill/internal/port"
)

// ReconcileService recomputes a customer's derived balance fields from
// the full bill and payment history. The stored columns are a cache of
// this computation; reconciliation replaces them wholesale and is safe
// to run at any time.
type ReconcileService interface {
	ReconcileCustomer(ctx context.Context, customerID uuid.UUID) (*domain.BalanceSnapshot, error)
}

type reconcileService struct {
	customerRepo port.CustomerRepository
	billRepo     port.BillRepository
	paymentRepo  port.PaymentRepository
	logger       *zap.Logger
}

// NewReconcileService creates a new ReconcileService implementation.
func NewReconcileService(
	customerRepo port.CustomerRepository,
	billRepo port.BillRepository,
	paymentRepo port.PaymentRepository,
	logger *zap.Logger,
) ReconcileService {
	return &reconcileService{
		customerRepo: customerRepo,
		billRepo:     billRepo,
		paymentRepo:  paymentRepo,
		logger:       logger,
	}
}

func (s *reconcileService) ReconcileCustomer(ctx context.Context, customerID uuid.UUID) (*domain.BalanceSnapshot, error) {
	bills, err := s.billRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("reconcile.ReconcileCustomer: %w", err)
	}
	payments, err := s.paymentRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("reconcile.ReconcileCustomer: %w", err)
	}

	snapshot := computeSnapshot(customerID, bills, payments, time.Now().UTC())

	if err := s.customerRepo.UpdateDerived(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("reconcile.ReconcileCustomer: %w", err)
	}

	s.logger.Debug("customer reconciled",
		zap.String("customer_id", customerID.String()),
		zap.String("outstanding", snapshot.OutstandingBalance.String()),
		zap.String("payment_status", string(snapshot.PaymentStatus)))
	return snapshot, nil
}

// computeSnapshot derives the balance fields from bill and payment
// history. Generated bills are drafts and do not count toward the
// outstanding balance; only bills effectively issued or overdue do.
func computeSnapshot(customerID uuid.UUID, bills []domain.Bill, payments []domain.Payment, now time.Time) *domain.BalanceSnapshot {
	outstanding := decimal.Zero
	anyOverdue := false

	lastBillAmount := decimal.Zero
	var lastIssue time.Time

	usageSum := decimal.Zero
	usageCount := int64(0)

	for i := range bills {
		b := &bills[i]
		effective := b.EffectiveStatus(now)

		if effective == domain.BillIssued || effective == domain.BillOverdue {
			outstanding = outstanding.Add(b.TotalAmount)
		}
		if effective == domain.BillOverdue {
			anyOverdue = true
		}
		if b.Status != domain.BillCancelled {
			usageSum = usageSum.Add(b.UnitsConsumed)
			usageCount++
		}
		if b.IssueDate.After(lastIssue) {
			lastIssue = b.IssueDate
			lastBillAmount = b.TotalAmount
		}
	}

	var lastPaymentDate *time.Time
	for i := range payments {
		p := &payments[i]
		if lastPaymentDate == nil || p.PaymentDate.After(*lastPaymentDate) {
			d := p.PaymentDate
			lastPaymentDate = &d
		}
	}

	avgUsage := decimal.Zero
	if usageCount > 0 {
		avgUsage = usageSum.Div(decimal.NewFromInt(usageCount)).Round(2)
	}

	paymentStatus := domain.PaymentStatusPaid
	if !outstanding.IsZero() {
		if anyOverdue {
			paymentStatus = domain.PaymentStatusOverdue
		} else {
			paymentStatus = domain.PaymentStatusPending
		}
	}

	return &domain.BalanceSnapshot{
		CustomerID:          customerID,
		OutstandingBalance:  outstanding.Round(2),
		LastBillAmount:      lastBillAmount,
		LastPaymentDate:     lastPaymentDate,
		AverageMonthlyUsage: avgUsage,
		PaymentStatus:       paymentStatus,
	}
}
