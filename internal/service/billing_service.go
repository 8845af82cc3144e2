package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gridbill/internal/billing"
	"gridbill/internal/config"
	"gridbill/internal/domain"
	"gridbill/internal/port"
)

// PreviewBillInput is the DTO for the bill calculator. Nothing is
// persisted; the breakdown is computed from the active tariff alone.
type PreviewBillInput struct {
	Category domain.CustomerCategory `json:"category" binding:"required"`
	Units    decimal.Decimal         `json:"units" binding:"required"`
	AsOf     *time.Time              `json:"as_of"`
}

// BulkResultStatus classifies one customer's outcome in a bulk run.
type BulkResultStatus string

const (
	BulkGenerated        BulkResultStatus = "generated"
	BulkSkippedDuplicate BulkResultStatus = "skipped_duplicate"
	BulkSkippedNoReading BulkResultStatus = "skipped_no_reading"
	BulkFailed           BulkResultStatus = "failed"
)

// BulkResult is one customer's outcome in a bulk generation run.
type BulkResult struct {
	CustomerID uuid.UUID        `json:"customer_id"`
	Status     BulkResultStatus `json:"status"`
	BillID     *uuid.UUID       `json:"bill_id,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// BillingService defines the bill generation contract.
type BillingService interface {
	// GenerateBill creates the bill for one customer and billing month.
	// At most one bill per (customer, month) ever exists; a repeat call
	// returns ErrDuplicateBill and leaves the original untouched.
	GenerateBill(ctx context.Context, customerID uuid.UUID, billingMonth time.Time) (*domain.Bill, error)
	// GenerateBillsBulk runs GenerateBill for each customer
	// independently. An empty customerIDs slice means all active
	// customers. One customer's failure never rolls back another's
	// bill; cancellation stops between customers.
	GenerateBillsBulk(ctx context.Context, billingMonth time.Time, customerIDs []uuid.UUID) ([]BulkResult, error)
	// PreviewBill computes a bill breakdown without persisting anything.
	PreviewBill(ctx context.Context, input PreviewBillInput) (*billing.Breakdown, error)
	GetBill(ctx context.Context, id uuid.UUID) (*domain.Bill, error)
	ListBills(ctx context.Context, offset, limit int) ([]domain.Bill, int, error)
	ListCustomerBills(ctx context.Context, customerID uuid.UUID) ([]domain.Bill, error)
}

type billingService struct {
	customerRepo port.CustomerRepository
	readingRepo  port.MeterReadingRepository
	billRepo     port.BillRepository
	tariffs      TariffService
	reconciler   ReconcileService
	notifier     port.Notifier
	cfg          config.BillingConfig
	logger       *zap.Logger
}

// NewBillingService creates a new BillingService implementation.
func NewBillingService(
	customerRepo port.CustomerRepository,
	readingRepo port.MeterReadingRepository,
	billRepo port.BillRepository,
	tariffs TariffService,
	reconciler ReconcileService,
	notifier port.Notifier,
	cfg config.BillingConfig,
	logger *zap.Logger,
) BillingService {
	return &billingService{
		customerRepo: customerRepo,
		readingRepo:  readingRepo,
		billRepo:     billRepo,
		tariffs:      tariffs,
		reconciler:   reconciler,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *billingService) GenerateBill(ctx context.Context, customerID uuid.UUID, billingMonth time.Time) (*domain.Bill, error) {
	month := domain.NormalizeBillingMonth(billingMonth)

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	units, readingID, err := s.resolveConsumption(ctx, customer, month)
	if err != nil {
		return nil, err
	}

	tariff, err := s.tariffs.GetActiveTariff(ctx, customer.Category, month)
	if err != nil {
		return nil, err
	}

	breakdown, err := billing.Compute(tariff, units)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	issueDate := now.Truncate(24 * time.Hour)
	bill := &domain.Bill{
		ID:              uuid.New(),
		CustomerID:      customer.ID,
		BillNumber:      billNumber(),
		BillingMonth:    month,
		MeterReadingID:  readingID,
		TariffID:        tariff.ID,
		UnitsConsumed:   units,
		BaseAmount:      breakdown.BaseAmount,
		FixedCharges:    breakdown.FixedCharges,
		ElectricityDuty: breakdown.ElectricityDuty,
		GSTAmount:       breakdown.GSTAmount,
		TotalAmount:     breakdown.TotalAmount,
		Status:          domain.BillGenerated,
		IssueDate:       issueDate,
		DueDate:         issueDate.AddDate(0, 0, s.cfg.DueGraceDays),
	}

	// The unique constraint decides the duplicate race, not a prior
	// read. A concurrent generator for the same month loses here.
	if err := s.billRepo.Create(ctx, bill); err != nil {
		if errors.Is(err, domain.ErrDuplicateBill) {
			existing, gerr := s.billRepo.GetByCustomerAndMonth(ctx, customer.ID, month)
			if gerr == nil {
				return nil, fmt.Errorf("%w: bill %s already covers %s",
					domain.ErrDuplicateBill, existing.BillNumber, month.Format("2006-01"))
			}
			return nil, domain.ErrDuplicateBill
		}
		return nil, err
	}

	if _, err := s.reconciler.ReconcileCustomer(ctx, customer.ID); err != nil {
		s.logger.Error("post-generation reconcile failed",
			zap.String("customer_id", customer.ID.String()),
			zap.Error(err))
	}

	s.notifyBillGenerated(customer, bill)

	s.logger.Info("bill generated",
		zap.String("bill_number", bill.BillNumber),
		zap.String("customer_id", customer.ID.String()),
		zap.String("billing_month", month.Format("2006-01")),
		zap.String("total", bill.TotalAmount.String()))
	return bill, nil
}

func (s *billingService) GenerateBillsBulk(ctx context.Context, billingMonth time.Time, customerIDs []uuid.UUID) ([]BulkResult, error) {
	if len(customerIDs) == 0 {
		ids, err := s.customerRepo.ListActiveIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("billing.GenerateBillsBulk: %w", err)
		}
		customerIDs = ids
	}

	results := make([]BulkResult, 0, len(customerIDs))
	for _, id := range customerIDs {
		if err := ctx.Err(); err != nil {
			// Completed bills stay; the caller can rerun for the rest,
			// duplicates are skipped by the constraint.
			return results, err
		}
		results = append(results, s.generateOne(ctx, id, billingMonth))
	}
	return results, nil
}

func (s *billingService) generateOne(ctx context.Context, customerID uuid.UUID, billingMonth time.Time) BulkResult {
	bill, err := s.GenerateBill(ctx, customerID, billingMonth)
	switch {
	case err == nil:
		return BulkResult{CustomerID: customerID, Status: BulkGenerated, BillID: &bill.ID}
	case errors.Is(err, domain.ErrDuplicateBill):
		return BulkResult{CustomerID: customerID, Status: BulkSkippedDuplicate, Reason: err.Error()}
	case errors.Is(err, domain.ErrNoMeterReading):
		return BulkResult{CustomerID: customerID, Status: BulkSkippedNoReading, Reason: err.Error()}
	default:
		s.logger.Warn("bulk generation item failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err))
		return BulkResult{CustomerID: customerID, Status: BulkFailed, Reason: err.Error()}
	}
}

func (s *billingService) PreviewBill(ctx context.Context, input PreviewBillInput) (*billing.Breakdown, error) {
	asOf := time.Now().UTC()
	if input.AsOf != nil {
		asOf = input.AsOf.UTC()
	}

	tariff, err := s.tariffs.GetActiveTariff(ctx, input.Category, asOf)
	if err != nil {
		return nil, err
	}
	return billing.Compute(tariff, input.Units)
}

func (s *billingService) GetBill(ctx context.Context, id uuid.UUID) (*domain.Bill, error) {
	return s.billRepo.GetByID(ctx, id)
}

func (s *billingService) ListBills(ctx context.Context, offset, limit int) ([]domain.Bill, int, error) {
	return s.billRepo.List(ctx, offset, limit)
}

func (s *billingService) ListCustomerBills(ctx context.Context, customerID uuid.UUID) ([]domain.Bill, error) {
	return s.billRepo.ListByCustomer(ctx, customerID)
}

// resolveConsumption determines the units billed for a month. The
// previous meter position comes from the latest reading strictly before
// the month; the current position from the latest reading inside the
// month. A customer with no prior reading is billable from zero only
// if the connection predates the month.
func (s *billingService) resolveConsumption(ctx context.Context, customer *domain.Customer, month time.Time) (decimal.Decimal, *uuid.UUID, error) {
	previous := decimal.Zero
	prev, err := s.readingRepo.LatestBefore(ctx, customer.ID, month)
	switch {
	case err == nil:
		previous = prev.CurrentReading
	case errors.Is(err, domain.ErrReadingNotFound):
		if domain.NormalizeBillingMonth(customer.ConnectionDate).After(month) {
			return decimal.Zero, nil, fmt.Errorf("%w: connection date %s is after billing month %s",
				domain.ErrInvalidBillingPeriod,
				customer.ConnectionDate.Format("2006-01-02"), month.Format("2006-01"))
		}
	default:
		return decimal.Zero, nil, fmt.Errorf("billing.resolveConsumption: %w", err)
	}

	current, err := s.readingRepo.LatestInRange(ctx, customer.ID, month, month.AddDate(0, 1, 0))
	if err != nil {
		if errors.Is(err, domain.ErrReadingNotFound) {
			return decimal.Zero, nil, fmt.Errorf("%w: no reading for %s in %s",
				domain.ErrNoMeterReading, customer.AccountNumber, month.Format("2006-01"))
		}
		return decimal.Zero, nil, fmt.Errorf("billing.resolveConsumption: %w", err)
	}

	units := current.CurrentReading.Sub(previous)
	if units.IsNegative() {
		// Readings are validated monotonic at entry, so a negative
		// delta means a meter swap or a backdated correction. Bill
		// zero and leave the audit trail in the log.
		s.logger.Warn("negative consumption clamped to zero",
			zap.String("customer_id", customer.ID.String()),
			zap.String("previous", previous.String()),
			zap.String("current", current.CurrentReading.String()))
		units = decimal.Zero
	}
	return units, &current.ID, nil
}

func (s *billingService) notifyBillGenerated(customer *domain.Customer, bill *domain.Bill) {
	// Notification is best-effort and never blocks or fails billing.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.BillGenerated(ctx, customer, bill); err != nil {
			s.logger.Warn("bill notification failed",
				zap.String("bill_number", bill.BillNumber),
				zap.Error(err))
		}
	}()
}

func billNumber() string {
	return fmt.Sprintf("BILL-%d-%s", time.Now().UTC().Year(), strings.ToUpper(uuid.New().String()[:8]))
}
