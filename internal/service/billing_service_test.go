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

	"gridbill/internal/config"
	"gridbill/internal/domain"
	"gridbill/internal/service"
	"gridbill/mocks"
)

type billingFixture struct {
	customerRepo *mocks.MockCustomerRepo
	readingRepo  *mocks.MockMeterReadingRepo
	billRepo     *mocks.MockBillRepo
	tariffRepo   *mocks.MockTariffRepo
	paymentRepo  *mocks.MockPaymentRepo
	notifier     *mocks.MockNotifier
	svc          service.BillingService
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		customerRepo: new(mocks.MockCustomerRepo),
		readingRepo:  new(mocks.MockMeterReadingRepo),
		billRepo:     new(mocks.MockBillRepo),
		tariffRepo:   new(mocks.MockTariffRepo),
		paymentRepo:  new(mocks.MockPaymentRepo),
		notifier:     new(mocks.MockNotifier),
	}
	logger := zap.NewNop()
	tariffSvc := service.NewTariffService(f.tariffRepo)
	reconcileSvc := service.NewReconcileService(f.customerRepo, f.billRepo, f.paymentRepo, logger)
	f.svc = service.NewBillingService(
		f.customerRepo, f.readingRepo, f.billRepo, tariffSvc, reconcileSvc, f.notifier,
		config.BillingConfig{DueGraceDays: 15}, logger)
	return f
}

// expectReconcile wires the calls ReconcileCustomer makes after a bill
// lands. The snapshot content is not under test here.
func (f *billingFixture) expectReconcile() {
	f.billRepo.On("ListByCustomer", mock.Anything, mock.Anything).Return([]domain.Bill{}, nil).Maybe()
	f.paymentRepo.On("ListByCustomer", mock.Anything, mock.Anything).Return([]domain.Payment{}, nil).Maybe()
	f.customerRepo.On("UpdateDerived", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifier.On("BillGenerated", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func activeCustomer(category domain.CustomerCategory) *domain.Customer {
	return &domain.Customer{
		ID:             uuid.New(),
		AccountNumber:  "ELX-2024-AB12CD",
		MeterNumber:    "MTR-9F8E7D",
		FullName:       "Ravi Kumar",
		Email:          "ravi@example.com",
		Category:       category,
		Status:         domain.CustomerActive,
		ConnectionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func activeTariff(category domain.CustomerCategory) domain.Tariff {
	end1, end2 := int64(100), int64(200)
	return domain.Tariff{
		ID:          uuid.New(),
		Category:    category,
		FixedCharge: decimal.RequireFromString("50.00"),
		DutyPercent: decimal.RequireFromString("6"),
		GSTPercent:  decimal.RequireFromString("18"),
		Status:      domain.TariffActive,
		Slabs: []domain.TariffSlab{
			{SlabOrder: 1, StartUnits: 0, EndUnits: &end1, RatePerUnit: decimal.RequireFromString("4.50")},
			{SlabOrder: 2, StartUnits: 101, EndUnits: &end2, RatePerUnit: decimal.RequireFromString("6.00")},
			{SlabOrder: 3, StartUnits: 201, EndUnits: nil, RatePerUnit: decimal.RequireFromString("7.50")},
		},
	}
}

func reading(customerID uuid.UUID, current string, date time.Time) *domain.MeterReading {
	return &domain.MeterReading{
		ID:             uuid.New(),
		CustomerID:     customerID,
		CurrentReading: decimal.RequireFromString(current),
		ReadingDate:    date,
	}
}

func TestBillingService_GenerateBill_Success(t *testing.T) {
	f := newBillingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.readingRepo.On("LatestBefore", mock.Anything, customer.ID, month).
		Return(reading(customer.ID, "1000", month.AddDate(0, 0, -3)), nil)
	f.readingRepo.On("LatestInRange", mock.Anything, customer.ID, month, month.AddDate(0, 1, 0)).
		Return(reading(customer.ID, "1150", month.AddDate(0, 0, 27)), nil)
	f.tariffRepo.On("FindForDate", mock.Anything, domain.CategoryResidential, month).
		Return([]domain.Tariff{activeTariff(domain.CategoryResidential)}, nil)
	f.billRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Bill")).Return(nil)
	f.expectReconcile()

	bill, err := f.svc.GenerateBill(context.Background(), customer.ID, time.Date(2025, 7, 19, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, month, bill.BillingMonth)
	assert.Equal(t, domain.BillGenerated, bill.Status)
	assert.Equal(t, "150", bill.UnitsConsumed.String())
	assert.Equal(t, "750", bill.BaseAmount.String())
	assert.Equal(t, "997.1", bill.TotalAmount.String())
	assert.Equal(t, bill.IssueDate.AddDate(0, 0, 15), bill.DueDate)
	assert.True(t, strings.HasPrefix(bill.BillNumber,
		fmt.Sprintf("BILL-%d-", time.Now().UTC().Year())))
	assert.Len(t, bill.BillNumber, 18)

	f.billRepo.AssertExpectations(t)
}

func TestBillingService_GenerateBill_DuplicateMonth(t *testing.T) {
	f := newBillingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	existing := &domain.Bill{ID: uuid.New(), BillNumber: "BILL-2025-11223344", BillingMonth: month}

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.readingRepo.On("LatestBefore", mock.Anything, customer.ID, month).
		Return(reading(customer.ID, "1000", month.AddDate(0, 0, -3)), nil)
	f.readingRepo.On("LatestInRange", mock.Anything, customer.ID, month, month.AddDate(0, 1, 0)).
		Return(reading(customer.ID, "1150", month.AddDate(0, 0, 27)), nil)
	f.tariffRepo.On("FindForDate", mock.Anything, domain.CategoryResidential, month).
		Return([]domain.Tariff{activeTariff(domain.CategoryResidential)}, nil)
	f.billRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateBill)
	f.billRepo.On("GetByCustomerAndMonth", mock.Anything, customer.ID, month).Return(existing, nil)

	bill, err := f.svc.GenerateBill(context.Background(), customer.ID, month)
	assert.Nil(t, bill)
	assert.ErrorIs(t, err, domain.ErrDuplicateBill)
	assert.Contains(t, err.Error(), existing.BillNumber)

	// The original bill is never touched on a duplicate.
	f.billRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.customerRepo.AssertNotCalled(t, "UpdateDerived", mock.Anything, mock.Anything)
}

func TestBillingService_GenerateBill_NewCustomerBillsFromZero(t *testing.T) {
	f := newBillingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	customer.ConnectionDate = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.readingRepo.On("LatestBefore", mock.Anything, customer.ID, month).
		Return(nil, domain.ErrReadingNotFound)
	f.readingRepo.On("LatestInRange", mock.Anything, customer.ID, month, month.AddDate(0, 1, 0)).
		Return(reading(customer.ID, "40", month.AddDate(0, 0, 20)), nil)
	f.tariffRepo.On("FindForDate", mock.Anything, domain.CategoryResidential, month).
		Return([]domain.Tariff{activeTariff(domain.CategoryResidential)}, nil)
	f.billRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.expectReconcile()

	bill, err := f.svc.GenerateBill(context.Background(), customer.ID, month)
	require.NoError(t, err)
	assert.Equal(t, "40", bill.UnitsConsumed.String())
}

func TestBillingService_GenerateBill_MonthBeforeConnection(t *testing.T) {
	f := newBillingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	customer.ConnectionDate = time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.readingRepo.On("LatestBefore", mock.Anything, customer.ID, month).
		Return(nil, domain.ErrReadingNotFound)

	bill, err := f.svc.GenerateBill(context.Background(), customer.ID, month)
	assert.Nil(t, bill)
	assert.ErrorIs(t, err, domain.ErrInvalidBillingPeriod)
}

func TestBillingService_GenerateBill_NoReadingInMonth(t *testing.T) {
	f := newBillingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.readingRepo.On("LatestBefore", mock.Anything, customer.ID, month).
		Return(reading(customer.ID, "1000", month.AddDate(0, 0, -3)), nil)
	f.readingRepo.On("LatestInRange", mock.Anything, customer.ID, month, month.AddDate(0, 1, 0)).
		Return(nil, domain.ErrReadingNotFound)

	bill, err := f.svc.GenerateBill(context.Background(), customer.ID, month)
	assert.Nil(t, bill)
	assert.ErrorIs(t, err, domain.ErrNoMeterReading)
}

func TestBillingService_GenerateBill_NegativeConsumptionClampedToZero(t *testing.T) {
	f := newBillingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.readingRepo.On("LatestBefore", mock.Anything, customer.ID, month).
		Return(reading(customer.ID, "1000", month.AddDate(0, 0, -3)), nil)
	// Meter swap: in-month position below the previous one.
	f.readingRepo.On("LatestInRange", mock.Anything, customer.ID, month, month.AddDate(0, 1, 0)).
		Return(reading(customer.ID, "20", month.AddDate(0, 0, 10)), nil)
	f.tariffRepo.On("FindForDate", mock.Anything, domain.CategoryResidential, month).
		Return([]domain.Tariff{activeTariff(domain.CategoryResidential)}, nil)
	f.billRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.expectReconcile()

	bill, err := f.svc.GenerateBill(context.Background(), customer.ID, month)
	require.NoError(t, err)
	assert.True(t, bill.UnitsConsumed.IsZero())
	// Fixed charge plus GST only: 50.00 + 9.00.
	assert.Equal(t, "59", bill.TotalAmount.String())
}

func TestBillingService_GenerateBillsBulk_PartialFailure(t *testing.T) {
	f := newBillingFixture()
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	ok := activeCustomer(domain.CategoryResidential)
	dup := activeCustomer(domain.CategoryResidential)
	noTariff := activeCustomer(domain.CategoryIndustrial)

	for _, c := range []*domain.Customer{ok, dup, noTariff} {
		f.customerRepo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
		f.readingRepo.On("LatestBefore", mock.Anything, c.ID, month).
			Return(reading(c.ID, "1000", month.AddDate(0, 0, -3)), nil)
		f.readingRepo.On("LatestInRange", mock.Anything, c.ID, month, month.AddDate(0, 1, 0)).
			Return(reading(c.ID, "1150", month.AddDate(0, 0, 27)), nil)
	}

	f.tariffRepo.On("FindForDate", mock.Anything, domain.CategoryResidential, month).
		Return([]domain.Tariff{activeTariff(domain.CategoryResidential)}, nil)
	f.tariffRepo.On("FindForDate", mock.Anything, domain.CategoryIndustrial, month).
		Return([]domain.Tariff{}, nil)

	f.billRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Bill) bool {
		return b.CustomerID == ok.ID
	})).Return(nil)
	f.billRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Bill) bool {
		return b.CustomerID == dup.ID
	})).Return(domain.ErrDuplicateBill)
	f.billRepo.On("GetByCustomerAndMonth", mock.Anything, dup.ID, month).
		Return(&domain.Bill{ID: uuid.New(), BillNumber: "BILL-2025-55667788"}, nil)
	f.expectReconcile()

	results, err := f.svc.GenerateBillsBulk(context.Background(), month,
		[]uuid.UUID{ok.ID, dup.ID, noTariff.ID})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, service.BulkGenerated, results[0].Status)
	assert.NotNil(t, results[0].BillID)
	assert.Equal(t, service.BulkSkippedDuplicate, results[1].Status)
	assert.Equal(t, service.BulkFailed, results[2].Status)
	assert.Contains(t, results[2].Reason, "no ")
}

func TestBillingService_GenerateBillsBulk_StopsOnCancellation(t *testing.T) {
	f := newBillingFixture()
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := f.svc.GenerateBillsBulk(ctx, month, []uuid.UUID{uuid.New(), uuid.New()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	f.billRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBillingService_PreviewBill_NothingPersisted(t *testing.T) {
	f := newBillingFixture()

	f.tariffRepo.On("FindForDate", mock.Anything, domain.CategoryResidential, mock.Anything).
		Return([]domain.Tariff{activeTariff(domain.CategoryResidential)}, nil)

	breakdown, err := f.svc.PreviewBill(context.Background(), service.PreviewBillInput{
		Category: domain.CategoryResidential,
		Units:    decimal.NewFromInt(150),
	})
	require.NoError(t, err)
	assert.Equal(t, "997.1", breakdown.TotalAmount.String())

	f.billRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.customerRepo.AssertNotCalled(t, "UpdateDerived", mock.Anything, mock.Anything)
}
