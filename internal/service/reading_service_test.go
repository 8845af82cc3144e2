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

type readingFixture struct {
	readingRepo  *mocks.MockMeterReadingRepo
	customerRepo *mocks.MockCustomerRepo
	svc          service.ReadingService
}

func newReadingFixture() *readingFixture {
	f := &readingFixture{
		readingRepo:  new(mocks.MockMeterReadingRepo),
		customerRepo: new(mocks.MockCustomerRepo),
	}
	f.svc = service.NewReadingService(f.readingRepo, f.customerRepo, zap.NewNop())
	return f
}

func TestReadingService_Record_DerivesFromHistory(t *testing.T) {
	f := newReadingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	readingDate := time.Date(2025, 7, 28, 9, 30, 0, 0, time.UTC)
	staffID := uuid.New()

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.readingRepo.On("LatestBefore", mock.Anything, customer.ID, readingDate).
		Return(reading(customer.ID, "1000", readingDate.AddDate(0, -1, 0)), nil)
	f.readingRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.MeterReading")).Return(nil)

	got, err := f.svc.Record(context.Background(), service.RecordReadingInput{
		CustomerID:     customer.ID,
		CurrentReading: decimal.RequireFromString("1150.5"),
		ReadingDate:    readingDate,
	}, &staffID)
	require.NoError(t, err)

	// Previous and consumption come from history, not the caller.
	assert.Equal(t, "1000", got.PreviousReading.String())
	assert.Equal(t, "150.5", got.UnitsConsumed.String())
	assert.Equal(t, customer.MeterNumber, got.MeterNumber)
	require.NotNil(t, got.RecordedBy)
	assert.Equal(t, staffID, *got.RecordedBy)
}

func TestReadingService_Record_FirstReadingStartsAtZero(t *testing.T) {
	f := newReadingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	readingDate := time.Date(2025, 7, 28, 9, 30, 0, 0, time.UTC)

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.readingRepo.On("LatestBefore", mock.Anything, customer.ID, readingDate).
		Return(nil, domain.ErrReadingNotFound)
	f.readingRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	got, err := f.svc.Record(context.Background(), service.RecordReadingInput{
		CustomerID:     customer.ID,
		CurrentReading: decimal.RequireFromString("42"),
		ReadingDate:    readingDate,
	}, nil)
	require.NoError(t, err)
	assert.True(t, got.PreviousReading.IsZero())
	assert.Equal(t, "42", got.UnitsConsumed.String())
}

func TestReadingService_Record_BelowPreviousRejected(t *testing.T) {
	f := newReadingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	readingDate := time.Date(2025, 7, 28, 9, 30, 0, 0, time.UTC)

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)
	f.readingRepo.On("LatestBefore", mock.Anything, customer.ID, readingDate).
		Return(reading(customer.ID, "1000", readingDate.AddDate(0, -1, 0)), nil)

	_, err := f.svc.Record(context.Background(), service.RecordReadingInput{
		CustomerID:     customer.ID,
		CurrentReading: decimal.RequireFromString("990"),
		ReadingDate:    readingDate,
	}, nil)
	assert.ErrorIs(t, err, domain.ErrReadingBelowPrevious)
	f.readingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReadingService_Record_InactiveCustomerRejected(t *testing.T) {
	f := newReadingFixture()
	customer := activeCustomer(domain.CategoryResidential)
	customer.Status = domain.CustomerInactive

	f.customerRepo.On("GetByID", mock.Anything, customer.ID).Return(customer, nil)

	_, err := f.svc.Record(context.Background(), service.RecordReadingInput{
		CustomerID:     customer.ID,
		CurrentReading: decimal.RequireFromString("100"),
		ReadingDate:    time.Now().UTC(),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrCustomerInactive)
	f.readingRepo.AssertNotCalled(t, "LatestBefore", mock.Anything, mock.Anything, mock.Anything)
}
