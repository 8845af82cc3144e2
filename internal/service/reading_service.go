package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gridbill/internal/domain"
	"gridbill/internal/port"
)

// RecordReadingInput is the DTO for a field-entered meter reading.
type RecordReadingInput struct {
	CustomerID     uuid.UUID       `json:"customer_id" binding:"required"`
	CurrentReading decimal.Decimal `json:"current_reading" binding:"required"`
	ReadingDate    time.Time       `json:"reading_date" binding:"required"`
	Notes          string          `json:"notes"`
}

// ReadingService defines the meter reading contract.
type ReadingService interface {
	Record(ctx context.Context, input RecordReadingInput, recordedBy *uuid.UUID) (*domain.MeterReading, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MeterReading, error)
	// GetLatestReading returns the most recent reading strictly before
	// the given date.
	GetLatestReading(ctx context.Context, customerID uuid.UUID, before time.Time) (*domain.MeterReading, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error)
}

type readingService struct {
	readingRepo  port.MeterReadingRepository
	customerRepo port.CustomerRepository
	logger       *zap.Logger
}

// NewReadingService creates a new ReadingService implementation.
func NewReadingService(
	readingRepo port.MeterReadingRepository,
	customerRepo port.CustomerRepository,
	logger *zap.Logger,
) ReadingService {
	return &readingService{
		readingRepo:  readingRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// Record stores a new reading. The previous reading and consumed units
// are derived from the reading history, never trusted from the caller.
// A current reading below the previous one is rejected at entry; meter
// rollovers are handled operationally with a meter replacement note.
func (s *readingService) Record(ctx context.Context, input RecordReadingInput, recordedBy *uuid.UUID) (*domain.MeterReading, error) {
	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.Status != domain.CustomerActive {
		return nil, domain.ErrCustomerInactive
	}

	previous := decimal.Zero
	prev, err := s.readingRepo.LatestBefore(ctx, customer.ID, input.ReadingDate)
	switch {
	case err == nil:
		previous = prev.CurrentReading
	case errors.Is(err, domain.ErrReadingNotFound):
		// First reading for this meter.
	default:
		return nil, fmt.Errorf("reading.Record: %w", err)
	}

	if input.CurrentReading.LessThan(previous) {
		s.logger.Warn("reading below previous, rejecting",
			zap.String("customer_id", customer.ID.String()),
			zap.String("previous", previous.String()),
			zap.String("current", input.CurrentReading.String()))
		return nil, fmt.Errorf("%w: current %s < previous %s",
			domain.ErrReadingBelowPrevious, input.CurrentReading, previous)
	}

	reading := &domain.MeterReading{
		ID:              uuid.New(),
		CustomerID:      customer.ID,
		MeterNumber:     customer.MeterNumber,
		PreviousReading: previous,
		CurrentReading:  input.CurrentReading,
		UnitsConsumed:   input.CurrentReading.Sub(previous),
		ReadingDate:     input.ReadingDate.UTC(),
		RecordedBy:      recordedBy,
		Notes:           input.Notes,
	}
	if err := s.readingRepo.Create(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

func (s *readingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.MeterReading, error) {
	return s.readingRepo.GetByID(ctx, id)
}

func (s *readingService) GetLatestReading(ctx context.Context, customerID uuid.UUID, before time.Time) (*domain.MeterReading, error) {
	return s.readingRepo.LatestBefore(ctx, customerID, before)
}

func (s *readingService) ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error) {
	return s.readingRepo.ListByCustomer(ctx, customerID, offset, limit)
}
