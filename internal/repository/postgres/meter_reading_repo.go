package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gridbill/internal/domain"
	"gridbill/internal/port"
)

type meterReadingRepo struct {
	db *sqlx.DB
}

// NewMeterReadingRepo creates a new PostgreSQL-backed MeterReadingRepository.
func NewMeterReadingRepo(db *sqlx.DB) port.MeterReadingRepository {
	return &meterReadingRepo{db: db}
}

func (r *meterReadingRepo) Create(ctx context.Context, m *domain.MeterReading) error {
	m.CreatedAt = time.Now().UTC()

	query := `INSERT INTO meter_readings (
		id, customer_id, meter_number, previous_reading, current_reading,
		units_consumed, reading_date, recorded_by, notes, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.CustomerID, m.MeterNumber, m.PreviousReading, m.CurrentReading,
		m.UnitsConsumed, m.ReadingDate, m.RecordedBy, m.Notes, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("meterReadingRepo.Create: %w", err)
	}
	return nil
}

func (r *meterReadingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MeterReading, error) {
	var m domain.MeterReading
	err := r.db.GetContext(ctx, &m, "SELECT * FROM meter_readings WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReadingNotFound
		}
		return nil, fmt.Errorf("meterReadingRepo.GetByID: %w", err)
	}
	return &m, nil
}

func (r *meterReadingRepo) LatestBefore(ctx context.Context, customerID uuid.UUID, before time.Time) (*domain.MeterReading, error) {
	var m domain.MeterReading
	err := r.db.GetContext(ctx, &m,
		`SELECT * FROM meter_readings
		 WHERE customer_id = $1 AND reading_date < $2
		 ORDER BY reading_date DESC, created_at DESC LIMIT 1`,
		customerID, before)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReadingNotFound
		}
		return nil, fmt.Errorf("meterReadingRepo.LatestBefore: %w", err)
	}
	return &m, nil
}

func (r *meterReadingRepo) LatestInRange(ctx context.Context, customerID uuid.UUID, from, to time.Time) (*domain.MeterReading, error) {
	var m domain.MeterReading
	err := r.db.GetContext(ctx, &m,
		`SELECT * FROM meter_readings
		 WHERE customer_id = $1 AND reading_date >= $2 AND reading_date < $3
		 ORDER BY reading_date DESC, created_at DESC LIMIT 1`,
		customerID, from, to)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReadingNotFound
		}
		return nil, fmt.Errorf("meterReadingRepo.LatestInRange: %w", err)
	}
	return &m, nil
}

func (r *meterReadingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM meter_readings WHERE customer_id = $1", customerID)
	if err != nil {
		return nil, 0, fmt.Errorf("meterReadingRepo.ListByCustomer count: %w", err)
	}

	var readings []domain.MeterReading
	err = r.db.SelectContext(ctx, &readings,
		`SELECT * FROM meter_readings WHERE customer_id = $1
		 ORDER BY reading_date DESC LIMIT $2 OFFSET $3`,
		customerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("meterReadingRepo.ListByCustomer: %w", err)
	}
	return readings, total, nil
}
