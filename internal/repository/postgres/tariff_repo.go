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

type tariffRepo struct {
	db *sqlx.DB
}

// NewTariffRepo creates a new PostgreSQL-backed TariffRepository.
func NewTariffRepo(db *sqlx.DB) port.TariffRepository {
	return &tariffRepo{db: db}
}

// Create inserts the tariff and its slabs in one transaction. Slab
// validation happens in the service layer before this is called.
func (r *tariffRepo) Create(ctx context.Context, t *domain.Tariff) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("tariffRepo.Create begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tariffs (
			id, category, fixed_charge, duty_percent, gst_percent,
			effective_date, valid_until, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.Category, t.FixedCharge, t.DutyPercent, t.GSTPercent,
		t.EffectiveDate, t.ValidUntil, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("tariffRepo.Create tariff: %w", err)
	}

	for i := range t.Slabs {
		s := &t.Slabs[i]
		s.TariffID = t.ID
		s.CreatedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tariff_slabs (
				id, tariff_id, slab_order, start_units, end_units,
				rate_per_unit, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, s.TariffID, s.SlabOrder, s.StartUnits, s.EndUnits,
			s.RatePerUnit, s.CreatedAt)
		if err != nil {
			return fmt.Errorf("tariffRepo.Create slab %d: %w", s.SlabOrder, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tariffRepo.Create commit: %w", err)
	}
	return nil
}

func (r *tariffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tariff, error) {
	var t domain.Tariff
	err := r.db.GetContext(ctx, &t, "SELECT * FROM tariffs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTariffNotFound
		}
		return nil, fmt.Errorf("tariffRepo.GetByID: %w", err)
	}
	if err := r.loadSlabs(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tariffRepo) List(ctx context.Context, offset, limit int) ([]domain.Tariff, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tariffs"); err != nil {
		return nil, 0, fmt.Errorf("tariffRepo.List count: %w", err)
	}

	var tariffs []domain.Tariff
	err := r.db.SelectContext(ctx, &tariffs,
		`SELECT * FROM tariffs
		 ORDER BY category, effective_date DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("tariffRepo.List: %w", err)
	}
	for i := range tariffs {
		if err := r.loadSlabs(ctx, &tariffs[i]); err != nil {
			return nil, 0, err
		}
	}
	return tariffs, total, nil
}

// FindForDate returns every active tariff whose validity window covers
// the date. The caller decides whether zero or more than one match is
// an error.
func (r *tariffRepo) FindForDate(ctx context.Context, category domain.CustomerCategory, asOf time.Time) ([]domain.Tariff, error) {
	var tariffs []domain.Tariff
	err := r.db.SelectContext(ctx, &tariffs,
		`SELECT * FROM tariffs
		 WHERE category = $1 AND status = $2
		   AND effective_date <= $3
		   AND (valid_until IS NULL OR valid_until >= $3)
		 ORDER BY effective_date DESC`,
		category, domain.TariffActive, asOf)
	if err != nil {
		return nil, fmt.Errorf("tariffRepo.FindForDate: %w", err)
	}
	for i := range tariffs {
		if err := r.loadSlabs(ctx, &tariffs[i]); err != nil {
			return nil, err
		}
	}
	return tariffs, nil
}

func (r *tariffRepo) loadSlabs(ctx context.Context, t *domain.Tariff) error {
	err := r.db.SelectContext(ctx, &t.Slabs,
		"SELECT * FROM tariff_slabs WHERE tariff_id = $1 ORDER BY slab_order",
		t.ID)
	if err != nil {
		return fmt.Errorf("tariffRepo.loadSlabs: %w", err)
	}
	return nil
}
