package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gridbill/internal/domain"
	"gridbill/internal/port"
)

type staffRepo struct {
	db *sqlx.DB
}

// NewStaffRepo creates a new PostgreSQL-backed StaffRepository.
func NewStaffRepo(db *sqlx.DB) port.StaffRepository {
	return &staffRepo{db: db}
}

func (r *staffRepo) Create(ctx context.Context, u *domain.StaffUser) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `INSERT INTO staff_users (
		id, email, password_hash, full_name, role, is_active, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("staffRepo.Create: %w", err)
	}
	return nil
}

func (r *staffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error) {
	var u domain.StaffUser
	err := r.db.GetContext(ctx, &u, "SELECT * FROM staff_users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("staffRepo.GetByID: %w", err)
	}
	return &u, nil
}

func (r *staffRepo) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	var u domain.StaffUser
	err := r.db.GetContext(ctx, &u, "SELECT * FROM staff_users WHERE email = $1", strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("staffRepo.GetByEmail: %w", err)
	}
	return &u, nil
}
