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

type customerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo creates a new PostgreSQL-backed CustomerRepository.
func NewCustomerRepo(db *sqlx.DB) port.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, c *domain.Customer) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `INSERT INTO customers (
		id, account_number, meter_number, full_name, email, phone,
		address, city, category, status, connection_date,
		outstanding_balance, last_bill_amount, last_payment_date,
		average_monthly_usage, payment_status, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14,
		$15, $16, $17, $18
	)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.AccountNumber, c.MeterNumber, c.FullName, c.Email, c.Phone,
		c.Address, c.City, c.Category, c.Status, c.ConnectionDate,
		c.OutstandingBalance, c.LastBillAmount, c.LastPaymentDate,
		c.AverageMonthlyUsage, c.PaymentStatus, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return fmt.Errorf("customerRepo.Create: %w: %s", domain.ErrDuplicateEmail, c.AccountNumber)
		}
		return fmt.Errorf("customerRepo.Create: %w", err)
	}
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.GetContext(ctx, &c, "SELECT * FROM customers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customerRepo.GetByID: %w", err)
	}
	return &c, nil
}

func (r *customerRepo) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.GetContext(ctx, &c,
		"SELECT * FROM customers WHERE account_number = $1", accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customerRepo.GetByAccountNumber: %w", err)
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, offset, limit int) ([]domain.Customer, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM customers"); err != nil {
		return nil, 0, fmt.Errorf("customerRepo.List count: %w", err)
	}

	var customers []domain.Customer
	err := r.db.SelectContext(ctx, &customers,
		`SELECT * FROM customers ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("customerRepo.List: %w", err)
	}
	return customers, total, nil
}

func (r *customerRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids,
		"SELECT id FROM customers WHERE status = $1 ORDER BY account_number",
		domain.CustomerActive)
	if err != nil {
		return nil, fmt.Errorf("customerRepo.ListActiveIDs: %w", err)
	}
	return ids, nil
}

func (r *customerRepo) Update(ctx context.Context, c *domain.Customer) error {
	c.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET
			full_name = $1, email = $2, phone = $3, address = $4,
			city = $5, category = $6, updated_at = $7
		 WHERE id = $8`,
		c.FullName, c.Email, c.Phone, c.Address,
		c.City, c.Category, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("customerRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.CustomerStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE customers SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("customerRepo.SetStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// UpdateDerived replaces the reconciler-owned derived fields wholesale.
// It never touches identity or status columns.
func (r *customerRepo) UpdateDerived(ctx context.Context, s *domain.BalanceSnapshot) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET
			outstanding_balance = $1, last_bill_amount = $2,
			last_payment_date = $3, average_monthly_usage = $4,
			payment_status = $5, updated_at = $6
		 WHERE id = $7`,
		s.OutstandingBalance, s.LastBillAmount,
		s.LastPaymentDate, s.AverageMonthlyUsage,
		s.PaymentStatus, time.Now().UTC(), s.CustomerID)
	if err != nil {
		return fmt.Errorf("customerRepo.UpdateDerived: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}
