package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gridbill/internal/domain"
	"gridbill/internal/port"
)

type paymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo creates a new PostgreSQL-backed PaymentRepository.
// Payments are inserted only through BillRepository.MarkPaid; this repo
// is the read side of the ledger.
func NewPaymentRepo(db *sqlx.DB) port.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.GetContext(ctx, &p, "SELECT * FROM payments WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", err)
	}
	return &p, nil
}

func (r *paymentRepo) GetByBill(ctx context.Context, billID uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.GetContext(ctx, &p,
		"SELECT * FROM payments WHERE bill_id = $1 ORDER BY created_at DESC LIMIT 1",
		billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("paymentRepo.GetByBill: %w", err)
	}
	return &p, nil
}

func (r *paymentRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE customer_id = $1 ORDER BY payment_date DESC",
		customerID)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.ListByCustomer: %w", err)
	}
	return payments, nil
}
