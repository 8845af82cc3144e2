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

type billRepo struct {
	db *sqlx.DB
}

// NewBillRepo creates a new PostgreSQL-backed BillRepository.
func NewBillRepo(db *sqlx.DB) port.BillRepository {
	return &billRepo{db: db}
}

// Create inserts the bill under the (customer_id, billing_month) unique
// constraint. The constraint is the idempotency guarantee: a concurrent
// duplicate insert loses here, not at an application-level pre-check.
func (r *billRepo) Create(ctx context.Context, b *domain.Bill) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	query := `INSERT INTO bills (
		id, customer_id, bill_number, billing_month, meter_reading_id, tariff_id,
		units_consumed, base_amount, fixed_charges, electricity_duty,
		gst_amount, total_amount,
		status, issue_date, due_date, payment_date, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10,
		$11, $12,
		$13, $14, $15, $16, $17, $18
	)`

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.CustomerID, b.BillNumber, b.BillingMonth, b.MeterReadingID, b.TariffID,
		b.UnitsConsumed, b.BaseAmount, b.FixedCharges, b.ElectricityDuty,
		b.GSTAmount, b.TotalAmount,
		b.Status, b.IssueDate, b.DueDate, b.PaymentDate, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "billing_month") {
			return domain.ErrDuplicateBill
		}
		return fmt.Errorf("billRepo.Create: %w", err)
	}
	return nil
}

func (r *billRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error) {
	var b domain.Bill
	err := r.db.GetContext(ctx, &b, "SELECT * FROM bills WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBillNotFound
		}
		return nil, fmt.Errorf("billRepo.GetByID: %w", err)
	}
	return &b, nil
}

func (r *billRepo) GetByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, billingMonth time.Time) (*domain.Bill, error) {
	var b domain.Bill
	err := r.db.GetContext(ctx, &b,
		"SELECT * FROM bills WHERE customer_id = $1 AND billing_month = $2",
		customerID, billingMonth)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBillNotFound
		}
		return nil, fmt.Errorf("billRepo.GetByCustomerAndMonth: %w", err)
	}
	return &b, nil
}

func (r *billRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Bill, error) {
	var bills []domain.Bill
	err := r.db.SelectContext(ctx, &bills,
		"SELECT * FROM bills WHERE customer_id = $1 ORDER BY billing_month DESC",
		customerID)
	if err != nil {
		return nil, fmt.Errorf("billRepo.ListByCustomer: %w", err)
	}
	return bills, nil
}

func (r *billRepo) List(ctx context.Context, offset, limit int) ([]domain.Bill, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM bills"); err != nil {
		return nil, 0, fmt.Errorf("billRepo.List count: %w", err)
	}

	var bills []domain.Bill
	err := r.db.SelectContext(ctx, &bills,
		"SELECT * FROM bills ORDER BY issue_date DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("billRepo.List: %w", err)
	}
	return bills, total, nil
}

// UpdateStatus performs a conditional write: the row is updated only if
// its stored status still permits the transition, so a stale caller
// cannot clobber a concurrent change.
func (r *billRepo) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.BillStatus) (*domain.Bill, error) {
	prior := allowedPriorStatuses(next)
	if len(prior) == 0 {
		return nil, domain.ErrInvalidTransition
	}

	query, args, err := sqlx.In(
		"UPDATE bills SET status = ?, updated_at = ? WHERE id = ? AND status IN (?)",
		next, time.Now().UTC(), id, prior)
	if err != nil {
		return nil, fmt.Errorf("billRepo.UpdateStatus build: %w", err)
	}
	query = r.db.Rebind(query)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("billRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Distinguish a missing bill from a disallowed transition.
		b, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, b.Status, next)
	}
	return r.GetByID(ctx, id)
}

// MarkPaid flips an issued or overdue bill to paid and inserts the
// payment record in the same transaction. The UPDATE is conditioned on
// the stored status, so of two concurrent payments exactly one commits;
// the other reads back the row and gets ErrAlreadyPaid.
func (r *billRepo) MarkPaid(ctx context.Context, billID uuid.UUID, p *domain.Payment) (*domain.Bill, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("billRepo.MarkPaid begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE bills SET status = $1, payment_date = $2, updated_at = $3
		 WHERE id = $4 AND status IN ($5, $6)`,
		domain.BillPaid, p.PaymentDate, now,
		billID, domain.BillIssued, domain.BillOverdue)
	if err != nil {
		return nil, fmt.Errorf("billRepo.MarkPaid update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var b domain.Bill
		err := tx.GetContext(ctx, &b, "SELECT * FROM bills WHERE id = $1", billID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.ErrBillNotFound
			}
			return nil, fmt.Errorf("billRepo.MarkPaid reread: %w", err)
		}
		if b.Status == domain.BillPaid {
			return nil, domain.ErrAlreadyPaid
		}
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, b.Status, domain.BillPaid)
	}

	p.CreatedAt = now
	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (
			id, customer_id, bill_id, amount, method, payment_date,
			transaction_id, receipt_number, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.CustomerID, p.BillID, p.Amount, p.Method, p.PaymentDate,
		p.TransactionID, p.ReceiptNumber, p.Notes, p.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "transaction_id") {
			return nil, domain.ErrDuplicateTransaction
		}
		return nil, fmt.Errorf("billRepo.MarkPaid payment: %w", err)
	}

	var b domain.Bill
	if err := tx.GetContext(ctx, &b, "SELECT * FROM bills WHERE id = $1", billID); err != nil {
		return nil, fmt.Errorf("billRepo.MarkPaid select: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("billRepo.MarkPaid commit: %w", err)
	}
	return &b, nil
}

func allowedPriorStatuses(next domain.BillStatus) []domain.BillStatus {
	switch next {
	case domain.BillIssued:
		return []domain.BillStatus{domain.BillGenerated}
	case domain.BillOverdue:
		return []domain.BillStatus{domain.BillIssued}
	case domain.BillCancelled:
		return []domain.BillStatus{domain.BillGenerated, domain.BillIssued, domain.BillOverdue}
	default:
		// Paid goes through MarkPaid, which couples the status flip
		// with the payment insert.
		return nil
	}
}
