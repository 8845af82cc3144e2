package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gridbill/internal/domain"
)

// StaffRepository defines the contract for staff user persistence.
type StaffRepository interface {
	Create(ctx context.Context, user *domain.StaffUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
}

// CustomerRepository defines the contract for customer persistence.
// Derived balance fields are written only through UpdateDerived, which
// replaces them wholesale with a reconciler snapshot.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Customer, error)
	List(ctx context.Context, offset, limit int) ([]domain.Customer, int, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	Update(ctx context.Context, customer *domain.Customer) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.CustomerStatus) error
	UpdateDerived(ctx context.Context, snapshot *domain.BalanceSnapshot) error
}

// TariffRepository defines the contract for tariff persistence. Slabs
// travel with their tariff; FindForDate returns every tariff whose
// validity window covers the date so the caller can detect overlap.
type TariffRepository interface {
	Create(ctx context.Context, tariff *domain.Tariff) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tariff, error)
	List(ctx context.Context, offset, limit int) ([]domain.Tariff, int, error)
	FindForDate(ctx context.Context, category domain.CustomerCategory, asOf time.Time) ([]domain.Tariff, error)
}

// MeterReadingRepository defines the contract for meter reading
// persistence.
type MeterReadingRepository interface {
	Create(ctx context.Context, reading *domain.MeterReading) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MeterReading, error)
	// LatestBefore returns the most recent reading strictly before the
	// given date, or domain.ErrReadingNotFound.
	LatestBefore(ctx context.Context, customerID uuid.UUID, before time.Time) (*domain.MeterReading, error)
	// LatestInRange returns the most recent reading with
	// from <= reading_date < to, or domain.ErrReadingNotFound.
	LatestInRange(ctx context.Context, customerID uuid.UUID, from, to time.Time) (*domain.MeterReading, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.MeterReading, int, error)
}

// BillRepository defines the contract for bill persistence. Create must
// surface domain.ErrDuplicateBill on the (customer_id, billing_month)
// unique constraint; the constraint, not a prior read, is the
// idempotency guarantee.
type BillRepository interface {
	Create(ctx context.Context, bill *domain.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error)
	GetByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, billingMonth time.Time) (*domain.Bill, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Bill, error)
	List(ctx context.Context, offset, limit int) ([]domain.Bill, int, error)
	// UpdateStatus writes the new status only if the stored status
	// still permits the transition; it surfaces
	// domain.ErrInvalidTransition otherwise.
	UpdateStatus(ctx context.Context, id uuid.UUID, next domain.BillStatus) (*domain.Bill, error)
	// MarkPaid atomically flips an issued or overdue bill to paid and
	// inserts the payment in the same transaction. The status check is
	// a conditional write, so the loser of a concurrent double payment
	// gets domain.ErrAlreadyPaid.
	MarkPaid(ctx context.Context, billID uuid.UUID, payment *domain.Payment) (*domain.Bill, error)
}

// PaymentRepository defines the contract for the append-only payment
// ledger.
type PaymentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByBill(ctx context.Context, billID uuid.UUID) (*domain.Payment, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Payment, error)
}
