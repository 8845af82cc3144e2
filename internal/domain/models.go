package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StaffUser is an operator account: admins run billing, field staff
// record meter readings.
type StaffUser struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         StaffRole `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Customer is a metered connection. The five derived fields
// (OutstandingBalance through PaymentStatus) are a projection over the
// customer's bills and payments, replaced wholesale by the reconciler
// and never hand-edited.
type Customer struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	AccountNumber  string           `db:"account_number" json:"account_number"`
	MeterNumber    string           `db:"meter_number" json:"meter_number"`
	FullName       string           `db:"full_name" json:"full_name"`
	Email          string           `db:"email" json:"email"`
	Phone          string           `db:"phone" json:"phone"`
	Address        string           `db:"address" json:"address"`
	City           string           `db:"city" json:"city"`
	Category       CustomerCategory `db:"category" json:"category"`
	Status         CustomerStatus   `db:"status" json:"status"`
	ConnectionDate time.Time        `db:"connection_date" json:"connection_date"`

	OutstandingBalance  decimal.Decimal `db:"outstanding_balance" json:"outstanding_balance"`
	LastBillAmount      decimal.Decimal `db:"last_bill_amount" json:"last_bill_amount"`
	LastPaymentDate     *time.Time      `db:"last_payment_date" json:"last_payment_date"`
	AverageMonthlyUsage decimal.Decimal `db:"average_monthly_usage" json:"average_monthly_usage"`
	PaymentStatus       PaymentStatus   `db:"payment_status" json:"payment_status"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Tariff is one category's rate card over a validity window. Immutable
// once a bill references it; rate changes are new rows with a later
// effective date.
type Tariff struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	Category      CustomerCategory `db:"category" json:"category"`
	FixedCharge   decimal.Decimal  `db:"fixed_charge" json:"fixed_charge"`
	DutyPercent   decimal.Decimal  `db:"duty_percent" json:"duty_percent"`
	GSTPercent    decimal.Decimal  `db:"gst_percent" json:"gst_percent"`
	EffectiveDate time.Time        `db:"effective_date" json:"effective_date"`
	ValidUntil    *time.Time       `db:"valid_until" json:"valid_until"`
	Status        TariffStatus     `db:"status" json:"status"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`

	// Slabs are loaded alongside the tariff, ordered by SlabOrder.
	Slabs []TariffSlab `db:"-" json:"slabs"`
}

// TariffSlab is one consumption sub-range with its own per-unit rate.
// Slabs for a tariff partition the consumption axis from 0 with no gaps
// or overlaps; a nil EndUnits means unbounded and must be the last slab.
type TariffSlab struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	TariffID    uuid.UUID       `db:"tariff_id" json:"tariff_id"`
	SlabOrder   int             `db:"slab_order" json:"slab_order"`
	StartUnits  int64           `db:"start_units" json:"start_units"`
	EndUnits    *int64          `db:"end_units" json:"end_units"`
	RatePerUnit decimal.Decimal `db:"rate_per_unit" json:"rate_per_unit"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// MeterReading is a field-entered reading. Immutable once a bill
// references it.
type MeterReading struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	CustomerID      uuid.UUID       `db:"customer_id" json:"customer_id"`
	MeterNumber     string          `db:"meter_number" json:"meter_number"`
	PreviousReading decimal.Decimal `db:"previous_reading" json:"previous_reading"`
	CurrentReading  decimal.Decimal `db:"current_reading" json:"current_reading"`
	UnitsConsumed   decimal.Decimal `db:"units_consumed" json:"units_consumed"`
	ReadingDate     time.Time       `db:"reading_date" json:"reading_date"`
	RecordedBy      *uuid.UUID      `db:"recorded_by" json:"recorded_by"`
	Notes           string          `db:"notes" json:"notes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Bill is one customer's bill for one calendar billing month. At most
// one bill exists per (customer, billing month); the unique constraint
// in storage is the source of truth. The monetary breakdown is fixed at
// creation; only Status and PaymentDate change afterwards.
type Bill struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	CustomerID     uuid.UUID  `db:"customer_id" json:"customer_id"`
	BillNumber     string     `db:"bill_number" json:"bill_number"`
	BillingMonth   time.Time  `db:"billing_month" json:"billing_month"`
	MeterReadingID *uuid.UUID `db:"meter_reading_id" json:"meter_reading_id"`
	TariffID       uuid.UUID  `db:"tariff_id" json:"tariff_id"`

	UnitsConsumed   decimal.Decimal `db:"units_consumed" json:"units_consumed"`
	BaseAmount      decimal.Decimal `db:"base_amount" json:"base_amount"`
	FixedCharges    decimal.Decimal `db:"fixed_charges" json:"fixed_charges"`
	ElectricityDuty decimal.Decimal `db:"electricity_duty" json:"electricity_duty"`
	GSTAmount       decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`

	Status      BillStatus `db:"status" json:"status"`
	IssueDate   time.Time  `db:"issue_date" json:"issue_date"`
	DueDate     time.Time  `db:"due_date" json:"due_date"`
	PaymentDate *time.Time `db:"payment_date" json:"payment_date"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Payment is an append-only ledger entry settling one bill in full.
type Payment struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	CustomerID    uuid.UUID       `db:"customer_id" json:"customer_id"`
	BillID        uuid.UUID       `db:"bill_id" json:"bill_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Method        PaymentMethod   `db:"method" json:"method"`
	PaymentDate   time.Time       `db:"payment_date" json:"payment_date"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
	ReceiptNumber string          `db:"receipt_number" json:"receipt_number"`
	Notes         string          `db:"notes" json:"notes"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// BalanceSnapshot is the reconciler's output: the derived customer
// fields recomputed from the full bill and payment history.
type BalanceSnapshot struct {
	CustomerID          uuid.UUID       `json:"customer_id"`
	OutstandingBalance  decimal.Decimal `json:"outstanding_balance"`
	LastBillAmount      decimal.Decimal `json:"last_bill_amount"`
	LastPaymentDate     *time.Time      `json:"last_payment_date"`
	AverageMonthlyUsage decimal.Decimal `json:"average_monthly_usage"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
}

// NormalizeBillingMonth truncates a date to the first day of its month
// in UTC, the canonical billing-month key.
func NormalizeBillingMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
