package domain

// CustomerCategory is the tariff category a connection is billed under.
type CustomerCategory string

const (
	CategoryResidential  CustomerCategory = "residential"
	CategoryCommercial   CustomerCategory = "commercial"
	CategoryIndustrial   CustomerCategory = "industrial"
	CategoryAgricultural CustomerCategory = "agricultural"
)

// IsValid reports whether the category is one of the fixed enumeration.
func (c CustomerCategory) IsValid() bool {
	switch c {
	case CategoryResidential, CategoryCommercial, CategoryIndustrial, CategoryAgricultural:
		return true
	}
	return false
}

// CustomerStatus represents the lifecycle of a connection. Customers are
// never hard-deleted, only deactivated.
type CustomerStatus string

const (
	CustomerActive    CustomerStatus = "active"
	CustomerSuspended CustomerStatus = "suspended"
	CustomerInactive  CustomerStatus = "inactive"
)

// PaymentStatus is the derived payment standing of a customer, owned
// exclusively by the balance reconciler.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// TariffStatus marks whether a tariff row may be selected for billing.
type TariffStatus string

const (
	TariffActive   TariffStatus = "active"
	TariffInactive TariffStatus = "inactive"
)

// PaymentMethod enumerates the accepted payment channels.
type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodDebitCard    PaymentMethod = "debit_card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodCheque       PaymentMethod = "cheque"
	MethodUPI          PaymentMethod = "upi"
	MethodWallet       PaymentMethod = "wallet"
)

// IsValid reports whether the payment method is recognised.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodBankTransfer,
		MethodCash, MethodCheque, MethodUPI, MethodWallet:
		return true
	}
	return false
}

// StaffRole defines the staff role hierarchy.
type StaffRole string

const (
	RoleAdmin      StaffRole = "admin"
	RoleFieldStaff StaffRole = "field_staff"
)

// IsValid reports whether the role is recognised.
func (r StaffRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleFieldStaff:
		return true
	}
	return false
}
