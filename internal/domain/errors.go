package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("staff user is inactive")
	ErrDuplicateEmail     = errors.New("email already registered")

	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerInactive = errors.New("customer is not active")
	ErrBillNotFound     = errors.New("bill not found")
	ErrTariffNotFound   = errors.New("tariff not found")
	ErrReadingNotFound  = errors.New("meter reading not found")

	// Configuration errors: not retryable without a data fix.
	ErrMalformedTariff = errors.New("tariff slabs are not a contiguous partition")
	ErrNoActiveTariff  = errors.New("no active tariff for category and date")
	ErrTariffOverlap   = errors.New("multiple tariffs active for category and date")

	// Precondition errors: caller must supply missing data.
	ErrNoMeterReading       = errors.New("no meter reading for billing period")
	ErrInvalidBillingPeriod = errors.New("billing period precedes connection date")
	ErrReadingBelowPrevious = errors.New("current reading is below previous reading")

	// Conflict errors: expected under concurrency, informational to callers.
	ErrDuplicateBill        = errors.New("bill already exists for this billing month")
	ErrAlreadyPaid          = errors.New("bill is already paid")
	ErrDuplicateTransaction = errors.New("transaction reference already recorded")

	// Integrity errors: fail closed, never coerce.
	ErrAmountMismatch    = errors.New("payment amount does not match bill total")
	ErrInvalidTransition = errors.New("invalid bill status transition")
)
